package utils

import (
	"time"
)

// Iso8601 formats t in UTC as RFC 3339 with second precision
func Iso8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Iso8601Date returns just the date portion of t in YYYY-MM-DD format
func Iso8601Date(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ValidUntilFrom returns base+validFor formatted as ISO8601, or "" when either is unset.
func ValidUntilFrom(base time.Time, validFor time.Duration) string {
	if base.IsZero() || validFor <= 0 {
		return ""
	}
	return Iso8601(base.Add(validFor))
}
