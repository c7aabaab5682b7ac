package sim

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Warning type constants
const (
	WarningInvalidProgress   = "invalid_progress"
	WarningInvalidMultiplier = "invalid_multiplier"
	WarningInvalidElapsed    = "invalid_elapsed"
	WarningInvalidDelta      = "invalid_delta"
	WarningDegenerateRoute   = "degenerate_route"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects data-integrity warnings during a tick and logs
// one consolidated line per warning type
type WarningAggregator struct {
	warnings map[string]*warningInfo
	totals   map[string]int
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
		totals:   make(map[string]int),
	}
}

// Add records a warning occurrence with an example vehicle id
func (w *WarningAggregator) Add(warningType, exampleID string) {
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++
	w.totals[warningType]++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, exampleID)
	}
}

// Pending returns the number of occurrences of warningType since the last Flush.
func (w *WarningAggregator) Pending(warningType string) int {
	if info := w.warnings[warningType]; info != nil {
		return info.count
	}
	return 0
}

// Total returns every occurrence of warningType ever recorded.
func (w *WarningAggregator) Total(warningType string) int { return w.totals[warningType] }

// Flush logs the collected warnings and starts a new collection window
func (w *WarningAggregator) Flush(tick int64) {
	if len(w.warnings) == 0 {
		return
	}
	types := make([]string, 0, len(w.warnings))
	for t := range w.warnings {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		log.WithField("tick", tick).Warn(formatWarningMessage(t, w.warnings[t]))
	}
	w.warnings = make(map[string]*warningInfo)
}

// formatWarningMessage creates a human-readable warning message
func formatWarningMessage(warningType string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningInvalidProgress:
		description = "vehicles with NaN or negative progress"
		action = "Clamped progress to 0"
	case WarningInvalidMultiplier:
		description = "speed multipliers that are NaN, infinite or negative"
		action = "Treated the vehicle as stopped for this tick"
	case WarningInvalidElapsed:
		description = "ticks with an invalid elapsed time"
		action = "Applied no movement"
	case WarningInvalidDelta:
		description = "progress deltas that are NaN, infinite or negative"
		action = "Applied no movement"
	case WarningDegenerateRoute:
		description = "vehicles on routes with fewer than two waypoints"
		action = "Pinned to a single point as stopped"
	default:
		description = "unknown issue"
		action = "Continued with fallback behavior"
	}

	return fmt.Sprintf("data integrity: %s (%d occurrences). %s. Examples: %s",
		description, info.count, action, strings.Join(info.examples, ", "))
}
