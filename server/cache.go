package server

import (
	"bytes"
	"strconv"
	"sync"
)

// responseCache memoizes rendered feeds for one engine revision. Any tick,
// start or cancel moves the revision and drops every entry.
type responseCache struct {
	mu       sync.Mutex
	revision int64
	entries  map[string][]byte
}

func newResponseCache() *responseCache {
	return &responseCache{revision: -1, entries: map[string][]byte{}}
}

func memoKey(args ...string) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

// get returns the cached body for key at revision, building it on a miss.
// Build errors are not cached.
func (c *responseCache) get(revision int64, key string, build func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if revision != c.revision {
		c.revision = revision
		c.entries = map[string][]byte{}
	}
	if b, ok := c.entries[key]; ok {
		return b, nil
	}
	b, err := build()
	if err != nil {
		return nil, err
	}
	c.entries[key] = b
	return b, nil
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func itoa(n int) string { return strconv.Itoa(n) }
