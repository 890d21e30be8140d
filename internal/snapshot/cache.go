// Package snapshot holds the most recently rendered metrics text.
//
// The cache is the single handoff point between the poller (sole writer)
// and the HTTP serving boundary (many concurrent readers). A publish swaps
// in a whole immutable string, so a reader observes either the previous
// render or the new one, never a mixture, and never blocks on an in-flight
// poll cycle.
package snapshot

import (
	"sync"
	"time"
)

// Cache is a multiple-reader, single-writer holder for the rendered
// exposition text. The zero snapshot (before the first successful poll) is
// the empty string.
type Cache struct {
	mu        sync.RWMutex
	text      string
	updatedAt time.Time
	published bool
	now       func() time.Time // injectable for deterministic tests
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{now: time.Now}
}

// Publish replaces the snapshot wholesale and stamps its freshness.
// Only the poller calls this, and only after a fully successful render.
func (c *Cache) Publish(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.updatedAt = c.now()
	c.published = true
}

// Text returns the current snapshot. Empty string until the first publish —
// callers serve that as-is rather than waiting for a poll to finish.
func (c *Cache) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

// UpdatedAt returns the time of the last publish. ok is false before the
// first successful poll.
func (c *Cache) UpdatedAt() (t time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt, c.published
}
