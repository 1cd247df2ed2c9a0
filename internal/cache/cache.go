// Package cache provides the bounded user-record cache shared by the
// per-role repositories. Eviction is least-recently-used, one entry at a
// time: the cache may grow a single entry past its limit on insert and
// immediately corrects by dropping the entry with the oldest access time.
package cache

import (
	"sync"
	"time"
)

// DefaultLimit is the entry limit used by the user repositories.
const DefaultLimit = 16

type Cache[V any] struct {
	mu      sync.Mutex
	limit   int
	entries map[string]V
	times   map[string]time.Time

	now func() time.Time // overridable in tests
}

func New[V any](limit int) *Cache[V] {
	return &Cache[V]{
		limit:   limit,
		entries: make(map[string]V),
		times:   make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get returns the cached value and refreshes its last-access time.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.times[key] = c.now()
	return value, true
}

// Put inserts or overwrites an entry. If the cache is now over its limit,
// exactly one entry is evicted: the one least recently accessed.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value
	c.times[key] = c.now()

	if len(c.entries) <= c.limit {
		return
	}
	oldest := ""
	for k := range c.entries {
		if oldest == "" || c.times[k].Before(c.times[oldest]) {
			oldest = k
		}
	}
	delete(c.entries, oldest)
	delete(c.times, oldest)
}

// Invalidate removes an entry if present.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	delete(c.times, key)
}

// Find scans entries in arbitrary order and returns the first value the
// match function accepts. The scan does not count as an access, so it
// leaves recency untouched.
func (c *Cache[V]) Find(match func(V) bool) (string, V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range c.entries {
		if match(value) {
			return key, value, true
		}
	}
	var zero V
	return "", zero, false
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
