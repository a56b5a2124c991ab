// Package cache provides in-memory TTL caching for quote results.
//
// Entries are never actively evicted: a stale entry stays in the map
// until the next successful Set overwrites it. The symbol universe is
// small and process-lived, so unbounded growth is accepted.
package cache

import (
	"sync"
	"time"

	"networth/internal/domain"
)

type entry struct {
	value     domain.PriceResult
	fetchedAt time.Time
}

// PriceCache memoizes quote results keyed by market-qualified symbol.
// Safe for concurrent use; a get/set pair racing on the same key costs
// at worst a duplicate fetch, never a corrupt read.
type PriceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// New creates a price cache with the given TTL. Construct one per
// process (or per test) rather than sharing an ambient singleton.
func New(ttl time.Duration) *PriceCache {
	return &PriceCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it is still fresh.
// A stale entry is a miss but is left in place.
func (c *PriceCache) Get(key string) (domain.PriceResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.PriceResult{}, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return domain.PriceResult{}, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any previous entry.
func (c *PriceCache) Set(key string, value domain.PriceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
}

// Clear empties the cache. Administrative and testing use only.
func (c *PriceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of entries, fresh or stale.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
