package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
)

type cacheEntry struct {
	value    float64
	storedAt time.Time
}

// RateCache holds TRM values by calendar date for the lifetime of one run or request.
// It is passed explicitly to the resolver instead of living in package state.
type RateCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mutex   sync.RWMutex
}

// NewRateCache creates an empty cache; a zero ttl keeps entries for the cache's lifetime
func NewRateCache(ttl time.Duration) *RateCache {
	return &RateCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(date time.Time) string {
	return entity.Day(date).Format(entity.DateLayout)
}

// Get returns the cached value for date and whether it was present and fresh
func (c *RateCache) Get(date time.Time) (float64, bool) {
	if c == nil {
		return 0, false
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[cacheKey(date)]
	if !ok {
		return 0, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		return 0, false
	}
	return entry.value, true
}

// Put stores value for date, replacing any previous entry
func (c *RateCache) Put(date time.Time, value float64) {
	if c == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[cacheKey(date)] = cacheEntry{value: value, storedAt: c.now()}
}

// Size returns the number of entries, expired ones included
func (c *RateCache) Size() int {
	if c == nil {
		return 0
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}
