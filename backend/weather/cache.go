package weather

import (
	"fmt"
	"sync"
	"time"
)

// cacheTTL bounds how long a sample is reused before a fresh fetch,
// grounded on the teacher's cache package's expiring-entry idiom.
const cacheTTL = 5 * time.Minute

type cacheEntry struct {
	sample  Sample
	expires time.Time
}

// Cache is a small process-local cache of recent weather samples,
// keyed by rounded coordinate so nearby lookups share an entry.
type Cache struct {
	mtx     sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func key(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// Get returns a cached, unexpired sample for the coordinate, if any.
func (c *Cache) Get(lat, lon float64) (Sample, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	e, ok := c.entries[key(lat, lon)]
	if !ok || time.Now().After(e.expires) {
		return Sample{}, false
	}
	return e.sample, true
}

// Put stores a sample, replacing any existing entry for the same
// coordinate key.
func (c *Cache) Put(lat, lon float64, s Sample) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.entries[key(lat, lon)] = cacheEntry{sample: s, expires: time.Now().Add(cacheTTL)}
}
