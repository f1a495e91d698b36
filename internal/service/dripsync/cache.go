package dripsync

import (
	"sync"
	"time"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// Cache is an explicit TTL cache for computed window maps, injected
// into the service rather than living in package-level state. Handlers
// read through it; entries expire after the configured TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // ticker → windows
	ttl     time.Duration

	// Metrics
	hits   int64
	misses int64
}

type cacheEntry struct {
	windows   map[int]drip.Result
	expiresAt time.Time
}

// NewCache creates a cache with the given entry TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached window map for a ticker, or nil on miss or
// expiry
func (c *Cache) Get(ticker string) map[int]drip.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[ticker]
	if !ok {
		c.misses++
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, ticker)
		c.misses++
		return nil
	}

	c.hits++

	// Return a copy so callers cannot mutate the cached map
	windows := make(map[int]drip.Result, len(entry.windows))
	for days, res := range entry.windows {
		windows[days] = res
	}
	return windows
}

// Set stores the window map for a ticker with a fresh TTL
func (c *Cache) Set(ticker string, windows map[int]drip.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make(map[int]drip.Result, len(windows))
	for days, res := range windows {
		copied[days] = res
	}

	c.entries[ticker] = &cacheEntry{
		windows:   copied,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate removes one ticker's entry
func (c *Cache) Invalidate(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, ticker)
}

// Clear removes all entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hitRate := float64(0)
	total := c.hits + c.misses
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Size:    len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: hitRate,
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"` // percentage
}
