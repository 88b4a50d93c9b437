package zeroshot

import (
	"sync"
	"time"

	"github.com/zhuantitest/ledgerparse/internal/model"
)

// Cache sizing for the hosted classifier. Entries are cheap; the TTL
// keeps rankings fresh across dictionary updates on the model side.
const (
	DefaultCacheTTL     = 5 * time.Minute
	DefaultCacheEntries = 300
)

type cacheEntry struct {
	rankings  model.LabelRankings
	expiresAt time.Time
}

// resultCache is a TTL cache over classification rankings, keyed by the
// full request shape. When the entry cap is exceeded an insert sweeps
// expired entries first and evicts the oldest if still over.
type resultCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
	mu      sync.RWMutex
}

func newResultCache(ttl time.Duration, max int) *resultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if max <= 0 {
		max = DefaultCacheEntries
	}
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

func (c *resultCache) get(key string) (model.LabelRankings, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}

	// Hand out a copy so callers can sort without racing the cache.
	out := make(model.LabelRankings, len(entry.rankings))
	copy(out, entry.rankings)
	return out, true
}

func (c *resultCache) put(key string, rankings model.LabelRankings) {
	stored := make(model.LabelRankings, len(rankings))
	copy(stored, rankings)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		c.sweepLocked()
	}
	c.entries[key] = cacheEntry{
		rankings:  stored,
		expiresAt: c.now().Add(c.ttl),
	}
}

// sweepLocked drops expired entries, then the soonest-to-expire entry
// if the cache is still full. Caller holds the write lock.
func (c *resultCache) sweepLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.max {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
