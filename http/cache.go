package http

import (
	"sync"
	"time"

	"sproutsync/sprout"
)

// responseCache keeps GET responses until their TTL passes.
// Entries are dropped lazily on lookup.
type responseCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	resp      *sprout.Response
	expiresAt time.Time
}

func newResponseCache(now func() time.Time) *responseCache {
	return &responseCache{
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *responseCache) get(key string) (*sprout.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.resp, true
}

func (c *responseCache) put(key string, resp *sprout.Response, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{resp: resp, expiresAt: c.now().Add(ttl)}
}
