package services

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a resolved read is served from the cache.
const DefaultCacheTTL = 3 * time.Second

// Cache collapses bursts of identical reads into one fetch. Callers arriving
// while a fetch is in flight wait for it; resolved values are served until
// they are older than the TTL. Failed fetches are not kept.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	done     chan struct{}
	value    any
	err      error
	storedAt time.Time
}

// NewCache creates a cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the cached value for key or runs fetch to produce it.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		select {
		case <-e.done:
			if c.now().Sub(e.storedAt) < c.ttl {
				c.mu.Unlock()
				return e.value, e.err
			}
		default:
			c.mu.Unlock()
			select {
			case <-e.done:
				return e.value, e.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	e := &cacheEntry{done: make(chan struct{}), storedAt: c.now()}
	c.entries[key] = e
	c.mu.Unlock()

	e.value, e.err = fetch(ctx)
	if e.err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(e.done)
	return e.value, e.err
}

// Invalidate drops key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of entries, in flight or resolved.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
