package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores tenant lookups keyed by identifier kind ("id:", "slug:",
// "domain:" prefixes). Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// DefaultCacheSize is the default item limit of the in-memory cache.
const DefaultCacheSize = 1000

type cacheEntry struct {
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is a size-bounded in-memory cache with TTL and LRU eviction.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]cacheEntry
	order   []string
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryCache creates an in-memory cache with the default size limit.
func NewMemoryCache() Cache {
	return NewMemoryCacheWithSize(DefaultCacheSize)
}

// NewMemoryCacheWithSize creates an in-memory cache holding at most maxSize
// entries; the least recently used entry is evicted first.
func NewMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &memoryCache{
		items:   make(map[string]cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.items, key)
		c.unlink(key)
		return nil, false
	}
	c.touch(key)
	return entry.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	c.items[key] = cacheEntry{tenant: t, expiresAt: time.Now().Add(ttl)}
	c.touch(key)
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.unlink(key)
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.items {
				if now.After(entry.expiresAt) {
					delete(c.items, key)
					c.unlink(key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// touch moves the key to the most recently used position.
func (c *memoryCache) touch(key string) {
	c.unlink(key)
	c.order = append(c.order, key)
}

func (c *memoryCache) unlink(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// NoopCache disables caching; every lookup misses.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string) (*Tenant, bool)            { return nil, false }
func (NoopCache) Set(ctx context.Context, key string, t *Tenant, _ time.Duration) {}
func (NoopCache) Delete(ctx context.Context, key string)                          {}
func (NoopCache) Close() error                                                    { return nil }
