// Package memcache is an in-memory types.Cache: a map guarded by a
// mutex, with a background ticker that sweeps expired entries so
// long-lived caches (e.g. a view-resolution cache with no natural
// eviction pressure) don't retain stale data indefinitely. Trimmed to
// the four methods types.Cache declares — no namespace wrapper or
// prefix scan, since nothing in this codebase needs them.
package memcache

import (
	"sync"
	"time"

	"github.com/squigglygo/squiggly/types"
)

type entry struct {
	value      interface{}
	expiration int64 // unix nano; 0 means no expiration
}

// Cache is an in-memory, thread-safe types.Cache implementation.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry

	gcInterval time.Duration
	ticker     *time.Ticker
	stopGC     chan struct{}
}

// New returns a Cache whose background sweep runs every gcInterval. A
// non-positive gcInterval disables the sweep; entries still expire
// lazily on Get/Has.
func New(gcInterval time.Duration) *Cache {
	c := &Cache{items: make(map[string]entry), gcInterval: gcInterval}
	return c
}

// Set implements types.Cache.
func (c *Cache) Set(key string, value interface{}, ttl string) error {
	var expiration int64
	if ttl != "" {
		dur, err := time.ParseDuration(ttl)
		if err != nil {
			return err
		}
		if dur > 0 {
			expiration = time.Now().Add(dur).UnixNano()
		}
	}

	c.mu.Lock()
	c.items[key] = entry{value: value, expiration: expiration}
	startGC := expiration > 0 && c.ticker == nil && c.gcInterval > 0
	c.mu.Unlock()

	if startGC {
		c.startGC()
	}
	return nil
}

// Get implements types.Cache.
func (c *Cache) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || (e.expiration > 0 && time.Now().UnixNano() > e.expiration) {
		return nil
	}
	return e.value
}

// Has implements types.Cache.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok {
		return false
	}
	return e.expiration == 0 || time.Now().UnixNano() <= e.expiration
}

// Delete implements types.Cache.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *Cache) startGC() {
	c.mu.Lock()
	if c.ticker != nil {
		c.mu.Unlock()
		return
	}
	c.ticker = time.NewTicker(c.gcInterval)
	c.stopGC = make(chan struct{})
	ticker, stop := c.ticker, c.stopGC
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the background sweep, if running. Safe to call on a Cache
// that never started one.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopGC != nil {
		close(c.stopGC)
		c.stopGC = nil
		c.ticker = nil
	}
}

func (c *Cache) sweep() {
	now := time.Now().UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if e.expiration > 0 && now > e.expiration {
			delete(c.items, k)
		}
	}
}

var _ types.Cache = (*Cache)(nil)
