package engine

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/squigglygo/squiggly/types"
)

// negativeCacheTTL bounds how long a parse failure is remembered before
// the next Parse call for the same text is allowed to retry it. A short
// TTL is enough to collapse a burst of requests carrying the same bad
// filter string without permanently wedging a transient failure.
const negativeCacheTTL = 2 * time.Second

// ParseCache is a bounded LRU cache of parsed Filters, keyed on filter
// text, with at most one concurrent parse in flight per key
// (golang.org/x/sync/singleflight) and short-lived negative caching of
// parse failures. Eviction is capacity-driven rather than a background
// GC ticker, since a successfully parsed Filter never needs wall-clock
// expiry — only a failed parse's negative entry does.
type ParseCache struct {
	maxEntries int
	group      singleflight.Group

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key    string
	filter *Filter
	err    error
	// expiry is only meaningful when err != nil; zero means "never
	// expires", which is always true for successfully parsed entries.
	expiry time.Time
}

// NewParseCache returns a ParseCache holding at most maxEntries parsed
// filters. maxEntries <= 0 disables caching: every call parses fresh.
func NewParseCache(maxEntries int) *ParseCache {
	return &ParseCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Parse returns the cached Filter for text if present and still valid,
// otherwise parses it (coalescing concurrent callers for the same text
// into a single parse) and stores the result. viewOpts is assumed
// constant across the cache's lifetime, since it comes from the owning
// Engine's Config and isn't part of the cache key.
func (c *ParseCache) Parse(text string, viewSource types.ViewSource, viewOpts ViewOptions) (*Filter, error) {
	if c.maxEntries <= 0 {
		return Parse(text, viewSource, viewOpts)
	}

	if entry, ok := c.lookup(text); ok {
		return entry.filter, entry.err
	}

	v, err, _ := c.group.Do(text, func() (any, error) {
		filter, perr := Parse(text, viewSource, viewOpts)
		c.store(text, filter, perr)
		return filter, perr
	})
	if v == nil {
		return nil, err
	}
	return v.(*Filter), err
}

func (c *ParseCache) lookup(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return cacheEntry{}, false
	}
	entry := el.Value.(cacheEntry)
	if entry.err != nil && !entry.expiry.IsZero() && time.Now().After(entry.expiry) {
		c.ll.Remove(el)
		delete(c.items, key)
		return cacheEntry{}, false
	}
	c.ll.MoveToFront(el)
	return entry, true
}

func (c *ParseCache) store(key string, filter *Filter, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry{key: key, filter: filter, err: err}
	if err != nil {
		entry.expiry = time.Now().Add(negativeCacheTTL)
	}

	if el, ok := c.items[key]; ok {
		el.Value = entry
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(entry)
	c.items[key] = el

	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(cacheEntry).key)
	}
}

// Len reports the number of entries currently cached, for tests and
// diagnostics.
func (c *ParseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
