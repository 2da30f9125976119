package viewsource

import (
	"github.com/squigglygo/squiggly/internal/memcache"
	"github.com/squigglygo/squiggly/types"
)

// CachingViewSource wraps a types.ViewSource with a types.Cache,
// memoizing resolved views so a hot view name doesn't repeatedly hit
// the wrapped source (e.g. a SQLViewSource whose Reload has not yet
// been asked to run again). A miss is cached too, with a shorter TTL,
// so an unregistered view name doesn't get re-checked on every parse.
type CachingViewSource struct {
	source  types.ViewSource
	cache   types.Cache
	hitTTL  string
	missTTL string
}

const missSentinel = "\x00miss"

// NewCachingViewSource wraps source with an in-memory cache. hitTTL and
// missTTL are time.ParseDuration strings ("5m", "30s"); an empty string
// means "never expires".
func NewCachingViewSource(source types.ViewSource, hitTTL, missTTL string) *CachingViewSource {
	return &CachingViewSource{
		source:  source,
		cache:   memcache.New(0),
		hitTTL:  hitTTL,
		missTTL: missTTL,
	}
}

// ResolveView implements types.ViewSource.
func (c *CachingViewSource) ResolveView(name string) ([]string, bool) {
	if cached := c.cache.Get(name); cached != nil {
		if s, ok := cached.(string); ok && s == missSentinel {
			return nil, false
		}
		return cached.([]string), true
	}

	fields, ok := c.source.ResolveView(name)
	if !ok {
		_ = c.cache.Set(name, missSentinel, c.missTTL)
		return nil, false
	}
	_ = c.cache.Set(name, fields, c.hitTTL)
	return fields, true
}

// Invalidate drops name's cached entry, forcing the next ResolveView to
// consult the wrapped source again.
func (c *CachingViewSource) Invalidate(name string) {
	_ = c.cache.Delete(name)
}

// InvalidateAll drops the cached entries for each of names. Names not
// listed keep their cached entries until they expire or are invalidated.
func (c *CachingViewSource) InvalidateAll(names ...string) {
	for _, n := range names {
		c.Invalidate(n)
	}
}

var _ types.ViewSource = (*CachingViewSource)(nil)
