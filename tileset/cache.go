package tileset

import (
	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/internal/cache"
	"github.com/gogpu/fpvosd/layout"
)

// DefaultCacheSize is the number of scaled sets a Cache keeps by default.
const DefaultCacheSize = 8

type cacheKey struct {
	dir     Dir
	variant layout.Variant
	kind    layout.TileKind
	width   int
	height  int
}

// Cache keeps loaded and rescaled tile sets so that rendering several
// recordings with the same font and decision loads it once.
//
// Cache is safe for concurrent use.
type Cache struct {
	sets *cache.Cache[cacheKey, *Set]
}

// NewCache returns a cache holding up to size sets; size <= 0 uses
// DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{sets: cache.New[cacheKey, *Set](size)}
}

// Load returns the set for variant v and kind k from d, scaled to
// width x height, loading it on first use.
func (c *Cache) Load(d Dir, v layout.Variant, k layout.TileKind, width, height int) (*Set, error) {
	key := cacheKey{dir: d, variant: v, kind: k, width: width, height: height}
	set, err := c.sets.GetOrLoad(key, func() (*Set, error) {
		s, err := d.Load(v, k)
		if err != nil {
			return nil, err
		}
		fpvosd.Logger().Debug("tileset: scaling glyphs", "kind", k, "width", width, "height", height)
		return s.Scaled(width, height)
	})
	if err != nil {
		return nil, err
	}
	st := c.sets.Stats()
	fpvosd.Logger().Debug("tileset: font cache", "sets", st.Len, "hits", st.Hits, "misses", st.Misses)
	return set, nil
}

// Len returns the number of cached sets.
func (c *Cache) Len() int {
	return c.sets.Len()
}
