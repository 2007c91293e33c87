package cache

import "sync"

// Cache is a thread-safe LRU cache holding at most limit entries.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*cacheEntry[K, V]
	order   *lruList[K]
	limit   int
	hits    uint64
	misses  uint64
}

type cacheEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache with the given limit. A limit of 0 means unlimited.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*cacheEntry[K, V]),
		order:   newLRUList[K](),
		limit:   max(limit, 0),
	}
}

// Get returns the cached value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *Cache[K, V]) get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(e.node)
	return e.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *Cache[K, V]) set(key K, value V) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.order.MoveToFront(e.node)
		return
	}
	c.entries[key] = &cacheEntry[K, V]{value: value, node: c.order.PushFront(key)}
	for c.limit > 0 && len(c.entries) > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.key)
	}
}

// GetOrLoad returns the cached value or stores the result of load. load runs
// under the cache lock, so concurrent callers never load a key twice.
// Errors are returned and not cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.set(key, v)
	return v, nil
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Capacity: c.limit, Hits: c.hits, Misses: c.misses}
}

// Stats contains cache statistics.
type Stats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}
