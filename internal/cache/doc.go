// Package cache provides a generic thread-safe LRU cache.
//
//	c := cache.New[string, *tileset.Set](8)
//	set, err := c.GetOrLoad(key, load)
//
// A limit of 0 means unlimited. Cache must not be copied after creation.
package cache
