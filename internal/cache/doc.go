// Package cache provides the bounded in-memory caches used to memoize type
// inference.
//
// The cache package defines a generic Cache interface, a size-bounded
// least-recently-used MemoryCache and a Memo that collapses concurrent
// computations of the same key.
//
// Usage:
//
//	c := cache.NewMemoryCache[string, int](16)
//	c.Set("key", 42)
//	if val, ok := c.Get("key"); ok {
//	    // use cached value
//	}
package cache
