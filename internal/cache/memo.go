package cache

import (
	"golang.org/x/sync/singleflight"
)

// Memo memoizes a deterministic computation in a bounded cache. Concurrent
// misses on the same key share one computation.
type Memo[K comparable, V any] struct {
	cache     *MemoryCache[K, V]
	group     singleflight.Group
	keyString func(K) string
}

// NewMemo creates a Memo over an LRU of the given size. keyString must map
// distinct keys to distinct strings.
func NewMemo[K comparable, V any](size int, keyString func(K) string) *Memo[K, V] {
	return &Memo[K, V]{
		cache:     NewMemoryCache[K, V](size),
		keyString: keyString,
	}
}

// Do returns the cached value for key or computes and stores it. Failed
// computations are not cached.
func (m *Memo[K, V]) Do(key K, compute func() (V, error)) (V, error) {
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}
	res, err, _ := m.group.Do(m.keyString(key), func() (any, error) {
		if v, ok := m.cache.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len returns the number of memoized results.
func (m *Memo[K, V]) Len() int {
	return m.cache.Len()
}

// Cap returns the memo capacity.
func (m *Memo[K, V]) Cap() int {
	return m.cache.Cap()
}

// Clear drops every memoized result.
func (m *Memo[K, V]) Clear() {
	m.cache.Clear()
}
