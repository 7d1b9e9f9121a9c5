package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultSize is the capacity used when a non-positive size is requested.
const DefaultSize = 16

// MemoryCache implements Cache with a size-bounded LRU eviction policy.
type MemoryCache[K comparable, V any] struct {
	mu    sync.Mutex
	size  int
	ttl   time.Duration
	order *list.List
	items map[K]*list.Element
}

type lruItem[K comparable, V any] struct {
	key   K
	entry Entry[V]
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache[K comparable, V any](size int) *MemoryCache[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemoryCache[K, V]{
		size:  size,
		order: list.New(),
		items: make(map[K]*list.Element, size),
	}
}

// WithTTL sets an expiration applied to entries stored afterwards.
func (m *MemoryCache[K, V]) WithTTL(ttl time.Duration) *MemoryCache[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ttl = ttl
	return m
}

// Get retrieves a value and marks it most recently used.
func (m *MemoryCache[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, false
	}
	item := el.Value.(*lruItem[K, V])
	if item.entry.IsExpired() {
		m.removeLocked(el)
		return zero, false
	}
	m.order.MoveToFront(el)
	return item.entry.Value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (m *MemoryCache[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := Entry[V]{Value: value}
	if m.ttl != 0 {
		entry.ExpiresAt = time.Now().Add(m.ttl)
	}

	if el, ok := m.items[key]; ok {
		el.Value.(*lruItem[K, V]).entry = entry
		m.order.MoveToFront(el)
		return
	}

	m.items[key] = m.order.PushFront(&lruItem[K, V]{key: key, entry: entry})
	for m.order.Len() > m.size {
		m.removeLocked(m.order.Back())
	}
}

// Delete removes a value from the cache.
func (m *MemoryCache[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		m.removeLocked(el)
	}
}

// Clear removes all values from the cache.
func (m *MemoryCache[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order.Init()
	m.items = make(map[K]*list.Element, m.size)
}

// Len returns the number of items in the cache (including expired).
func (m *MemoryCache[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.order.Len()
}

// Cap returns the maximum number of entries.
func (m *MemoryCache[K, V]) Cap() int {
	return m.size
}

// Cleanup removes expired entries.
func (m *MemoryCache[K, V]) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*lruItem[K, V]).entry.IsExpired() {
			m.removeLocked(el)
		}
		el = next
	}
}

func (m *MemoryCache[K, V]) removeLocked(el *list.Element) {
	item := m.order.Remove(el).(*lruItem[K, V])
	delete(m.items, item.key)
}

// Ensure MemoryCache implements Cache interface
var _ Cache[string, int] = (*MemoryCache[string, int])(nil)
