package cache

import (
	"time"
)

// Cache provides a generic caching interface.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Clear()
	Len() int
}

// Entry represents a cached entry with an optional expiration.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// IsExpired reports whether the entry has expired. Entries without an
// expiration never expire.
func (e *Entry[V]) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}
