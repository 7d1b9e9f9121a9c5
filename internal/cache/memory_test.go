package cache

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache[string, string](4)

	t.Run("set and get", func(t *testing.T) {
		c.Set("key", "value")

		val, ok := c.Get("key")
		if !ok {
			t.Fatal("expected key to exist")
		}
		if val != "value" {
			t.Errorf("Get() = %v, want %v", val, "value")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := c.Get("missing")
		if ok {
			t.Error("expected key to not exist")
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		c.Set("key", "other")
		if val, _ := c.Get("key"); val != "other" {
			t.Errorf("Get() = %v, want other", val)
		}
		if c.Len() != 1 {
			t.Errorf("Len() = %d, want 1", c.Len())
		}
	})
}

func TestMemoryCache_Eviction(t *testing.T) {
	c := NewMemoryCache[int, int](2)

	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("expected key 2 to be evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("expected key 1 to survive")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestMemoryCache_DefaultSize(t *testing.T) {
	c := NewMemoryCache[int, int](0)
	if c.Cap() != DefaultSize {
		t.Errorf("Cap() = %d, want %d", c.Cap(), DefaultSize)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache[string, string](4)

	c.Set("key", "value")
	c.Delete("key")

	_, ok := c.Get("key")
	if ok {
		t.Error("expected key to be deleted")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache[string, string](4)

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c := NewMemoryCache[string, string](4).WithTTL(-time.Second)
	c.Set("expired", "value")

	c.WithTTL(time.Hour)
	c.Set("valid", "value")

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.Cleanup()

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	if _, ok := c.Get("valid"); !ok {
		t.Error("expected valid key to exist")
	}
}

func TestMemo_Do(t *testing.T) {
	m := NewMemo[int, string](16, strconv.Itoa)
	var calls atomic.Int32

	compute := func() (string, error) {
		calls.Add(1)
		return "seven", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := m.Do(7, compute)
			if err != nil || got != "seven" {
				t.Errorf("Do() = %q, %v", got, err)
			}
		}()
	}
	wg.Wait()

	if _, err := m.Do(7, compute); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	// Concurrent misses may race past the cache check before the first
	// result is stored, but a later call must hit.
	before := calls.Load()
	if _, err := m.Do(7, compute); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls.Load() != before {
		t.Error("expected cached result on repeat call")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemo_ErrorNotCached(t *testing.T) {
	m := NewMemo[string, int](4, func(s string) string { return s })
	boom := errors.New("boom")

	if _, err := m.Do("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want boom", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}

	got, err := m.Do("k", func() (int, error) { return 3, nil })
	if err != nil || got != 3 {
		t.Errorf("Do() = %d, %v, want 3", got, err)
	}
}
