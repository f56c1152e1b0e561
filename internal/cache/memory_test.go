package cache

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	c := NewMemoryCache(1024)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should miss")
	}
	if err := c.Put("a", []byte("alpha")); err != nil {
		t.Fatalf("Put() = %v", err)
	}
	got, ok := c.Get("a")
	if !ok || string(got) != "alpha" {
		t.Errorf("Get() = %q, %v, want %q, true", got, ok, "alpha")
	}
	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get() after Delete() should miss")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 2 {
		t.Errorf("Stats() hits/misses = %d/%d, want 1/2", s.Hits, s.Misses)
	}
	if s.Size != 0 || s.Items != 0 {
		t.Errorf("Stats() size/items = %d/%d, want 0/0", s.Size, s.Items)
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(30)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Put(k, bytes.Repeat([]byte(k), 10)); err != nil {
			t.Fatalf("Put(%s) = %v", k, err)
		}
	}
	c.Get("a") // b is now least recently used
	if err := c.Put("d", bytes.Repeat([]byte("d"), 10)); err != nil {
		t.Fatalf("Put(d) = %v", err)
	}

	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
		{"d", true},
	}
	for _, tt := range tests {
		if _, ok := c.Get(tt.key); ok != tt.want {
			t.Errorf("Get(%s) present = %v, want %v", tt.key, ok, tt.want)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestMemoryCache_ItemTooLarge(t *testing.T) {
	c := NewMemoryCache(4)
	if err := c.Put("big", []byte("too large")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put() = %v, want %v", err, ErrItemTooLarge)
	}
}

func TestMemoryCache_ReplaceKeepsSize(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("k", make([]byte, 40))
	_ = c.Put("k", make([]byte, 10))
	if got := c.Stats().Size; got != 10 {
		t.Errorf("Size = %d, want 10", got)
	}
}

func TestMemoryCache_Prune(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("old", []byte("x"))
	time.Sleep(20 * time.Millisecond)
	_ = c.Put("new", []byte("y"))

	if got := c.Prune(10 * time.Millisecond); got != 1 {
		t.Errorf("Prune() = %d, want 1", got)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("recent entry was pruned")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(1 << 20)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", n, j%10)
				_ = c.Put(key, []byte(key))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if got := c.Stats().Items; got != 80 {
		t.Errorf("Items = %d, want 80", got)
	}
}
