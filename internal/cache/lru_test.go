package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Get(ctx, "a") // a becomes most recent
	c.Set(ctx, "c", 3)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if v, ok := c.Get(ctx, "a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}

	c.Set(ctx, "a", 10)
	if v, _ := c.Get(ctx, "a"); v != 10 {
		t.Fatalf("expected overwrite, got %d", v)
	}
	c.Delete(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatalf("expected a to be deleted")
	}
}

func TestLRUCacheExpiration(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "x", "1")
	c.Set(ctx, "y", "2")
	now = now.Add(2 * time.Minute)
	c.Set(ctx, "z", "3")

	if _, ok := c.Get(ctx, "x"); ok {
		t.Fatalf("expected x to be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned entry (y), got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected only z left, got %d", c.Size())
	}
}

func TestManagerSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	a := NewLRUCache[int](10, time.Second)
	a.now = func() time.Time { return now }
	a.Set(ctx, "k", 1)
	now = now.Add(time.Hour)

	m := NewManager(nil)
	m.Register(a)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
}
