package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "referential:Location:3", []byte(`{"id":3}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := c.Get(ctx, "referential:Location:3")
	if err != nil || !ok || string(value) != `{"id":3}` {
		t.Fatalf("expected cached value, got %q ok=%v err=%v", value, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "referential:Location:3"); ok {
		t.Fatalf("expected value to expire after its ttl")
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Fatalf("expected value without ttl to be kept")
	}
	if c.Len() != 1 {
		t.Fatalf("expected expired entry to be dropped, got %d entries", c.Len())
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	value := []byte("abc")
	_ = c.Set(ctx, "k", value, 0)
	value[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("expected stored value to be isolated from the caller, got %q", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected value to be deleted")
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	var c Cache = NewNoop()
	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected noop cache to miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("FISHQL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FISHQL_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedis(addr, "", 0)
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if err := c.Set(ctx, "test:k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "test:k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("expected cached value, got %q ok=%v err=%v", got, ok, err)
	}
	if err := c.Delete(ctx, "test:k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := c.Get(ctx, "test:k"); ok || err != nil {
		t.Fatalf("expected miss after delete, got ok=%v err=%v", ok, err)
	}
}
