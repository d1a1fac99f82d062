package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "key1", "value1", time.Hour)

	got, ok := c.Get(ctx, "key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "value1" {
		t.Errorf("Get() = %q, expected %q", got, "value1")
	}
}

func TestMemoryCache_MissingKey(t *testing.T) {
	c := NewMemoryCache()

	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("expected cache miss for absent key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "short", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "key1", "value1", time.Hour)
	c.Delete(ctx, "key1")

	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("expected cache miss after delete")
	}
}

func TestMemoryCache_Flush(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "key1", "value1", time.Hour)
	c.Set(ctx, "key2", "value2", time.Hour)
	c.Flush(ctx)

	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("expected key1 gone after flush")
	}
	if _, ok := c.Get(ctx, "key2"); ok {
		t.Error("expected key2 gone after flush")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "key", "v1", time.Hour)
	c.Set(ctx, "key", "v2", time.Hour)

	got, _ := c.Get(ctx, "key")
	if got != "v2" {
		t.Errorf("Get() = %q, expected overwritten value %q", got, "v2")
	}
}
