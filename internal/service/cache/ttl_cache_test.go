package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if b, ok, _ := c.GetBytes(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("expected hit, got %q %v", b, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatalf("expected expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not evicted")
	}
}

func TestTTLCacheNoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	_ = c.SetBytes(ctx, "k", []byte("v"), 0)
	c.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if _, ok, _ := c.GetBytes(ctx, "k"); !ok {
		t.Fatalf("entry without ttl must not expire")
	}
}

func TestTTLCacheSweepsExpiredOnWrite(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		_ = c.SetBytes(ctx, fmt.Sprintf("AAPL:%d", i), []byte("v"), time.Minute)
	}
	now = now.Add(2 * sweepInterval)
	_ = c.SetBytes(ctx, "MSFT:2y", []byte("v"), time.Minute)
	if c.Len() != 1 {
		t.Fatalf("expired entries kept: %d", c.Len())
	}
}

func TestTTLCacheMaxEntries(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(WithMaxEntries(3))
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.SetBytes(ctx, "a", []byte("1"), 3*time.Minute)
	_ = c.SetBytes(ctx, "b", []byte("2"), time.Minute)
	_ = c.SetBytes(ctx, "c", []byte("3"), 0)
	_ = c.SetBytes(ctx, "d", []byte("4"), 2*time.Minute)

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if _, ok, _ := c.GetBytes(ctx, "b"); ok {
		t.Fatalf("entry closest to expiry should be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok, _ := c.GetBytes(ctx, k); !ok {
			t.Fatalf("expected %q to survive", k)
		}
	}

	// overwriting an existing key never evicts
	_ = c.SetBytes(ctx, "a", []byte("5"), time.Minute)
	if c.Len() != 3 {
		t.Fatalf("len after overwrite = %d", c.Len())
	}
}
