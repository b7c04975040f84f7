package memory

import (
	"context"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	if _, ok := c.Get(ctx, "channel:x"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "channel:x", []byte(`{"id":"x"}`), time.Minute)
	got, ok := c.Get(ctx, "channel:x")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(got) != `{"id":"x"}` {
		t.Fatalf("value mismatch: %s", got)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)

	if err := c.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("a should be gone")
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatal("b should be gone")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	c.Set(ctx, "short", []byte("1"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Fatal("entry should have expired")
	}
}
