package metadata

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisCache(mr.Addr(), "")
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "9780000000001"); ok || err != nil {
		t.Fatalf("ok=%v err=%v, want empty cache", ok, err)
	}

	want := Result{Metadata: Metadata{Title: "T", Author: "A"}, Found: true}
	if err := c.Set(ctx, "9780000000001", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "9780000000001")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRedisCacheStoresMisses(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "9780000000002", Result{Found: false}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "9780000000002")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Found {
		t.Fatalf("cached miss came back as a hit")
	}
}
