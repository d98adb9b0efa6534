package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, limit int) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", limit, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return limiter, redis
}

func TestFixedWindowLimiterBlocksOverQuota(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	for i := 0; i < 2; i++ {
		if !limiter.Allow("client-a") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if limiter.Allow("client-a") {
		t.Fatal("request over quota should be blocked")
	}
	// other keys have their own window
	if !limiter.Allow("client-b") {
		t.Fatal("separate key should not share the quota")
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	limiter, redis := newTestLimiter(t, 5)
	redis.Close()
	if limiter.Allow("client-a") {
		t.Fatal("limiter should fail closed when redis is down")
	}
}

func TestFixedWindowLimiterValidation(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter("", "", "", 1, time.Minute); err == nil {
		t.Fatal("expected error for empty redis addr")
	}
	if _, err := NewRedisFixedWindowLimiter("localhost:6379", "", "", 0, time.Minute); err == nil {
		t.Fatal("expected error for zero limit")
	}
}
