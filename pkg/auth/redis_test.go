package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testRedisLimiter(t *testing.T, rpm int) *RedisLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	l, err := NewRedisLimiter(RedisLimiterConfig{Addr: mr.Addr(), RPM: rpm})
	if err != nil {
		t.Fatalf("creating limiter: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRedisLimiter_EnforcesBudget(t *testing.T) {
	l := testRedisLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Allow(ctx, "u1:org-1"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	if err := l.Allow(ctx, "u1:org-1"); err != ErrTooManyRequests {
		t.Errorf("3rd request: err = %v, want ErrTooManyRequests", err)
	}
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	l := testRedisLimiter(t, 1)
	ctx := context.Background()

	if err := l.Allow(ctx, "u1:org-1"); err != nil {
		t.Fatalf("u1: %v", err)
	}
	if err := l.Allow(ctx, "u2:org-1"); err != nil {
		t.Errorf("u2 must have its own budget: %v", err)
	}
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := NewRedisLimiter(RedisLimiterConfig{Addr: mr.Addr(), RPM: 1})
	if err != nil {
		t.Fatalf("creating limiter: %v", err)
	}
	defer l.Close()

	ctx := context.Background()
	if err := l.Allow(ctx, "u1:org-1"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := l.Allow(ctx, "u1:org-1"); err != ErrTooManyRequests {
		t.Fatalf("second request: err = %v, want ErrTooManyRequests", err)
	}

	// Advance past the window; the counter key should expire.
	mr.FastForward(l.window + 1)

	if err := l.Allow(ctx, "u1:org-1"); err != nil {
		t.Errorf("request after window: %v", err)
	}
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := NewRedisLimiter(RedisLimiterConfig{Addr: mr.Addr(), RPM: 1})
	if err != nil {
		t.Fatalf("creating limiter: %v", err)
	}
	defer l.Close()

	// Kill the backend; requests must still be allowed.
	mr.Close()

	if err := l.Allow(context.Background(), "u1:org-1"); err != nil {
		t.Errorf("limiter must fail open when redis is down: %v", err)
	}
}

func TestRedisLimiter_RequiresAddr(t *testing.T) {
	if _, err := NewRedisLimiter(RedisLimiterConfig{RPM: 10}); err == nil {
		t.Error("expected error for missing addr")
	}
}
