package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRequests is returned by limiters when a principal exceeds its
// request budget.
var ErrTooManyRequests = errors.New("rate limit exceeded")

// RateLimiter checks whether a request should be allowed for a principal.
// Keys are "subject:tenant" pairs so one noisy user cannot consume another
// tenant's budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) error
}

// InProcessLimiter is a sliding-window rate limiter tracking request counts
// per key in memory. Suitable for single-instance deployments.
type InProcessLimiter struct {
	rpm      int
	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates an in-memory limiter allowing rpm requests
// per key per minute. rpm <= 0 disables limiting.
func NewInProcessLimiter(rpm int) *InProcessLimiter {
	return &InProcessLimiter{
		rpm:      rpm,
		counters: make(map[string]*counter),
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	if l.rpm <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.rpm {
		return ErrTooManyRequests
	}

	return nil
}
