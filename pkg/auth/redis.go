package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window rate limiter backed by Redis, for
// deployments running more than one gateway instance. The window counter
// is maintained atomically by a Lua script.
type RedisLimiter struct {
	client *redis.Client
	rpm    int
	window time.Duration
}

var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiterConfig holds the Redis limiter settings.
type RedisLimiterConfig struct {
	Addr     string
	Password string
	DB       int

	// RPM is the per-key request budget per window. <= 0 disables limiting.
	RPM int
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(cfg RedisLimiterConfig) (*RedisLimiter, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisLimiter{
		client: client,
		rpm:    cfg.RPM,
		window: time.Minute,
	}, nil
}

// Allow checks the request against the shared window counter.
// Fails open: a Redis error allows the request rather than turning an
// infrastructure failure into a client-facing outage.
func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	if l.rpm <= 0 {
		return nil
	}

	current, err := allowScript.Run(ctx, l.client, []string{"ratelimit:" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", "error", err)
		return nil
	}

	if current > int64(l.rpm) {
		return ErrTooManyRequests
	}

	return nil
}

// Close releases the Redis client.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
