// Package ratelimit implements a fixed-window request limiter keyed by
// user ID. Counts live in Redis so limits survive restarts; there is no
// cross-node coordination beyond the shared counter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// Counter increments a window-scoped counter and reports the new count and
// the remaining window lifetime.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
}

func NewLimiter(counter Counter, requestsPerWindow int, window time.Duration) *Limiter {
	if requestsPerWindow <= 0 {
		requestsPerWindow = 100
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Limiter{
		counter: counter,
		limit:   requestsPerWindow,
		window:  window,
	}
}

// Allow consumes one request slot for the user. Calls past the limit still
// count against the window, matching fixed-window semantics.
func (l *Limiter) Allow(ctx context.Context, userID uint) (Result, error) {
	key := fmt.Sprintf("ratelimit:chat:%d", userID)
	count, ttl, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return Result{}, err
	}
	if ttl <= 0 {
		ttl = l.window
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(l.limit),
		Remaining: remaining,
		ResetIn:   ttl,
	}, nil
}

func (l *Limiter) Limit() int {
	return l.limit
}

// RedisCounter backs the limiter with INCR plus a window-length expiry set
// on the first hit.
type RedisCounter struct {
	client *redisv9.Client
}

func NewRedisCounter(client *redisv9.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("redis rate limit incr failed: %w", err)
	}
	return incr.Val(), ttl.Val(), nil
}
