package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	ttl     time.Duration
	err     error
	lastKey string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64), ttl: 30 * time.Minute}
}

func (c *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, time.Duration, error) {
	if c.err != nil {
		return 0, 0, c.err
	}
	c.counts[key]++
	c.lastKey = key
	return c.counts[key], c.ttl, nil
}

func TestAllowWithinLimit(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLimiter(counter, 3, time.Hour)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(context.Background(), 7)
		require.NoError(t, err)
		require.True(t, result.Allowed)
		require.Equal(t, 3-(i+1), result.Remaining)
		require.Equal(t, 30*time.Minute, result.ResetIn)
	}
}

func TestAllowPastLimit(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLimiter(counter, 2, time.Hour)

	for i := 0; i < 2; i++ {
		result, err := limiter.Allow(context.Background(), 7)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Allow(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Zero(t, result.Remaining)

	// Rejected calls still consume the window counter.
	require.Equal(t, int64(3), counter.counts["ratelimit:chat:7"])
}

func TestAllowKeysPerUser(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLimiter(counter, 1, time.Hour)

	first, err := limiter.Allow(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, first.Allowed)

	// A different user has an independent window.
	second, err := limiter.Allow(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, second.Allowed)
	require.Equal(t, "ratelimit:chat:2", counter.lastKey)
}

func TestAllowPropagatesBackendError(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("redis down")
	limiter := NewLimiter(counter, 5, time.Hour)

	_, err := limiter.Allow(context.Background(), 1)
	require.Error(t, err)
}

func TestAllowMissingTTLFallsBackToWindow(t *testing.T) {
	counter := newFakeCounter()
	counter.ttl = 0
	limiter := NewLimiter(counter, 5, time.Hour)

	result, err := limiter.Allow(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, time.Hour, result.ResetIn)
}

func TestNewLimiterDefaults(t *testing.T) {
	limiter := NewLimiter(newFakeCounter(), 0, 0)
	require.Equal(t, 100, limiter.Limit())
}
