package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverScheduleCache(t *testing.T) {
	ctx := context.Background()
	day, bookings := sampleDay(t)
	logger := zerolog.Nop()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	primary := NewRedisScheduleCache(client, 5*time.Minute)
	fallback := NewMemoryScheduleCache(5 * time.Minute)
	cache := NewFailoverScheduleCache(primary, fallback, &logger)

	t.Run("primary_serves_while_up", func(t *testing.T) {
		require.NoError(t, cache.SetDay(ctx, "r1", day, bookings))
		got, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, got, 1)
	})

	t.Run("falls_back_when_primary_dies", func(t *testing.T) {
		mr.Close()

		// First call detects the failure and flips to the fallback.
		_, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		assert.False(t, ok, "memory fallback starts cold")

		require.NoError(t, cache.SetDay(ctx, "r1", day, bookings))
		got, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, got, 1)
	})

	t.Run("rate_limit_survives_failover", func(t *testing.T) {
		allowed, err := cache.CheckRateLimit(ctx, "u1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = cache.CheckRateLimit(ctx, "u1", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("invalidate_succeeds_while_down", func(t *testing.T) {
		assert.NoError(t, cache.InvalidateRoom(ctx, "r1"))
		_, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
