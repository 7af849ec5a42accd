package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryScheduleCache(t *testing.T) {
	ctx := context.Background()
	day, bookings := sampleDay(t)

	t.Run("set_get_invalidate", func(t *testing.T) {
		cache := NewMemoryScheduleCache(5 * time.Minute)

		_, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, cache.SetDay(ctx, "r1", day, bookings))
		got, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, got, 1)

		require.NoError(t, cache.InvalidateRoom(ctx, "r1"))
		_, ok, err = cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired_entry_is_a_miss", func(t *testing.T) {
		cache := NewMemoryScheduleCache(-time.Second)
		require.NoError(t, cache.SetDay(ctx, "r1", day, bookings))
		_, ok, err := cache.GetDay(ctx, "r1", day)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rate_limit_window", func(t *testing.T) {
		cache := NewMemoryScheduleCache(time.Minute)
		for i := 0; i < 2; i++ {
			allowed, err := cache.CheckRateLimit(ctx, "u1", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := cache.CheckRateLimit(ctx, "u1", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		// Другой пользователь не делит окно
		allowed, err = cache.CheckRateLimit(ctx, "u2", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("rate_limit_concurrent", func(t *testing.T) {
		cache := NewMemoryScheduleCache(time.Minute)

		const calls = 50
		const limit = 10
		results := make([]bool, calls)

		var wg sync.WaitGroup
		for i := 0; i < calls; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				allowed, err := cache.CheckRateLimit(ctx, "u1", limit, time.Minute)
				assert.NoError(t, err)
				results[i] = allowed
			}(i)
		}
		wg.Wait()

		granted := 0
		for _, allowed := range results {
			if allowed {
				granted++
			}
		}
		// No increment may be lost: exactly limit calls pass.
		assert.Equal(t, limit, granted)
	})
}
