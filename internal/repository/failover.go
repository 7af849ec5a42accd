package repository

import (
	"context"
	"sync/atomic"
	"time"

	"huddle/internal/domain"
	"huddle/internal/models"

	"github.com/rs/zerolog"
)

// FailoverScheduleCache serves from the primary (Redis) until it errors,
// then falls back to the in-memory cache and probes the primary again after
// a minute. Losing cache contents on failover is acceptable: entries are
// read-time snapshots anyway.
type FailoverScheduleCache struct {
	primary   domain.ScheduleCache
	fallback  domain.ScheduleCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
}

const recoveryProbeInterval = time.Minute

func NewFailoverScheduleCache(primary, fallback domain.ScheduleCache, logger *zerolog.Logger) *FailoverScheduleCache {
	return &FailoverScheduleCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverScheduleCache) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary schedule cache failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverScheduleCache) shouldProbe() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > recoveryProbeInterval
}

func (f *FailoverScheduleCache) GetDay(ctx context.Context, roomID string, day time.Time) ([]models.Booking, bool, error) {
	if !f.isDown.Load() {
		bookings, ok, err := f.primary.GetDay(ctx, roomID, day)
		if err == nil {
			return bookings, ok, nil
		}
		f.markDown(err)
	} else if f.shouldProbe() {
		bookings, ok, err := f.primary.GetDay(ctx, roomID, day)
		if err == nil {
			f.isDown.Store(false)
			return bookings, ok, nil
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.GetDay(ctx, roomID, day)
}

func (f *FailoverScheduleCache) SetDay(ctx context.Context, roomID string, day time.Time, bookings []models.Booking) error {
	if !f.isDown.Load() {
		if err := f.primary.SetDay(ctx, roomID, day, bookings); err == nil {
			return nil
		} else {
			f.markDown(err)
		}
	}
	return f.fallback.SetDay(ctx, roomID, day, bookings)
}

func (f *FailoverScheduleCache) InvalidateRoom(ctx context.Context, roomID string) error {
	// Invalidate both sides: stale entries may survive a failover flip.
	var firstErr error
	if err := f.primary.InvalidateRoom(ctx, roomID); err != nil && !f.isDown.Load() {
		f.markDown(err)
		firstErr = err
	}
	if err := f.fallback.InvalidateRoom(ctx, roomID); err != nil && firstErr == nil {
		firstErr = err
	}
	if f.isDown.Load() {
		return nil
	}
	return firstErr
}

func (f *FailoverScheduleCache) CheckRateLimit(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	if !f.isDown.Load() {
		allowed, err := f.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			return allowed, nil
		}
		f.markDown(err)
	}
	return f.fallback.CheckRateLimit(ctx, userID, limit, window)
}
