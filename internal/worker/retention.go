package worker

import (
	"context"
	"time"

	"huddle/internal/config"

	"github.com/rs/zerolog"
)

// BookingPurger is the slice of the record store the retention worker needs.
type BookingPurger interface {
	DeleteBookingsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker periodically purges bookings that ended long ago. It only
// ever deletes finished intervals, so it can never violate the no-overlap
// invariant for future bookings.
type RetentionWorker struct {
	store    BookingPurger
	keepDays int
	interval time.Duration
	retry    RetryPolicy
	logger   zerolog.Logger
}

func NewRetentionWorker(store BookingPurger, cfg config.RetentionConfig, logger *zerolog.Logger) *RetentionWorker {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "retention").Logger()
	}

	return &RetentionWorker{
		store:    store,
		keepDays: cfg.KeepDays,
		interval: time.Duration(cfg.IntervalSeconds) * time.Second,
		retry: RetryPolicy{
			MaxRetries:    3,
			InitialDelay:  5 * time.Second,
			MaxDelay:      time.Minute,
			BackoffFactor: 2,
		},
		logger: base,
	}
}

// Run blocks until ctx is cancelled, purging on every tick.
func (w *RetentionWorker) Run(ctx context.Context) {
	w.logger.Info().Int("keep_days", w.keepDays).Dur("interval", w.interval).Msg("retention worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("retention worker stopped")
			return
		case <-ticker.C:
			w.purgeWithRetry(ctx)
		}
	}
}

// PurgeOnce runs a single purge pass without retries. Exposed for startup
// sweeps and tests.
func (w *RetentionWorker) PurgeOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -w.keepDays)
	return w.store.DeleteBookingsEndedBefore(ctx, cutoff)
}

func (w *RetentionWorker) purgeWithRetry(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		purged, err := w.PurgeOnce(ctx)
		if err == nil {
			if purged > 0 {
				w.logger.Info().Int64("purged", purged).Msg("old bookings purged")
			}
			return
		}

		if attempt > w.retry.MaxRetries {
			w.logger.Error().Err(err).Int("attempts", attempt).Msg("purge failed, giving up until next tick")
			return
		}

		delay := w.retry.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("purge failed, will retry")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
