package database

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound помечает отсутствующую запись (комнату или бронирование).
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable tags infrastructure failures of the store. Callers
	// retry; they never treat these as logical rejections.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrIndeterminate tags a write whose acknowledgment was lost (timeout
	// or cancellation mid-write). The booking may or may not exist; the
	// caller must re-check instead of retrying blindly.
	ErrIndeterminate = errors.New("write outcome unknown")
)

func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// wrapWrite classifies an error from a write that may already have reached
// the store. Context expiry means the outcome is unknown, not failed.
func wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, ErrIndeterminate, err)
	}
	return wrapStore(op, err)
}
