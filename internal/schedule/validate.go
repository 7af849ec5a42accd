package schedule

import (
	"errors"
	"fmt"
	"time"

	"huddle/internal/models"
)

var (
	// ErrInvalidInterval rejects zero-length and inverted intervals. They
	// never reach the overlap check.
	ErrInvalidInterval = errors.New("start time must be strictly before end time")

	// ErrConflict is the sentinel all conflict rejections unwrap to.
	ErrConflict = errors.New("time slot is already booked")
)

// ConflictError reports the existing booking a candidate collided with, so
// callers can show the occupied slot without extra lookups.
type ConflictError struct {
	Title string
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot is already booked: %q %s - %s",
		e.Title,
		e.Start.Format("2006-01-02 15:04"),
		e.End.Format("15:04"))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Validate decides whether a candidate interval may be accepted against the
// room's current booking set. It performs no I/O and trusts the snapshot it
// is given; nil means accepted.
func Validate(candidate Interval, existing []models.Booking) error {
	if !candidate.IsValid() {
		return ErrInvalidInterval
	}

	if hit, ok := FindConflict(candidate, existing); ok {
		return &ConflictError{
			Title: hit.Title,
			Start: hit.StartTime,
			End:   hit.EndTime,
		}
	}

	return nil
}
