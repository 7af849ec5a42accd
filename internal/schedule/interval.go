package schedule

import (
	"time"

	"huddle/internal/models"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid reports whether the interval has positive length.
func (iv Interval) IsValid() bool {
	return iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals share at least one
// instant. A booking ending exactly when another starts does not overlap,
// so back-to-back reservations are allowed.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// BookingInterval extracts the reserved interval of a booking.
func BookingInterval(b models.Booking) Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// FindConflict scans existing bookings for the first one overlapping the
// candidate. The caller must pre-filter existing to a single room; intervals
// from other rooms make the result meaningless.
func FindConflict(candidate Interval, existing []models.Booking) (*models.Booking, bool) {
	for i := range existing {
		if Overlaps(candidate, BookingInterval(existing[i])) {
			return &existing[i], true
		}
	}
	return nil, false
}
