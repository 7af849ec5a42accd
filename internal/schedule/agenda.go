package schedule

import (
	"sort"
	"time"

	"huddle/internal/models"
)

// SameDay reports whether t falls on the given calendar day. The comparison
// uses the date component in day's location, not the UTC interval.
func SameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ForDay returns the room's agenda for one calendar day: bookings whose
// start time falls on that date, ordered by start time ascending. The sort
// is stable, so ties keep their incoming (creation) order.
//
// This is a display helper. Overlap validation always runs against the full
// room set; narrowing by day is never a correctness mechanism.
func ForDay(bookings []models.Booking, day time.Time) []models.Booking {
	var agenda []models.Booking
	for _, b := range bookings {
		if SameDay(b.StartTime, day) {
			agenda = append(agenda, b)
		}
	}

	sort.SliceStable(agenda, func(i, j int) bool {
		return agenda[i].StartTime.Before(agenda[j].StartTime)
	})

	return agenda
}
