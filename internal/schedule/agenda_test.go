package schedule

import (
	"testing"
	"time"

	"huddle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForDay(t *testing.T) {
	day, err := time.Parse("2006-01-02", "2025-03-10")
	require.NoError(t, err)
	nextDay := day.AddDate(0, 0, 1)

	bookings := []models.Booking{
		booking(t, "late", "15:00", "16:00"),
		booking(t, "early", "09:00", "10:00"),
		{ID: "tomorrow", StartTime: nextDay.Add(9 * time.Hour), EndTime: nextDay.Add(10 * time.Hour)},
	}

	t.Run("filters_and_sorts_by_start", func(t *testing.T) {
		agenda := ForDay(bookings, day)
		require.Len(t, agenda, 2)
		assert.Equal(t, "early", agenda[0].ID)
		assert.Equal(t, "late", agenda[1].ID)
	})

	t.Run("empty_day", func(t *testing.T) {
		assert.Empty(t, ForDay(bookings, day.AddDate(0, 0, 7)))
	})

	t.Run("stable_on_equal_starts", func(t *testing.T) {
		a := booking(t, "first", "09:00", "09:30")
		b := booking(t, "second", "09:00", "10:00")
		agenda := ForDay([]models.Booking{a, b}, day)
		require.Len(t, agenda, 2)
		assert.Equal(t, "first", agenda[0].ID)
		assert.Equal(t, "second", agenda[1].ID)
	})

	t.Run("membership_by_local_date_of_start", func(t *testing.T) {
		// A meeting running past midnight belongs to the day it starts.
		overnight := booking(t, "overnight", "23:00", "23:30")
		overnight.EndTime = nextDay.Add(1 * time.Hour)
		agenda := ForDay([]models.Booking{overnight}, day)
		require.Len(t, agenda, 1)
		assert.Empty(t, ForDay([]models.Booking{overnight}, nextDay))
	})
}

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	// 22:30 UTC on Mar 9 is 01:30 Mar 10 in UTC+3.
	utc := time.Date(2025, 3, 9, 22, 30, 0, 0, time.UTC)
	assert.True(t, SameDay(utc, day))
	assert.False(t, SameDay(utc, time.Date(2025, 3, 9, 0, 0, 0, 0, loc)))
}
