package schedule

import (
	"errors"
	"testing"

	"huddle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	existing := []models.Booking{booking(t, "b1", "09:00", "10:00")}

	t.Run("accepts_back_to_back", func(t *testing.T) {
		assert.NoError(t, Validate(iv(t, "10:00", "11:00"), existing))
	})

	t.Run("rejects_overlap", func(t *testing.T) {
		err := Validate(iv(t, "09:30", "10:30"), existing)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConflict)

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, existing[0].StartTime, conflict.Start)
		assert.Equal(t, existing[0].EndTime, conflict.End)
	})

	t.Run("rejects_inverted_interval_before_overlap_check", func(t *testing.T) {
		// 14:00-13:00 would "overlap" nothing, but must fail on shape alone.
		in := iv(t, "13:00", "14:00")
		err := Validate(Interval{Start: in.End, End: in.Start}, existing)
		assert.ErrorIs(t, err, ErrInvalidInterval)
		assert.False(t, errors.Is(err, ErrConflict))
	})

	t.Run("rejects_zero_length", func(t *testing.T) {
		in := iv(t, "09:00", "09:00")
		assert.ErrorIs(t, Validate(in, nil), ErrInvalidInterval)
	})

	t.Run("accepts_anything_wellformed_when_room_empty", func(t *testing.T) {
		assert.NoError(t, Validate(iv(t, "00:00", "23:59"), nil))
	})

	t.Run("accepted_implies_no_overlap", func(t *testing.T) {
		set := []models.Booking{
			booking(t, "b1", "09:00", "10:00"),
			booking(t, "b2", "11:00", "12:00"),
			booking(t, "b3", "15:00", "16:30"),
		}
		candidates := []Interval{
			iv(t, "08:00", "09:00"),
			iv(t, "10:00", "11:00"),
			iv(t, "12:00", "15:00"),
			iv(t, "16:30", "18:00"),
			iv(t, "09:30", "10:30"),
			iv(t, "14:00", "17:00"),
		}
		for _, c := range candidates {
			if Validate(c, set) == nil {
				_, ok := FindConflict(c, set)
				assert.False(t, ok, "accepted candidate %v must not overlap", c)
				assert.True(t, c.IsValid())
			}
		}
	})
}
