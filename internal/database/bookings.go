package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"huddle/internal/models"
	"huddle/internal/schedule"
)

// CreateBookingGuarded inserts a booking after re-checking the no-overlap
// invariant inside one transaction. Read-then-write from independent clients
// is not atomic, so the earlier Validate call may have run against a stale
// snapshot; this re-check turns that race into a write-time conflict
// rejection instead of a double booking.
func (db *DB) CreateBookingGuarded(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore("begin booking tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	queryConflict := `SELECT title, start_time, end_time FROM bookings
	                  WHERE room_id = ? AND start_time < ? AND end_time > ?
	                  ORDER BY start_time LIMIT 1`
	var title, startStr, endStr string
	err = tx.QueryRowContext(ctx, queryConflict,
		booking.RoomID, formatTime(booking.EndTime), formatTime(booking.StartTime),
	).Scan(&title, &startStr, &endStr)
	switch {
	case err == nil:
		start, perr := parseTime(startStr)
		if perr != nil {
			return wrapStore("parse conflicting start", perr)
		}
		end, perr := parseTime(endStr)
		if perr != nil {
			return wrapStore("parse conflicting end", perr)
		}
		return &schedule.ConflictError{Title: title, Start: start, End: end}
	case errors.Is(err, sql.ErrNoRows):
		// Slot is free, proceed.
	default:
		return wrapStore("check conflicts in tx", err)
	}

	now := time.Now()
	queryInsert := `INSERT INTO bookings (
				id, room_id, user_id, user_name, title, start_time, end_time, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, queryInsert,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.UserName,
		booking.Title,
		formatTime(booking.StartTime),
		formatTime(booking.EndTime),
		now,
	)
	if err != nil {
		return wrapWrite("insert booking", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapWrite("commit booking", err)
	}
	booking.CreatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT id, room_id, user_id, user_name, title, start_time, end_time, created_at
	          FROM bookings WHERE id = ?`

	var b models.Booking
	var startStr, endStr string
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.RoomID, &b.UserID, &b.UserName, &b.Title,
		&startStr, &endStr, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get booking", err)
	}

	if b.StartTime, err = parseTime(startStr); err != nil {
		return nil, wrapStore("parse booking start", err)
	}
	if b.EndTime, err = parseTime(endStr); err != nil {
		return nil, wrapStore("parse booking end", err)
	}
	return &b, nil
}

// DeleteBooking removes a booking. Deleting a missing booking reports
// ErrNotFound; cancellation is not idempotent.
func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return wrapWrite("delete booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStore("delete booking rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetRoomBookings returns the full current reservation set for one room,
// ordered by start time then creation time.
func (db *DB) GetRoomBookings(ctx context.Context, roomID string) ([]models.Booking, error) {
	query := `SELECT id, room_id, user_id, user_name, title, start_time, end_time, created_at
	          FROM bookings WHERE room_id = ? ORDER BY start_time ASC, created_at ASC`
	return db.queryBookings(ctx, query, roomID)
}

func (db *DB) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT id, room_id, user_id, user_name, title, start_time, end_time, created_at
	          FROM bookings WHERE user_id = ? ORDER BY start_time ASC, created_at ASC`
	return db.queryBookings(ctx, query, userID)
}

// DeleteBookingsEndedBefore purges bookings whose interval ended before the
// cutoff. Used by the retention worker.
func (db *DB) DeleteBookingsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM bookings WHERE end_time < ?`, formatTime(cutoff))
	if err != nil {
		return 0, wrapWrite("purge bookings", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, wrapStore("purge bookings rows", err)
	}
	return rows, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore("query bookings", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		var startStr, endStr string
		err := rows.Scan(
			&b.ID, &b.RoomID, &b.UserID, &b.UserName, &b.Title,
			&startStr, &endStr, &b.CreatedAt,
		)
		if err != nil {
			return nil, wrapStore("scan booking", err)
		}
		if b.StartTime, err = parseTime(startStr); err != nil {
			return nil, wrapStore("parse booking start", err)
		}
		if b.EndTime, err = parseTime(endStr); err != nil {
			return nil, wrapStore("parse booking end", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore("iterate bookings", err)
	}
	return bookings, nil
}
