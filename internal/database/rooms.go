package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"huddle/internal/models"
)

// CreateRoom stores the room and its access list in one transaction. The
// owner always ends up on the access list as admin.
func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore("begin room tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO rooms (id, name, description, capacity, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Description, room.Capacity, room.OwnerID, now,
	)
	if err != nil {
		return wrapWrite("insert room", err)
	}

	for email, role := range room.AccessList {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO room_access (room_id, email, role) VALUES (?, ?, ?)`,
			room.ID, email, string(role),
		)
		if err != nil {
			return wrapWrite("insert room access", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapWrite("commit room", err)
	}
	room.CreatedAt = now
	return nil
}

func (db *DB) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, capacity, owner_id, created_at FROM rooms WHERE id = ?`,
		id,
	).Scan(&room.ID, &room.Name, &room.Description, &room.Capacity, &room.OwnerID, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get room", err)
	}

	room.AccessList, err = db.loadAccess(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns all rooms, newest first.
func (db *DB) ListRooms(ctx context.Context) ([]*models.Room, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, capacity, owner_id, created_at
		 FROM rooms ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapStore("list rooms", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room := &models.Room{}
		err := rows.Scan(&room.ID, &room.Name, &room.Description,
			&room.Capacity, &room.OwnerID, &room.CreatedAt)
		if err != nil {
			return nil, wrapStore("scan room", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore("iterate rooms", err)
	}

	for _, room := range rooms {
		if room.AccessList, err = db.loadAccess(ctx, room.ID); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// UpdateRoom rewrites the room's attributes and replaces its access list.
func (db *DB) UpdateRoom(ctx context.Context, room *models.Room) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore("begin room update tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE rooms SET name = ?, description = ?, capacity = ? WHERE id = ?`,
		room.Name, room.Description, room.Capacity, room.ID,
	)
	if err != nil {
		return wrapWrite("update room", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStore("update room rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("room %s: %w", room.ID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM room_access WHERE room_id = ?`, room.ID); err != nil {
		return wrapWrite("clear room access", err)
	}
	for email, role := range room.AccessList {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO room_access (room_id, email, role) VALUES (?, ?, ?)`,
			room.ID, email, string(role),
		)
		if err != nil {
			return wrapWrite("insert room access", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapWrite("commit room update", err)
	}
	return nil
}

// DeleteRoom removes the room; bookings and access rows go with it via
// foreign key cascade.
func (db *DB) DeleteRoom(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return wrapWrite("delete room", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStore("delete room rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) SetAccess(ctx context.Context, roomID, email string, role models.Role) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO room_access (room_id, email, role) VALUES (?, ?, ?)
		 ON CONFLICT(room_id, email) DO UPDATE SET role = excluded.role`,
		roomID, email, string(role),
	)
	if err != nil {
		return wrapWrite("set room access", err)
	}
	return nil
}

func (db *DB) RemoveAccess(ctx context.Context, roomID, email string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM room_access WHERE room_id = ? AND email = ?`, roomID, email)
	if err != nil {
		return wrapWrite("remove room access", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStore("remove room access rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("access %s/%s: %w", roomID, email, ErrNotFound)
	}
	return nil
}

func (db *DB) loadAccess(ctx context.Context, roomID string) (map[string]models.Role, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT email, role FROM room_access WHERE room_id = ?`, roomID)
	if err != nil {
		return nil, wrapStore("load room access", err)
	}
	defer rows.Close()

	access := make(map[string]models.Role)
	for rows.Next() {
		var email, role string
		if err := rows.Scan(&email, &role); err != nil {
			return nil, wrapStore("scan room access", err)
		}
		access[email] = models.Role(role)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore("iterate room access", err)
	}
	return access, nil
}
