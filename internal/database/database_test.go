package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"huddle/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testRoom(t *testing.T, db *DB, owner string) *models.Room {
	t.Helper()
	room := &models.Room{
		ID:          uuid.NewString(),
		Name:        "War Room",
		Description: "Third floor, projector",
		Capacity:    8,
		OwnerID:     owner,
		AccessList: map[string]models.Role{
			"owner@example.com": models.RoleAdmin,
		},
	}
	require.NoError(t, db.CreateRoom(context.Background(), room))
	return room
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+clock)
	require.NoError(t, err)
	return ts
}

func TestRoomCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	room := testRoom(t, db, "owner-1")

	t.Run("get", func(t *testing.T) {
		got, err := db.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, room.Name, got.Name)
		assert.Equal(t, 8, got.Capacity)
		assert.Equal(t, models.RoleAdmin, got.AccessList["owner@example.com"])
	})

	t.Run("get_missing", func(t *testing.T) {
		_, err := db.GetRoom(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		room.Name = "Peace Room"
		room.Capacity = 12
		room.AccessList["guest@example.com"] = models.RoleUser
		require.NoError(t, db.UpdateRoom(ctx, room))

		got, err := db.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, "Peace Room", got.Name)
		assert.Equal(t, 12, got.Capacity)
		assert.Len(t, got.AccessList, 2)
	})

	t.Run("update_missing", func(t *testing.T) {
		ghost := &models.Room{ID: "nope", Name: "x", Capacity: 1}
		assert.ErrorIs(t, db.UpdateRoom(ctx, ghost), ErrNotFound)
	})

	t.Run("access_upsert_and_remove", func(t *testing.T) {
		require.NoError(t, db.SetAccess(ctx, room.ID, "guest@example.com", models.RoleAdmin))
		got, err := db.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.AccessList["guest@example.com"])

		require.NoError(t, db.RemoveAccess(ctx, room.ID, "guest@example.com"))
		assert.ErrorIs(t, db.RemoveAccess(ctx, room.ID, "guest@example.com"), ErrNotFound)
	})

	t.Run("list_newest_first", func(t *testing.T) {
		rooms, err := db.ListRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, room.ID, rooms[0].ID)
	})

	t.Run("delete_cascades", func(t *testing.T) {
		b := &models.Booking{
			ID: uuid.NewString(), RoomID: room.ID, UserID: "u1", UserName: "Alice",
			Title: "standup", StartTime: at(t, "09:00"), EndTime: at(t, "09:15"),
		}
		require.NoError(t, db.CreateBookingGuarded(ctx, b))

		require.NoError(t, db.DeleteRoom(ctx, room.ID))
		_, err := db.GetBooking(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, db.DeleteRoom(ctx, room.ID), ErrNotFound)
	})
}

// Пул соединений для :memory: ограничен одним соединением; все горутины
// должны видеть одну и ту же базу.
func TestMemoryDBSharedAcrossGoroutines(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := &models.Room{
				ID:       fmt.Sprintf("room-%d", i),
				Name:     fmt.Sprintf("Room %d", i),
				Capacity: 4,
				OwnerID:  "owner-1",
				AccessList: map[string]models.Role{
					"owner@example.com": models.RoleAdmin,
				},
			}
			errs[i] = db.CreateRoom(ctx, room)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoErrorf(t, err, "worker %d", i)
	}

	rooms, err := db.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, workers)
}
