package service

import (
	"context"
	"testing"

	"huddle/internal/database"
	"huddle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("owner_forced_onto_access_list_as_admin", func(t *testing.T) {
		room := &models.Room{
			Name:     "Nautilus",
			Capacity: 10,
			AccessList: map[string]models.Role{
				"alice@example.com": models.RoleUser, // caller tried to demote themselves
			},
		}
		require.NoError(t, f.rooms.Create(ctx, room, alice))

		got, err := f.rooms.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.UID, got.OwnerID)
		assert.Equal(t, models.RoleAdmin, got.AccessList[alice.Email])
	})

	t.Run("rejects_nonpositive_capacity", func(t *testing.T) {
		err := f.rooms.Create(ctx, &models.Room{Name: "x", Capacity: 0}, alice)
		assert.Error(t, err)
	})

	t.Run("rejects_blank_name", func(t *testing.T) {
		err := f.rooms.Create(ctx, &models.Room{Name: "   ", Capacity: 4}, alice)
		assert.Error(t, err)
	})
}

func TestRoomMutationsOwnerOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t, alice)

	t.Run("update_by_stranger", func(t *testing.T) {
		room.Name = "Hijacked"
		assert.ErrorIs(t, f.rooms.Update(ctx, room, bob), ErrUnauthorized)
	})

	t.Run("update_by_owner", func(t *testing.T) {
		room.Name = "Renamed"
		room.Capacity = 12
		require.NoError(t, f.rooms.Update(ctx, room, alice))

		got, err := f.rooms.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("set_access_validates_role_at_boundary", func(t *testing.T) {
		err := f.rooms.SetAccess(ctx, room.ID, bob.Email, "superuser", alice)
		assert.Error(t, err)

		require.NoError(t, f.rooms.SetAccess(ctx, room.ID, bob.Email, "user", alice))
		got, err := f.rooms.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, got.AccessList[bob.Email])
	})

	t.Run("set_access_by_stranger", func(t *testing.T) {
		assert.ErrorIs(t, f.rooms.SetAccess(ctx, room.ID, bob.Email, "admin", bob), ErrUnauthorized)
	})

	t.Run("owner_cannot_remove_self", func(t *testing.T) {
		assert.Error(t, f.rooms.RemoveAccess(ctx, room.ID, alice.Email, alice))
	})

	t.Run("delete_by_stranger_then_owner", func(t *testing.T) {
		assert.ErrorIs(t, f.rooms.Delete(ctx, room.ID, bob), ErrUnauthorized)
		require.NoError(t, f.rooms.Delete(ctx, room.ID, alice))

		_, err := f.rooms.Get(ctx, room.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestRoomListNewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.room(t, alice)
	f.room(t, bob)

	rooms, err := f.rooms.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}
