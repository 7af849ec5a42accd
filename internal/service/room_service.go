package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"huddle/internal/domain"
	"huddle/internal/events"
	"huddle/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoomService manages rooms and their access lists. Mutations are owner-only.
type RoomService struct {
	repo     domain.Repository
	cache    domain.ScheduleCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewRoomService(repo domain.Repository, cache domain.ScheduleCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *RoomService {
	return &RoomService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create stores a new room owned by the actor. The owner always lands on
// the access list as admin, whatever the caller supplied.
func (s *RoomService) Create(ctx context.Context, room *models.Room, actor models.Identity) error {
	room.Name = strings.TrimSpace(room.Name)
	if room.Name == "" {
		return errors.New("room name is required")
	}
	if room.Capacity <= 0 {
		return fmt.Errorf("room capacity must be positive, got %d", room.Capacity)
	}

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	room.OwnerID = actor.UID
	if room.AccessList == nil {
		room.AccessList = make(map[string]models.Role)
	}
	if actor.Email != "" {
		room.AccessList[actor.Email] = models.RoleAdmin
	}

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return err
	}

	s.publishRoomEvent(events.EventRoomCreated, room, actor)
	s.logger.Info().Str("room_id", room.ID).Str("owner_id", room.OwnerID).Msg("room created")
	return nil
}

func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *RoomService) List(ctx context.Context) ([]*models.Room, error) {
	return s.repo.ListRooms(ctx)
}

// Update rewrites name, description, capacity and access list. Owner only.
func (s *RoomService) Update(ctx context.Context, room *models.Room, actor models.Identity) error {
	current, err := s.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	if current.OwnerID != actor.UID {
		return fmt.Errorf("update room %s: %w", room.ID, ErrUnauthorized)
	}

	if room.Capacity <= 0 {
		return fmt.Errorf("room capacity must be positive, got %d", room.Capacity)
	}

	// Owner cannot be dropped from the access list.
	room.OwnerID = current.OwnerID
	if room.AccessList == nil {
		room.AccessList = make(map[string]models.Role)
	}
	if actor.Email != "" {
		room.AccessList[actor.Email] = models.RoleAdmin
	}

	return s.repo.UpdateRoom(ctx, room)
}

// Delete removes the room and, via the store, everything booked in it.
func (s *RoomService) Delete(ctx context.Context, id string, actor models.Identity) error {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID != actor.UID {
		return fmt.Errorf("delete room %s: %w", id, ErrUnauthorized)
	}

	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRoom(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("room_id", id).Msg("schedule cache invalidation failed")
		}
	}

	s.publishRoomEvent(events.EventRoomDeleted, room, actor)
	s.logger.Info().Str("room_id", id).Msg("room deleted")
	return nil
}

// SetAccess grants or changes one user's role. Role strings are validated
// here, at the boundary, not deeper in the logic.
func (s *RoomService) SetAccess(ctx context.Context, roomID, email, role string, actor models.Identity) error {
	parsed, err := models.ParseRole(role)
	if err != nil {
		return err
	}

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID != actor.UID {
		return fmt.Errorf("set access on room %s: %w", roomID, ErrUnauthorized)
	}

	return s.repo.SetAccess(ctx, roomID, strings.TrimSpace(email), parsed)
}

func (s *RoomService) RemoveAccess(ctx context.Context, roomID, email string, actor models.Identity) error {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID != actor.UID {
		return fmt.Errorf("remove access on room %s: %w", roomID, ErrUnauthorized)
	}
	if email == actor.Email {
		return errors.New("owner cannot be removed from the access list")
	}

	return s.repo.RemoveAccess(ctx, roomID, email)
}

func (s *RoomService) publishRoomEvent(eventType string, room *models.Room, actor models.Identity) {
	if s.eventBus == nil {
		return
	}

	payload := events.RoomEventPayload{
		RoomID:   room.ID,
		Name:     room.Name,
		OwnerID:  room.OwnerID,
		ActorUID: actor.UID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("room_id", room.ID).Msg("publish event error")
	}
}
