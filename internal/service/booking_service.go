package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"huddle/internal/database"
	"huddle/internal/domain"
	"huddle/internal/events"
	"huddle/internal/metrics"
	"huddle/internal/models"
	"huddle/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService orchestrates the booking lifecycle against the record
// store: load the room's current set, validate the candidate, persist. The
// store's guarded insert re-checks the invariant, so a stale read snapshot
// degrades to a write-time conflict, never a double booking.
type BookingService struct {
	repo     domain.Repository
	cache    domain.ScheduleCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, cache domain.ScheduleCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *BookingService) Propose(ctx context.Context, req domain.ProposeRequest) (*models.Booking, error) {
	title := strings.TrimSpace(req.Title)
	// Усечение по рунам, чтобы не разрезать многобайтовый символ
	if runes := []rune(title); len(runes) > models.MaxTitleLength {
		title = string(runes[:models.MaxTitleLength])
	}

	// Room must still exist; booking a deleted room is NotFound, not a
	// dangling record.
	if _, err := s.repo.GetRoom(ctx, req.RoomID); err != nil {
		s.countRejection(err)
		return nil, err
	}

	existing, err := s.repo.GetRoomBookings(ctx, req.RoomID)
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	candidate := schedule.Interval{Start: req.Start, End: req.End}
	if err := schedule.Validate(candidate, existing); err != nil {
		s.countRejection(err)
		return nil, err
	}

	booking := &models.Booking{
		ID:        uuid.NewString(),
		RoomID:    req.RoomID,
		UserID:    req.Actor.UID,
		UserName:  req.Actor.Name(),
		Title:     title,
		StartTime: req.Start,
		EndTime:   req.End,
	}

	if err := s.repo.CreateBookingGuarded(ctx, booking); err != nil {
		if errors.Is(err, database.ErrIndeterminate) {
			s.logger.Warn().Str("booking_id", booking.ID).Str("room_id", req.RoomID).
				Msg("booking write outcome unknown, caller must re-check")
		}
		s.countRejection(err)
		return nil, err
	}

	metrics.IncBookingCreated()
	s.invalidateSchedule(ctx, req.RoomID)
	s.publishBookingEvent(events.EventBookingCreated, booking, req.Actor)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("room_id", booking.RoomID).
		Str("user_id", booking.UserID).
		Time("start", booking.StartTime).
		Time("end", booking.EndTime).
		Msg("booking accepted")

	return booking, nil
}

// Cancel deletes a booking. Only the booking's own user may cancel it;
// removal never needs re-validation since relaxing a constraint cannot
// create a conflict.
func (s *BookingService) Cancel(ctx context.Context, bookingID string, actor models.Identity) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		s.countRejection(err)
		return err
	}

	if booking.UserID != actor.UID {
		metrics.IncBookingRejected("unauthorized")
		return fmt.Errorf("cancel booking %s: %w", bookingID, ErrUnauthorized)
	}

	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		s.countRejection(err)
		return err
	}

	metrics.IncBookingCancelled()
	s.invalidateSchedule(ctx, booking.RoomID)
	s.publishBookingEvent(events.EventBookingCancelled, booking, actor)

	s.logger.Info().
		Str("booking_id", bookingID).
		Str("room_id", booking.RoomID).
		Str("user_id", actor.UID).
		Msg("booking cancelled")

	return nil
}

func (s *BookingService) ListForRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	return s.repo.GetRoomBookings(ctx, roomID)
}

func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

// DaySchedule returns the room's agenda for one calendar day, served from
// the snapshot cache when warm. Cache contents are read-time snapshots; the
// store stays authoritative.
func (s *BookingService) DaySchedule(ctx context.Context, roomID string, day time.Time) ([]models.Booking, error) {
	if s.cache != nil {
		if agenda, ok, err := s.cache.GetDay(ctx, roomID, day); err == nil && ok {
			return agenda, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Str("room_id", roomID).Msg("schedule cache read failed")
		}
	}

	bookings, err := s.repo.GetRoomBookings(ctx, roomID)
	if err != nil {
		return nil, err
	}

	agenda := schedule.ForDay(bookings, day)
	if s.cache != nil {
		if err := s.cache.SetDay(ctx, roomID, day, agenda); err != nil {
			s.logger.Warn().Err(err).Str("room_id", roomID).Msg("schedule cache write failed")
		}
	}
	return agenda, nil
}

func (s *BookingService) invalidateSchedule(ctx context.Context, roomID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRoom(ctx, roomID); err != nil {
		// TTL bounds staleness, so a failed invalidation is log-only.
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("schedule cache invalidation failed")
	}
}

func (s *BookingService) publishBookingEvent(eventType string, booking *models.Booking, actor models.Identity) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		UserID:    booking.UserID,
		UserName:  booking.UserName,
		Title:     booking.Title,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		ActorUID:  actor.UID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) countRejection(err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidInterval):
		metrics.IncBookingRejected("invalid_interval")
	case errors.Is(err, schedule.ErrConflict):
		metrics.IncBookingRejected("conflict")
	case errors.Is(err, database.ErrNotFound):
		metrics.IncBookingRejected("not_found")
	default:
		metrics.IncBookingRejected("store")
	}
}
