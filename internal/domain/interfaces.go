package domain

import (
	"context"
	"time"

	"huddle/internal/models"
)

// Repository is the record store the lifecycle manager orchestrates against.
// It owns the authoritative reservation set; anything read from it is a
// snapshot valid only at read time.
type Repository interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	SetAccess(ctx context.Context, roomID, email string, role models.Role) error
	RemoveAccess(ctx context.Context, roomID, email string) error

	CreateBookingGuarded(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	GetRoomBookings(ctx context.Context, roomID string) ([]models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	DeleteBookingsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScheduleCache holds short-lived day-agenda snapshots. It is never
// authoritative: a miss or a stale entry only costs a store read.
type ScheduleCache interface {
	GetDay(ctx context.Context, roomID string, day time.Time) ([]models.Booking, bool, error)
	SetDay(ctx context.Context, roomID string, day time.Time, bookings []models.Booking) error
	InvalidateRoom(ctx context.Context, roomID string) error
	CheckRateLimit(ctx context.Context, userID string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService is the booking lifecycle contract consumed by transports.
type BookingService interface {
	Propose(ctx context.Context, req ProposeRequest) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor models.Identity) error
	ListForRoom(ctx context.Context, roomID string) ([]models.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]models.Booking, error)
	DaySchedule(ctx context.Context, roomID string, day time.Time) ([]models.Booking, error)
}

// ProposeRequest carries one booking attempt. Actor is the authenticated
// identity supplied by the transport; UserName on the stored booking is
// snapshotted from it.
type ProposeRequest struct {
	RoomID string
	Actor  models.Identity
	Title  string
	Start  time.Time
	End    time.Time
}

type RoomService interface {
	Create(ctx context.Context, room *models.Room, actor models.Identity) error
	Get(ctx context.Context, id string) (*models.Room, error)
	List(ctx context.Context) ([]*models.Room, error)
	Update(ctx context.Context, room *models.Room, actor models.Identity) error
	Delete(ctx context.Context, id string, actor models.Identity) error
	SetAccess(ctx context.Context, roomID, email, role string, actor models.Identity) error
	RemoveAccess(ctx context.Context, roomID, email string, actor models.Identity) error
}
