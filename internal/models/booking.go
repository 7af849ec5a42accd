package models

import "time"

// Booking is one accepted reservation of a room for [StartTime, EndTime).
// UserName is a snapshot taken at booking time and is never re-synced with
// the user's profile.
type Booking struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}
