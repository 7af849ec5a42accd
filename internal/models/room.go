package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the access level a user holds on a room.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a role string at the boundary. Role values deeper in
// the code are assumed already valid.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type Room struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Capacity    int             `json:"capacity"`
	OwnerID     string          `json:"owner_id"`
	AccessList  map[string]Role `json:"access_list"` // email -> role
	CreatedAt   time.Time       `json:"created_at"`
}
