package models

// Identity is the acting user as supplied by the identity provider. Core
// operations take it as an explicit parameter; there is no ambient session
// state.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Name returns the best display string for attribution on bookings.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if i.Email != "" {
		return i.Email
	}
	return "User"
}
