package domain

import "time"

// GuestUser is the synthetic identity presented while guest mode is
// active. It is never sent to any backend.
type GuestUser struct {
	// ID is a fixed sentinel identifier.
	ID string

	// Name is the fixed display name.
	Name string

	// Email is the fixed placeholder address.
	Email string
}

// NewGuestUser returns the guest-mode sentinel identity.
func NewGuestUser() GuestUser {
	return GuestUser{
		ID:    "guest",
		Name:  "Guest User",
		Email: "guest@docchat.local",
	}
}

// GuestInactivityLimit is how long a guest session may stay hidden
// before its local state is discarded on resume.
const GuestInactivityLimit = 30 * time.Minute
