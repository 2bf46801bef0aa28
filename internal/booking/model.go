package booking

import (
	"time"

	"github.com/google/uuid"
)

// Token is a single-use, time-limited credential granting one patient the
// right to claim one specific freed slot.
type Token struct {
	ID            uuid.UUID
	Value         string // opaque, unguessable; carried in the booking link
	AppointmentID uuid.UUID
	EntryID       uuid.UUID // waitlist entry the token was issued to
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Used          bool
	UsedAt        *time.Time

	// Swept marks tokens already counted by the expiry worker. Expiry
	// itself is computed from ExpiresAt, never stored as a transition.
	Swept bool
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
