package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

var (
	// ErrTokenInvalid means the token value does not exist.
	ErrTokenInvalid = errors.New("booking token invalid")
	// ErrTokenExpired means the token's expiry passed before redemption.
	ErrTokenExpired = errors.New("booking token expired")
	// ErrTokenUsed means the token was already redeemed.
	ErrTokenUsed = errors.New("booking token already used")
	// ErrAlreadyFilled means another patient claimed the appointment first.
	ErrAlreadyFilled = errors.New("appointment already filled")
)

// Redemption is the successful outcome of a redeem: the winning token, the
// now-filled appointment, and the patient who claimed it.
type Redemption struct {
	Token       *Token
	Appointment *appointment.Appointment
	Entry       *waitlist.Entry
}

// Repository contains all DB interactions on booking tokens.
type Repository interface {
	Create(ctx context.Context, token *Token) (*Token, error)
	GetByValue(ctx context.Context, value string) (*Token, error)

	// Redeem verifies, in one logically indivisible step, that the token
	// exists, is unused, has not expired, and that the bound appointment is
	// still cancelled; then marks the token used and the appointment filled
	// together. Any failed precondition leaves no mutation and returns one
	// of the sentinel errors above.
	Redeem(ctx context.Context, value string, now time.Time) (*Redemption, error)

	// FindExpiredUnswept returns expired, unused tokens the expiry worker
	// has not yet processed.
	FindExpiredUnswept(ctx context.Context, now time.Time) ([]Token, error)
	MarkSwept(ctx context.Context, id uuid.UUID) error

	// CountOutstanding returns unused, unexpired tokens for an appointment.
	CountOutstanding(ctx context.Context, appointmentID uuid.UUID, now time.Time) (int, error)
}
