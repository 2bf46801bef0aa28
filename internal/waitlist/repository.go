package waitlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("waitlist entry not found")

// Repository contains all DB interactions on the waitlist collection.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Create(ctx context.Context, entry *Entry) (*Entry, error)

	// ListActiveBySpecialty is the matching input boundary: every active
	// entry for one specialty.
	ListActiveBySpecialty(ctx context.Context, specialty string) ([]Entry, error)

	// CountActiveByEmail supports the max-entries-per-patient rule.
	CountActiveByEmail(ctx context.Context, email string) (int, error)

	// Deactivate soft-deletes an entry (manual removal or successful booking).
	Deactivate(ctx context.Context, id uuid.UUID) error

	IncrementNotified(ctx context.Context, id uuid.UUID) error
	IncrementExpired(ctx context.Context, id uuid.UUID) error

	// RecordBooking bumps the booked counter after a successful fill.
	RecordBooking(ctx context.Context, id uuid.UUID) error
}
