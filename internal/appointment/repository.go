package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrStatusConflict means the compare-and-set found the appointment in a
	// different status than expected.
	ErrStatusConflict = errors.New("appointment status conflict")
)

// CancelMeta is stamped onto an appointment when it transitions to cancelled.
type CancelMeta struct {
	CancelledAt time.Time
	CancelledBy Actor
	Reason      string
}

// Repository contains all DB interactions needed by the fill workflow and
// the analytics reader.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)

	// MarkCancelled moves the appointment from `from` to cancelled and
	// stamps the cancellation metadata in one conditional update. Returns
	// ErrStatusConflict when the appointment is no longer in `from`.
	MarkCancelled(ctx context.Context, id uuid.UUID, from Status, meta CancelMeta) (*Appointment, error)

	// ListByDateRange returns appointments with date in [start, end],
	// inclusive, for analytics. Both bounds are ISO dates; empty strings
	// mean unbounded.
	ListByDateRange(ctx context.Context, start, end string) ([]Appointment, error)

	ListByStatus(ctx context.Context, status Status) ([]Appointment, error)
}
