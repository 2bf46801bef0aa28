package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusFilled    Status = "filled"
	StatusNoShow    Status = "no_show"
)

// CanTransition reports whether a status change is allowed. Appointments are
// never deleted; every state change goes through here (or through the
// repository's compare-and-set, which encodes the same pairs in SQL).
func CanTransition(from, to Status) bool {
	switch from {
	case StatusAvailable:
		return to == StatusScheduled
	case StatusScheduled:
		return to == StatusCancelled || to == StatusNoShow
	case StatusCancelled:
		return to == StatusFilled
	case StatusFilled:
		// A filled slot can be cancelled again by its new patient,
		// which starts a fresh matching round.
		return to == StatusCancelled || to == StatusNoShow
	default:
		return false
	}
}

type Actor string

const (
	ActorStaff   Actor = "staff"
	ActorPatient Actor = "patient"
)

type Appointment struct {
	ID        uuid.UUID
	Date      string // ISO date, YYYY-MM-DD
	TimeOfDay int    // minutes since midnight
	Doctor    string
	Specialty string
	Status    Status

	PatientName  string
	PatientEmail string
	PatientPhone string

	CancelledAt        *time.Time
	CancelledBy        Actor
	CancellationReason string

	FilledAt        *time.Time
	FilledByEntryID *uuid.UUID
	OriginalPatient string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clock renders the slot time for display, e.g. "9:00 AM".
func (a *Appointment) Clock() string {
	return validate.FormatClock(a.TimeOfDay)
}

// StartsAt combines date and time-of-day into a wall-clock instant.
func (a *Appointment) StartsAt() (time.Time, error) {
	d, err := time.Parse(validate.DateLayout, a.Date)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(a.TimeOfDay) * time.Minute), nil
}
