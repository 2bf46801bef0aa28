package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a patient's standing request to be notified of openings matching
// their stated preferences.
type Entry struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Specialty string

	PreferredDates  []string // ISO dates, order irrelevant
	TimePreferences []string // morning | afternoon | evening | any

	Active        bool
	NotifiedCount int // notifications sent for this entry
	ExpiredCount  int // booking links that expired unused

	// BookedCount tracks how many past appointments this patient has booked
	// through the clinic; it feeds the loyalty factor of the match score.
	BookedCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrefersTime reports whether the entry accepts the given time-of-day tag.
func (e *Entry) PrefersTime(tag string) bool {
	for _, p := range e.TimePreferences {
		if p == tag || p == "any" {
			return true
		}
	}
	return false
}

// PrefersDate reports whether the ISO date is in the entry's preferred set.
func (e *Entry) PrefersDate(date string) bool {
	for _, d := range e.PreferredDates {
		if d == date {
			return true
		}
	}
	return false
}
