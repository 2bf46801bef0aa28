package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusAvailable, StatusScheduled, true},
		{StatusAvailable, StatusCancelled, false},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusFilled, false},
		{StatusCancelled, StatusFilled, true},
		{StatusCancelled, StatusScheduled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusFilled, StatusCancelled, true}, // re-cancellation by the new patient
		{StatusFilled, StatusNoShow, true},
		{StatusFilled, StatusScheduled, false},
		{StatusNoShow, StatusScheduled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestClock(t *testing.T) {
	a := Appointment{TimeOfDay: 9 * 60}
	assert.Equal(t, "9:00 AM", a.Clock())

	a.TimeOfDay = 14*60 + 30
	assert.Equal(t, "2:30 PM", a.Clock())
}

func TestStartsAt(t *testing.T) {
	a := Appointment{Date: "2026-09-10", TimeOfDay: 9*60 + 30}
	at, err := a.StartsAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC), at)

	bad := Appointment{Date: "not-a-date"}
	_, err = bad.StartsAt()
	assert.Error(t, err)
}
