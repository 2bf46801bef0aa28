package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
)

func testConfig() Config {
	values := map[string]float64{
		"Dermatology": 250,
		"Cardiology":  350,
		"default":     250,
	}
	return Config{
		SpecialtyValue: func(s string) float64 {
			if v, ok := values[s]; ok {
				return v
			}
			return values["default"]
		},
		ManualMinutesPerFill:    150,
		AutomatedMinutesPerFill: 5,
	}
}

func appt(status appointment.Status, specialty string, opts func(*appointment.Appointment)) appointment.Appointment {
	a := appointment.Appointment{
		Date:      "2026-09-10",
		TimeOfDay: 9 * 60,
		Doctor:    "Dr. Chen",
		Specialty: specialty,
		Status:    status,
	}
	if opts != nil {
		opts(&a)
	}
	return a
}

func TestComputeMetricsZeroCancellations(t *testing.T) {
	appts := []appointment.Appointment{
		appt(appointment.StatusScheduled, "Dermatology", nil),
		appt(appointment.StatusScheduled, "Cardiology", nil),
	}

	s := ComputeMetrics(appts, testConfig())
	assert.Zero(t, s.FillRate)
	assert.Zero(t, s.CancelledCount)
	assert.Zero(t, s.NetRecoveryRate)
	assert.Equal(t, 2, s.ScheduledCount)
	assert.Equal(t, 100.0, s.UtilizationRate)
}

func TestComputeMetricsEmptySnapshot(t *testing.T) {
	s := ComputeMetrics(nil, testConfig())
	assert.Zero(t, s.FillRate)
	assert.Zero(t, s.UtilizationRate)
	assert.Zero(t, s.NetRecoveryRate)
	assert.Zero(t, s.TotalAppointments)
}

func TestComputeMetricsFillRateAndRevenue(t *testing.T) {
	cancelled := time.Date(2026, 9, 9, 10, 0, 0, 0, time.UTC)
	filled := cancelled.Add(45 * time.Minute)

	appts := []appointment.Appointment{
		appt(appointment.StatusScheduled, "Dermatology", nil), // +250 potential
		appt(appointment.StatusFilled, "Cardiology", func(a *appointment.Appointment) { // +350 potential, +350 recovered
			a.CancelledAt = &cancelled
			a.FilledAt = &filled
		}),
		appt(appointment.StatusCancelled, "Dermatology", nil), // +250 lost
		appt(appointment.StatusNoShow, "Dermatology", nil),    // +250 lost
	}

	s := ComputeMetrics(appts, testConfig())
	assert.Equal(t, 4, s.TotalAppointments)
	assert.Equal(t, 2, s.CancelledCount) // filled counts as a cancellation that recovered
	assert.Equal(t, 1, s.FilledCount)
	assert.Equal(t, 50.0, s.FillRate)
	assert.Equal(t, 45.0, s.AvgFillTimeMinutes)
	assert.Equal(t, 600.0, s.PotentialRevenue)
	assert.Equal(t, 350.0, s.RecoveredRevenue)
	assert.Equal(t, 500.0, s.LostRevenue)
	assert.InDelta(t, 41.2, s.NetRecoveryRate, 0.05) // 350/850
	assert.Equal(t, 50.0, s.UtilizationRate)
	assert.Equal(t, 25.0, s.NoShowRate)
}

func TestComputeMetricsSkipsBadFillTimestamps(t *testing.T) {
	cancelled := time.Date(2026, 9, 9, 10, 0, 0, 0, time.UTC)
	good := cancelled.Add(30 * time.Minute)
	backwards := cancelled.Add(-10 * time.Minute)

	appts := []appointment.Appointment{
		appt(appointment.StatusFilled, "Dermatology", func(a *appointment.Appointment) {
			a.CancelledAt = &cancelled
			a.FilledAt = &good
		}),
		// Missing cancelled_at: excluded from the average, not zero-filled.
		appt(appointment.StatusFilled, "Dermatology", func(a *appointment.Appointment) {
			a.FilledAt = &good
		}),
		// Timestamps out of order: also excluded.
		appt(appointment.StatusFilled, "Dermatology", func(a *appointment.Appointment) {
			a.CancelledAt = &cancelled
			a.FilledAt = &backwards
		}),
	}

	s := ComputeMetrics(appts, testConfig())
	assert.Equal(t, 30.0, s.AvgFillTimeMinutes)
}

func TestComputeMetricsStaffHours(t *testing.T) {
	cancelled := time.Date(2026, 9, 9, 10, 0, 0, 0, time.UTC)
	filled := cancelled.Add(time.Hour)

	var appts []appointment.Appointment
	for i := 0; i < 4; i++ {
		appts = append(appts, appt(appointment.StatusFilled, "Dermatology", func(a *appointment.Appointment) {
			a.CancelledAt = &cancelled
			a.FilledAt = &filled
		}))
	}

	s := ComputeMetrics(appts, testConfig())
	// 4 fills * (150-5) minutes saved = 580 minutes = 9.7 hours.
	assert.InDelta(t, 9.7, s.StaffHoursSaved, 0.05)
	assert.InDelta(t, 9.7*StaffHourlyCost, s.LaborCostSaved, 0.5)
}

func TestFilterDateRange(t *testing.T) {
	appts := []appointment.Appointment{
		appt(appointment.StatusScheduled, "Dermatology", func(a *appointment.Appointment) { a.Date = "2026-09-01" }),
		appt(appointment.StatusScheduled, "Dermatology", func(a *appointment.Appointment) { a.Date = "2026-09-15" }),
		appt(appointment.StatusScheduled, "Dermatology", func(a *appointment.Appointment) { a.Date = "2026-09-30" }),
	}

	got := FilterDateRange(appts, "2026-09-10", "2026-09-20")
	assert.Len(t, got, 1)
	assert.Equal(t, "2026-09-15", got[0].Date)

	assert.Len(t, FilterDateRange(appts, "", ""), 3)
	assert.Len(t, FilterDateRange(appts, "2026-09-16", ""), 1)
	assert.Len(t, FilterDateRange(appts, "", "2026-09-15"), 2)
}
