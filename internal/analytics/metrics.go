// Package analytics computes recovery metrics, trends, scores, insights and
// benchmarks from historical appointment records. Everything here is a pure
// function over a snapshot: callers pass the appointment slice, and a run
// started before a fill lands simply does not reflect it.
package analytics

import (
	"math"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
)

// Config carries the tunables metrics depend on. SpecialtyValue maps a
// specialty to its average appointment value in dollars.
type Config struct {
	SpecialtyValue          func(specialty string) float64
	ManualMinutesPerFill    float64
	AutomatedMinutesPerFill float64
}

// Target values the engines measure against.
const (
	TargetFillRate        = 80.0
	TargetFillTimeMinutes = 30.0
	TargetUtilization     = 85.0
	TargetSatisfaction    = 4.5

	// StaffHourlyCost prices saved staff time for the labor-cost figure.
	StaffHourlyCost = 35.0
)

// Summary is the flat metrics block everything downstream consumes.
type Summary struct {
	TotalAppointments int `json:"total_appointments"`
	ScheduledCount    int `json:"scheduled_count"`
	CancelledCount    int `json:"cancelled_count"`
	FilledCount       int `json:"filled_count"`
	NoShowCount       int `json:"no_show_count"`

	FillRate           float64 `json:"fill_rate"`
	AvgFillTimeMinutes float64 `json:"avg_fill_time_minutes"`
	UtilizationRate    float64 `json:"utilization_rate"`
	NoShowRate         float64 `json:"no_show_rate"`

	PotentialRevenue float64 `json:"potential_revenue"`
	RecoveredRevenue float64 `json:"recovered_revenue"`
	LostRevenue      float64 `json:"lost_revenue"`
	NetRecoveryRate  float64 `json:"net_recovery_rate"`

	StaffHoursSaved float64 `json:"staff_hours_saved"`
	LaborCostSaved  float64 `json:"labor_cost_saved"`
}

// ComputeMetrics folds a snapshot of appointments into a Summary.
// fill_rate is defined as 0 when nothing was cancelled; same for every
// other ratio with an empty denominator.
func ComputeMetrics(appts []appointment.Appointment, cfg Config) Summary {
	var s Summary
	s.TotalAppointments = len(appts)

	var fillMinutes float64
	var fillSamples int

	for i := range appts {
		a := &appts[i]
		value := cfg.SpecialtyValue(a.Specialty)

		switch a.Status {
		case appointment.StatusScheduled:
			s.ScheduledCount++
			s.PotentialRevenue += value
		case appointment.StatusFilled:
			s.FilledCount++
			s.PotentialRevenue += value
			s.RecoveredRevenue += value
			// A filled slot was cancelled first.
			s.CancelledCount++
			if d, ok := fillDelay(a); ok {
				fillMinutes += d.Minutes()
				fillSamples++
			}
		case appointment.StatusCancelled:
			s.CancelledCount++
			s.LostRevenue += value
		case appointment.StatusNoShow:
			s.NoShowCount++
			s.LostRevenue += value
		}
	}

	s.FillRate = ratio(float64(s.FilledCount), float64(s.CancelledCount))
	if fillSamples > 0 {
		s.AvgFillTimeMinutes = round1(fillMinutes / float64(fillSamples))
	}
	s.UtilizationRate = ratio(float64(s.ScheduledCount+s.FilledCount), float64(s.TotalAppointments))
	s.NoShowRate = ratio(float64(s.NoShowCount), float64(s.TotalAppointments))
	s.NetRecoveryRate = ratio(s.RecoveredRevenue, s.RecoveredRevenue+s.LostRevenue)

	s.StaffHoursSaved = round1(float64(s.FilledCount) * (cfg.ManualMinutesPerFill - cfg.AutomatedMinutesPerFill) / 60)
	s.LaborCostSaved = round2(s.StaffHoursSaved * StaffHourlyCost)

	return s
}

// FilterDateRange keeps appointments whose date falls in [start, end],
// both ISO dates inclusive. Empty bounds are open.
func FilterDateRange(appts []appointment.Appointment, start, end string) []appointment.Appointment {
	out := make([]appointment.Appointment, 0, len(appts))
	for _, a := range appts {
		if start != "" && a.Date < start {
			continue
		}
		if end != "" && a.Date > end {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ratio returns part/whole as a percentage, 0 when the denominator is 0.
func ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round1(part / whole * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fillDelay returns the cancelled-to-filled delay when both timestamps are
// present and ordered; ok is false otherwise.
func fillDelay(a *appointment.Appointment) (time.Duration, bool) {
	if a.CancelledAt == nil || a.FilledAt == nil {
		return 0, false
	}
	if !a.FilledAt.After(*a.CancelledAt) {
		return 0, false
	}
	return a.FilledAt.Sub(*a.CancelledAt), true
}
