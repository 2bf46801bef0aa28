package analytics

import (
	"sort"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/matcher"
	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
)

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// slopeThreshold separates a real trend from noise.
const slopeThreshold = 0.1

// Trend summarizes the movement of an ordered numeric series.
type Trend struct {
	Direction     string  `json:"direction"`
	Slope         float64 `json:"slope"`
	PercentChange float64 `json:"percent_change"`
}

// AnalyzeTrend fits a least-squares line through the series and classifies
// the slope. Series shorter than two points are stable by definition.
func AnalyzeTrend(series []float64) Trend {
	if len(series) < 2 {
		return Trend{Direction: TrendStable}
	}

	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}

	t := Trend{Slope: slope, Direction: TrendStable}
	switch {
	case slope > slopeThreshold:
		t.Direction = TrendIncreasing
	case slope < -slopeThreshold:
		t.Direction = TrendDecreasing
	}

	if first := series[0]; first != 0 {
		t.PercentChange = round1((series[len(series)-1] - first) / first * 100)
	}
	return t
}

// CancellationPatterns breaks cancellations down along the axes staff act
// on when tuning schedules.
type CancellationPatterns struct {
	ByDayOfWeek     map[string]int `json:"by_day_of_week"`
	ByTimeOfDay     map[string]int `json:"by_time_of_day"`
	BySpecialty     map[string]int `json:"by_specialty"`
	ByAdvanceNotice map[string]int `json:"by_advance_notice"`
	ByReason        map[string]int `json:"by_reason"`
}

// Advance-notice buckets, keyed by how far ahead the cancellation came.
const (
	noticeSameDay  = "same_day"
	noticeOneDay   = "1_day"
	noticeShort    = "2_7_days"
	noticeGenerous = "over_7_days"
)

// AnalyzeCancellations tallies cancelled and filled appointments (both were
// cancelled at some point) across the pattern axes.
func AnalyzeCancellations(appts []appointment.Appointment) CancellationPatterns {
	p := CancellationPatterns{
		ByDayOfWeek:     map[string]int{},
		ByTimeOfDay:     map[string]int{},
		BySpecialty:     map[string]int{},
		ByAdvanceNotice: map[string]int{},
		ByReason:        map[string]int{},
	}

	for i := range appts {
		a := &appts[i]
		if a.Status != appointment.StatusCancelled && a.Status != appointment.StatusFilled {
			continue
		}

		if day, err := time.Parse(validate.DateLayout, a.Date); err == nil {
			p.ByDayOfWeek[day.Weekday().String()]++
		}

		if bucket := matcher.TimeBucket(a.TimeOfDay); bucket != "" {
			p.ByTimeOfDay[bucket]++
		} else {
			p.ByTimeOfDay["other"]++
		}

		p.BySpecialty[a.Specialty]++

		if a.CancelledAt != nil {
			if startsAt, err := a.StartsAt(); err == nil {
				p.ByAdvanceNotice[noticeBucket(startsAt.Sub(*a.CancelledAt))]++
			}
		}

		if a.CancellationReason != "" {
			p.ByReason[a.CancellationReason]++
		}
	}
	return p
}

func noticeBucket(lead time.Duration) string {
	switch {
	case lead < 24*time.Hour:
		return noticeSameDay
	case lead < 48*time.Hour:
		return noticeOneDay
	case lead < 7*24*time.Hour:
		return noticeShort
	default:
		return noticeGenerous
	}
}

// PeakTime is one slot-time hotspot in the cancellation distribution.
type PeakTime struct {
	Clock string `json:"time"`
	Count int    `json:"count"`
}

// PeakCancellationTimes returns the top-5 slot times by cancellation count,
// most cancelled first, ties broken by earlier time of day. Filled slots
// count too: they were cancelled before recovery.
func PeakCancellationTimes(appts []appointment.Appointment) []PeakTime {
	return peakTimes(appts, func(s appointment.Status) bool {
		return s == appointment.StatusCancelled || s == appointment.StatusFilled
	})
}

// PeakBookingTimes is the same view over booked slots, for staffing
// decisions rather than overbooking ones.
func PeakBookingTimes(appts []appointment.Appointment) []PeakTime {
	return peakTimes(appts, func(s appointment.Status) bool {
		return s == appointment.StatusScheduled || s == appointment.StatusFilled
	})
}

func peakTimes(appts []appointment.Appointment, match func(appointment.Status) bool) []PeakTime {
	counts := map[int]int{}
	for i := range appts {
		a := &appts[i]
		if match(a.Status) {
			counts[a.TimeOfDay]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	type slot struct {
		minutes int
		count   int
	}
	slots := make([]slot, 0, len(counts))
	for m, c := range counts {
		slots = append(slots, slot{m, c})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].count != slots[j].count {
			return slots[i].count > slots[j].count
		}
		return slots[i].minutes < slots[j].minutes
	})

	if len(slots) > 5 {
		slots = slots[:5]
	}
	peaks := make([]PeakTime, len(slots))
	for i, s := range slots {
		peaks[i] = PeakTime{Clock: validate.FormatClock(s.minutes), Count: s.count}
	}
	return peaks
}

// DailyFillRates produces the ordered per-day fill-rate series used for
// trend analysis over a reporting window.
func DailyFillRates(appts []appointment.Appointment) []float64 {
	type tally struct{ cancelled, filled int }
	byDate := map[string]*tally{}
	for i := range appts {
		a := &appts[i]
		t, ok := byDate[a.Date]
		if !ok {
			t = &tally{}
			byDate[a.Date] = t
		}
		switch a.Status {
		case appointment.StatusCancelled:
			t.cancelled++
		case appointment.StatusFilled:
			t.cancelled++
			t.filled++
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := make([]float64, 0, len(dates))
	for _, d := range dates {
		t := byDate[d]
		series = append(series, ratio(float64(t.filled), float64(t.cancelled)))
	}
	return series
}
