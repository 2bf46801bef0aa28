package analytics

import (
	"context"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
)

// Report is the full analytics payload: metrics plus everything derived
// from them, as plain structured data for dashboards and exports.
type Report struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	Metrics               Summary              `json:"metrics"`
	FillRateTrend         Trend                `json:"fill_rate_trend"`
	Patterns              CancellationPatterns `json:"cancellation_patterns"`
	PeakCancellationTimes []PeakTime           `json:"peak_cancellation_times"`
	PeakBookingTimes      []PeakTime           `json:"peak_booking_times"`
	Score                 Score                `json:"score"`
	Insights        []Insight            `json:"insights"`
	Recommendations []Recommendation     `json:"recommendations"`
	Benchmarks      []Benchmark          `json:"benchmarks"`
}

// Reporter computes reports on demand from the appointment store.
type Reporter struct {
	appointments appointment.Repository
	cfg          Config
	satisfaction float64
}

// NewReporter wires the analytics engines to the appointment repository.
// satisfaction is the clinic's current survey average on a 0-5 scale.
func NewReporter(appointments appointment.Repository, cfg Config, satisfaction float64) *Reporter {
	return &Reporter{
		appointments: appointments,
		cfg:          cfg,
		satisfaction: satisfaction,
	}
}

// Report loads the date-bounded appointment snapshot and runs every engine
// over it. Empty bounds are open-ended.
func (r *Reporter) Report(ctx context.Context, start, end string) (*Report, error) {
	appts, err := r.appointments.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rep := BuildReport(appts, r.cfg, r.satisfaction)
	rep.Start = start
	rep.End = end
	return rep, nil
}

// BuildReport is the pure aggregation over an appointment snapshot.
func BuildReport(appts []appointment.Appointment, cfg Config, satisfaction float64) *Report {
	metrics := ComputeMetrics(appts, cfg)
	patterns := AnalyzeCancellations(appts)
	peaks := PeakCancellationTimes(appts)
	insights := GenerateInsights(metrics, patterns, peaks)

	return &Report{
		Metrics:               metrics,
		FillRateTrend:         AnalyzeTrend(DailyFillRates(appts)),
		Patterns:              patterns,
		PeakCancellationTimes: peaks,
		PeakBookingTimes:      PeakBookingTimes(appts),
		Score:                 ComputeScore(metrics, satisfaction),
		Insights:              insights,
		Recommendations:       Recommend(insights),
		Benchmarks:            CompareBenchmarks(metrics, satisfaction),
	}
}
