// Package matcher selects and ranks waitlist entries for a cancelled
// appointment slot. Scores are a within-batch ranking only; they carry no
// meaning across batches.
package matcher

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

// Weights are the priority score factors. They must sum to 1.0.
type Weights struct {
	Wait     float64 // time spent on the waitlist
	Attempts float64 // prior notifications for this entry
	DateFlex float64 // fewer preferred dates scores higher
	TimeFlex float64 // fewer time preferences scores higher
	Loyalty  float64 // past bookings with the clinic
}

const weightTolerance = 1e-6

// Validate rejects weight sets that do not sum to 1.0 within floating
// tolerance. It runs at configuration time, before any ranking.
func (w Weights) Validate() error {
	sum := w.Wait + w.Attempts + w.DateFlex + w.TimeFlex + w.Loyalty
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("match weights must sum to 1.0, got %.6f", sum)
	}
	for _, v := range []float64{w.Wait, w.Attempts, w.DateFlex, w.TimeFlex, w.Loyalty} {
		if v < 0 {
			return fmt.Errorf("match weights must be non-negative")
		}
	}
	return nil
}

type Config struct {
	Weights Weights

	// Limit caps the ranked candidate list (notification cap per slot).
	Limit int

	// AllowDateFlexible admits entries whose time preference is "any" even
	// without an exact preferred-date match. Off by default: exact date
	// membership is required.
	AllowDateFlexible bool

	// PenalizeRepeatNotified inverts the attempts factor so patients who
	// were notified many times without booking rank lower instead of
	// higher. Off by default, matching the original configuration.
	PenalizeRepeatNotified bool
}

func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("candidate limit must be positive, got %d", c.Limit)
	}
	return c.Weights.Validate()
}

// Candidate pairs an eligible entry with its batch-relative score.
type Candidate struct {
	Entry waitlist.Entry
	Score float64
}

// Time-of-day buckets in minutes since midnight.
const (
	morningStart   = 8 * 60
	afternoonStart = 12 * 60
	eveningStart   = 17 * 60
	eveningEnd     = 20 * 60
)

// TimeBucket classifies minutes-since-midnight into a preference tag.
// Times outside all buckets return "".
func TimeBucket(minutes int) string {
	switch {
	case minutes >= morningStart && minutes < afternoonStart:
		return "morning"
	case minutes >= afternoonStart && minutes < eveningStart:
		return "afternoon"
	case minutes >= eveningStart && minutes < eveningEnd:
		return "evening"
	default:
		return ""
	}
}

// Rank returns the eligible subset of entries sorted best-first, capped at
// the configured limit. An empty result means no match, not an error.
func Rank(appt *appointment.Appointment, entries []waitlist.Entry, now time.Time, cfg Config) []Candidate {
	eligible := make([]waitlist.Entry, 0, len(entries))
	for _, e := range entries {
		if Eligible(appt, &e, cfg) {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	candidates := score(eligible, now, cfg)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Entry.CreatedAt.Before(candidates[j].Entry.CreatedAt)
	})

	if len(candidates) > cfg.Limit {
		candidates = candidates[:cfg.Limit]
	}
	return candidates
}

// Eligible applies the hard-match filters. Malformed entries are excluded
// rather than raising.
func Eligible(appt *appointment.Appointment, e *waitlist.Entry, cfg Config) bool {
	if !e.Active {
		return false
	}
	if e.Specialty == "" || len(e.PreferredDates) == 0 || len(e.TimePreferences) == 0 {
		return false
	}
	if e.Specialty != appt.Specialty {
		return false
	}

	if !e.PrefersDate(appt.Date) {
		if !cfg.AllowDateFlexible || !e.PrefersTime("any") {
			return false
		}
	}

	bucket := TimeBucket(appt.TimeOfDay)
	if bucket == "" {
		// Outside clinic buckets entirely; only "any" entries qualify.
		return e.PrefersTime("any")
	}
	return e.PrefersTime(bucket)
}

func score(eligible []waitlist.Entry, now time.Time, cfg Config) []Candidate {
	n := len(eligible)
	wait := make([]float64, n)
	attempts := make([]float64, n)
	dateFlex := make([]float64, n)
	timeFlex := make([]float64, n)
	loyalty := make([]float64, n)

	for i, e := range eligible {
		wait[i] = now.Sub(e.CreatedAt).Minutes()
		attempts[i] = float64(e.NotifiedCount)
		dateFlex[i] = 1 / float64(len(e.PreferredDates))
		timeFlex[i] = 1 / float64(len(e.TimePreferences))
		loyalty[i] = float64(e.BookedCount)
	}

	normalize(wait)
	normalize(attempts)
	normalize(dateFlex)
	normalize(timeFlex)
	normalize(loyalty)

	if cfg.PenalizeRepeatNotified {
		for i := range attempts {
			attempts[i] = 1 - attempts[i]
		}
	}

	w := cfg.Weights
	candidates := make([]Candidate, n)
	for i, e := range eligible {
		candidates[i] = Candidate{
			Entry: e,
			Score: w.Wait*wait[i] +
				w.Attempts*attempts[i] +
				w.DateFlex*dateFlex[i] +
				w.TimeFlex*timeFlex[i] +
				w.Loyalty*loyalty[i],
		}
	}
	return candidates
}

// normalize min-max scales values into [0,1] in place. A constant series
// maps to all zeros.
func normalize(values []float64) {
	if len(values) == 0 {
		return
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	for i, v := range values {
		if span == 0 {
			values[i] = 0
			continue
		}
		values[i] = (v - min) / span
	}
}
