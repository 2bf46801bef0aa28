package matcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

func defaultConfig() Config {
	return Config{
		Weights: Weights{
			Wait:     0.3,
			Attempts: 0.2,
			DateFlex: 0.2,
			TimeFlex: 0.2,
			Loyalty:  0.1,
		},
		Limit: 10,
	}
}

func dermSlot(timeOfDay int) *appointment.Appointment {
	return &appointment.Appointment{
		ID:        uuid.New(),
		Date:      "2026-09-10",
		TimeOfDay: timeOfDay,
		Doctor:    "Dr. Chen",
		Specialty: "Dermatology",
		Status:    appointment.StatusCancelled,
	}
}

func entry(opts func(*waitlist.Entry)) waitlist.Entry {
	e := waitlist.Entry{
		ID:              uuid.New(),
		Name:            "Jordan Reyes",
		Email:           "jordan@example.com",
		Phone:           "(555) 201-3344",
		Specialty:       "Dermatology",
		PreferredDates:  []string{"2026-09-10"},
		TimePreferences: []string{"morning"},
		Active:          true,
		CreatedAt:       time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	if opts != nil {
		opts(&e)
	}
	return e
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"defaults", Weights{0.3, 0.2, 0.2, 0.2, 0.1}, false},
		{"sum too low", Weights{0.3, 0.2, 0.2, 0.2, 0.0}, true},
		{"sum too high", Weights{0.5, 0.2, 0.2, 0.2, 0.1}, true},
		{"negative weight", Weights{0.5, -0.1, 0.2, 0.3, 0.1}, true},
		{"within tolerance", Weights{0.3, 0.2, 0.2, 0.2, 0.1000000001}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeBucket(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{8 * 60, "morning"},
		{11*60 + 59, "morning"},
		{12 * 60, "afternoon"},
		{16*60 + 59, "afternoon"},
		{17 * 60, "evening"},
		{19*60 + 59, "evening"},
		{20 * 60, ""},
		{7*60 + 59, ""},
		{0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeBucket(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestEligibleSpecialtyAndDate(t *testing.T) {
	appt := dermSlot(9 * 60) // 9:00 AM, morning
	cfg := defaultConfig()

	tests := []struct {
		name string
		e    waitlist.Entry
		want bool
	}{
		{"exact match", entry(nil), true},
		{"wrong specialty", entry(func(e *waitlist.Entry) { e.Specialty = "Cardiology" }), false},
		{"inactive", entry(func(e *waitlist.Entry) { e.Active = false }), false},
		{"date not preferred", entry(func(e *waitlist.Entry) { e.PreferredDates = []string{"2026-09-11"} }), false},
		{"missing dates", entry(func(e *waitlist.Entry) { e.PreferredDates = nil }), false},
		{"missing time prefs", entry(func(e *waitlist.Entry) { e.TimePreferences = nil }), false},
		{"afternoon pref on morning slot", entry(func(e *waitlist.Entry) { e.TimePreferences = []string{"afternoon"} }), false},
		{"any time pref", entry(func(e *waitlist.Entry) { e.TimePreferences = []string{"any"} }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(appt, &tt.e, cfg))
		})
	}
}

func TestEligibleOutsideBuckets(t *testing.T) {
	// 8:30 PM is outside every bucket, so only "any" entries qualify.
	appt := dermSlot(20*60 + 30)
	cfg := defaultConfig()

	morning := entry(nil)
	assert.False(t, Eligible(appt, &morning, cfg))

	anyTime := entry(func(e *waitlist.Entry) { e.TimePreferences = []string{"any"} })
	assert.True(t, Eligible(appt, &anyTime, cfg))
}

func TestEligibleDateFlexible(t *testing.T) {
	appt := dermSlot(9 * 60)
	e := entry(func(e *waitlist.Entry) {
		e.PreferredDates = []string{"2026-09-20"}
		e.TimePreferences = []string{"any"}
	})

	strict := defaultConfig()
	assert.False(t, Eligible(appt, &e, strict))

	flexible := strict
	flexible.AllowDateFlexible = true
	assert.True(t, Eligible(appt, &e, flexible))
}

func TestRankOrdersByScore(t *testing.T) {
	appt := dermSlot(9 * 60)
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	cfg := defaultConfig()

	// Longest wait, most attempts, tightest preferences, most loyal.
	strongest := entry(func(e *waitlist.Entry) {
		e.Name = "Strongest"
		e.CreatedAt = now.Add(-30 * 24 * time.Hour)
		e.NotifiedCount = 4
		e.BookedCount = 9
	})
	middle := entry(func(e *waitlist.Entry) {
		e.Name = "Middle"
		e.CreatedAt = now.Add(-10 * 24 * time.Hour)
		e.NotifiedCount = 2
		e.BookedCount = 3
		e.PreferredDates = []string{"2026-09-10", "2026-09-12"}
	})
	weakest := entry(func(e *waitlist.Entry) {
		e.Name = "Weakest"
		e.CreatedAt = now.Add(-1 * 24 * time.Hour)
		e.PreferredDates = []string{"2026-09-10", "2026-09-12", "2026-09-14"}
		e.TimePreferences = []string{"morning", "afternoon", "any"}
	})

	ranked := Rank(appt, []waitlist.Entry{weakest, middle, strongest}, now, cfg)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Strongest", ranked[0].Entry.Name)
	assert.Equal(t, "Middle", ranked[1].Entry.Name)
	assert.Equal(t, "Weakest", ranked[2].Entry.Name)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
	assert.GreaterOrEqual(t, ranked[1].Score, ranked[2].Score)
}

func TestRankDeterministicTieBreak(t *testing.T) {
	appt := dermSlot(9 * 60)
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	cfg := defaultConfig()

	// Identical factors except created_at: the earlier signup wins the tie.
	older := entry(func(e *waitlist.Entry) {
		e.Name = "Older"
		e.CreatedAt = now.Add(-48 * time.Hour)
	})
	newer := entry(func(e *waitlist.Entry) {
		e.Name = "Newer"
		e.CreatedAt = now.Add(-24 * time.Hour)
	})
	third := entry(func(e *waitlist.Entry) {
		e.Name = "Third"
		e.CreatedAt = now.Add(-36 * time.Hour)
	})

	input := []waitlist.Entry{newer, third, older}
	first := Rank(appt, input, now, cfg)
	require.Len(t, first, 3)
	assert.Equal(t, "Older", first[0].Entry.Name)

	// Same input, same output, every time.
	for i := 0; i < 5; i++ {
		again := Rank(appt, input, now, cfg)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].Entry.ID, again[j].Entry.ID)
		}
	}
}

func TestRankCapsAtLimit(t *testing.T) {
	appt := dermSlot(9 * 60)
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	cfg := defaultConfig()

	var entries []waitlist.Entry
	for i := 0; i < 12; i++ {
		i := i
		entries = append(entries, entry(func(e *waitlist.Entry) {
			e.Name = fmt.Sprintf("Patient %d", i)
			e.CreatedAt = now.Add(-time.Duration(i+1) * 24 * time.Hour)
		}))
	}

	ranked := Rank(appt, entries, now, cfg)
	assert.Len(t, ranked, 10)
}

func TestRankEmptyEligibleSet(t *testing.T) {
	appt := dermSlot(9 * 60)
	now := time.Now()

	wrongSpecialty := entry(func(e *waitlist.Entry) { e.Specialty = "Cardiology" })
	ranked := Rank(appt, []waitlist.Entry{wrongSpecialty}, now, defaultConfig())
	assert.Nil(t, ranked)

	ranked = Rank(appt, nil, now, defaultConfig())
	assert.Nil(t, ranked)
}

func TestScoreConstantSeriesNormalizesToZero(t *testing.T) {
	appt := dermSlot(9 * 60)
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)

	// All factors identical: every score collapses to zero and order falls
	// back to created_at, which is also identical here, so input order holds.
	a := entry(func(e *waitlist.Entry) { e.Name = "A" })
	b := entry(func(e *waitlist.Entry) { e.Name = "B" })

	ranked := Rank(appt, []waitlist.Entry{a, b}, now, defaultConfig())
	require.Len(t, ranked, 2)
	assert.Zero(t, ranked[0].Score)
	assert.Zero(t, ranked[1].Score)
	assert.Equal(t, "A", ranked[0].Entry.Name)
}

func TestPenalizeRepeatNotified(t *testing.T) {
	appt := dermSlot(9 * 60)
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)

	fresh := entry(func(e *waitlist.Entry) {
		e.Name = "Fresh"
		e.NotifiedCount = 0
	})
	ignored := entry(func(e *waitlist.Entry) {
		e.Name = "Ignored"
		e.NotifiedCount = 6
	})

	boost := defaultConfig()
	ranked := Rank(appt, []waitlist.Entry{fresh, ignored}, now, boost)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Ignored", ranked[0].Entry.Name)

	penalize := boost
	penalize.PenalizeRepeatNotified = true
	ranked = Rank(appt, []waitlist.Entry{fresh, ignored}, now, penalize)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Fresh", ranked[0].Entry.Name)
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Limit = 0
	assert.Error(t, cfg.Validate())
}
