package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInsightsLowFillRate(t *testing.T) {
	s := Summary{CancelledCount: 10, FillRate: 30}

	insights := GenerateInsights(s, CancellationPatterns{}, nil)
	require.NotEmpty(t, insights)
	assert.Equal(t, InsightCritical, insights[0].Type)
	assert.Equal(t, "fill_rate", insights[0].Category)
	assert.NotEmpty(t, insights[0].Action)
}

func TestGenerateInsightsHighFillRate(t *testing.T) {
	s := Summary{CancelledCount: 10, FillRate: 92}

	insights := GenerateInsights(s, CancellationPatterns{}, nil)
	require.Len(t, insights, 1)
	assert.Equal(t, InsightPositive, insights[0].Type)
}

func TestGenerateInsightsNoCancellationsNoFillRateAlert(t *testing.T) {
	// Zero cancellations means fill rate 0, but that is not a problem.
	s := Summary{CancelledCount: 0, FillRate: 0}
	insights := GenerateInsights(s, CancellationPatterns{}, nil)
	assert.Empty(t, insights)
}

func TestGenerateInsightsRevenueWarning(t *testing.T) {
	s := Summary{
		CancelledCount:   5,
		FillRate:         60,
		RecoveredRevenue: 500,
		LostRevenue:      1000,
		NetRecoveryRate:  33.3,
	}

	insights := GenerateInsights(s, CancellationPatterns{}, nil)
	require.Len(t, insights, 1)
	assert.Equal(t, InsightWarning, insights[0].Type)
	assert.Equal(t, "revenue", insights[0].Category)
}

func TestGenerateInsightsSpecialtyAndPeaks(t *testing.T) {
	s := Summary{CancelledCount: 40, FillRate: 60}
	patterns := CancellationPatterns{
		BySpecialty: map[string]int{"Dermatology": 25, "Cardiology": 5},
	}
	peaks := []PeakTime{{Clock: "2:00 PM", Count: 14}, {Clock: "9:00 AM", Count: 3}}

	insights := GenerateInsights(s, patterns, peaks)
	categories := map[string]int{}
	for _, in := range insights {
		categories[in.Category]++
	}
	assert.Equal(t, 1, categories["specialty"])
	assert.Equal(t, 1, categories["peak_times"])
}

func TestGenerateInsightsCapAndOrder(t *testing.T) {
	s := Summary{
		CancelledCount:   100,
		FillRate:         20, // critical
		RecoveredRevenue: 100,
		LostRevenue:      900,
		NetRecoveryRate:  10, // warning
	}
	patterns := CancellationPatterns{
		BySpecialty: map[string]int{
			"Cardiology":  30,
			"Dentistry":   21,
			"Dermatology": 25,
			"Orthopedics": 40,
		},
	}
	peaks := []PeakTime{{Clock: "2:00 PM", Count: 30}}

	insights := GenerateInsights(s, patterns, peaks)
	require.Len(t, insights, maxInsights)
	assert.Equal(t, InsightCritical, insights[0].Type)
	// Warnings come before the info-level specialty notes.
	assert.Equal(t, InsightWarning, insights[1].Type)
	assert.Equal(t, InsightWarning, insights[2].Type)
	assert.Equal(t, InsightInfo, insights[3].Type)
	assert.Equal(t, InsightInfo, insights[4].Type)
}

func TestRecommend(t *testing.T) {
	insights := []Insight{
		{Type: InsightCritical, Title: "c1", Action: "a1"},
		{Type: InsightCritical, Title: "c2", Action: "a2"},
		{Type: InsightCritical, Title: "c3", Action: "a3"},
		{Type: InsightCritical, Title: "c4", Action: "a4"},
		{Type: InsightWarning, Title: "w1", Action: "a5"},
		{Type: InsightWarning, Title: "w2", Action: "a6"},
		{Type: InsightWarning, Title: "w3", Action: "a7"},
		{Type: InsightPositive, Title: "p1", Action: "a8"},
	}

	recs := Recommend(insights)
	require.Len(t, recs, 5)

	high, medium := 0, 0
	for _, r := range recs {
		switch r.Priority {
		case "high":
			high++
			assert.Equal(t, "immediate", r.Timeframe)
		case "medium":
			medium++
			assert.Equal(t, "this_week", r.Timeframe)
		}
	}
	assert.Equal(t, 3, high)
	assert.Equal(t, 2, medium)
}

func TestRecommendEmpty(t *testing.T) {
	assert.Empty(t, Recommend(nil))
	assert.Empty(t, Recommend([]Insight{{Type: InsightPositive}}))
}
