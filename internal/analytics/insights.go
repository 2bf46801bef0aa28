package analytics

import (
	"fmt"
	"sort"
)

// Insight severities and the dashboard cap.
const (
	InsightCritical = "critical"
	InsightWarning  = "warning"
	InsightInfo     = "info"
	InsightPositive = "positive"

	maxInsights = 5
)

// Insight is one rule-derived observation with a suggested action.
type Insight struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// Recommendation is a prioritized follow-up derived from the insight set.
type Recommendation struct {
	Priority  string `json:"priority"`  // high | medium
	Timeframe string `json:"timeframe"` // immediate | this_week
	Title     string `json:"title"`
	Action    string `json:"action"`
}

// GenerateInsights runs the threshold rules over the metrics and patterns.
// Severity orders the output (critical first) and the list is capped at
// five for display.
func GenerateInsights(s Summary, patterns CancellationPatterns, peaks []PeakTime) []Insight {
	var insights []Insight

	if s.CancelledCount > 0 && s.FillRate < 50 {
		insights = append(insights, Insight{
			Type:     InsightCritical,
			Category: "fill_rate",
			Title:    "Low fill rate",
			Message:  fmt.Sprintf("Only %.1f%% of cancelled slots were rebooked, well below the %.0f%% target.", s.FillRate, TargetFillRate),
			Action:   "Grow the waitlist and review notification delivery for failures.",
		})
	}
	if s.FillRate > 85 {
		insights = append(insights, Insight{
			Type:     InsightPositive,
			Category: "fill_rate",
			Title:    "Excellent fill rate",
			Message:  fmt.Sprintf("%.1f%% of cancelled slots were rebooked, above the %.0f%% target.", s.FillRate, TargetFillRate),
			Action:   "Keep current waitlist outreach in place.",
		})
	}
	if s.RecoveredRevenue+s.LostRevenue > 0 && s.NetRecoveryRate < 70 {
		insights = append(insights, Insight{
			Type:     InsightWarning,
			Category: "revenue",
			Title:    "Revenue recovery below target",
			Message:  fmt.Sprintf("Net recovery rate is %.1f%%; $%.0f of cancelled-slot revenue was lost.", s.NetRecoveryRate, s.LostRevenue),
			Action:   "Shorten booking-link expiry or widen the notification cap for high-value specialties.",
		})
	}

	specialties := make([]string, 0, len(patterns.BySpecialty))
	for specialty := range patterns.BySpecialty {
		specialties = append(specialties, specialty)
	}
	sort.Strings(specialties)
	for _, specialty := range specialties {
		if count := patterns.BySpecialty[specialty]; count > 20 {
			insights = append(insights, Insight{
				Type:     InsightInfo,
				Category: "specialty",
				Title:    fmt.Sprintf("High cancellation volume in %s", specialty),
				Message:  fmt.Sprintf("%s logged %d cancellations in this period.", specialty, count),
				Action:   "Review scheduling policy and reminder cadence for this specialty.",
			})
		}
	}

	for _, peak := range peaks {
		if peak.Count > 10 {
			insights = append(insights, Insight{
				Type:     InsightWarning,
				Category: "peak_times",
				Title:    fmt.Sprintf("Cancellation hotspot at %s", peak.Clock),
				Message:  fmt.Sprintf("%d cancellations landed on the %s slot.", peak.Count, peak.Clock),
				Action:   "Consider overbooking or double-confirming this slot time.",
			})
		}
	}

	sortBySeverity(insights)
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// Recommend converts the insight set into an action list: up to 3 high
// priority items from critical insights, then up to 2 medium from warnings.
func Recommend(insights []Insight) []Recommendation {
	var recs []Recommendation
	high, medium := 0, 0
	for _, in := range insights {
		switch in.Type {
		case InsightCritical:
			if high < 3 {
				recs = append(recs, Recommendation{
					Priority:  "high",
					Timeframe: "immediate",
					Title:     in.Title,
					Action:    in.Action,
				})
				high++
			}
		case InsightWarning:
			if medium < 2 {
				recs = append(recs, Recommendation{
					Priority:  "medium",
					Timeframe: "this_week",
					Title:     in.Title,
					Action:    in.Action,
				})
				medium++
			}
		}
	}
	return recs
}

var severityRank = map[string]int{
	InsightCritical: 0,
	InsightWarning:  1,
	InsightInfo:     2,
	InsightPositive: 3,
}

// sortBySeverity orders critical first, preserving rule order within a
// severity.
func sortBySeverity(insights []Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return severityRank[insights[i].Type] < severityRank[insights[j].Type]
	})
}
