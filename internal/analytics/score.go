package analytics

// Performance-score factor weights. They sum to 1.0.
const (
	scoreWeightFillRate     = 0.3
	scoreWeightFillTime     = 0.2
	scoreWeightUtilization  = 0.2
	scoreWeightRecovery     = 0.2
	scoreWeightSatisfaction = 0.1
)

// Score is the 0-100 composite with its letter grade and the sub-scores
// that produced it.
type Score struct {
	Overall float64 `json:"overall"`
	Grade   string  `json:"grade"`

	FillRateScore     float64 `json:"fill_rate_score"`
	FillTimeScore     float64 `json:"fill_time_score"`
	UtilizationScore  float64 `json:"utilization_score"`
	RecoveryScore     float64 `json:"recovery_score"`
	SatisfactionScore float64 `json:"satisfaction_score"`
}

// ComputeScore blends the summary into a single performance number.
// satisfaction comes from patient surveys on a 0-5 scale; pass the clinic's
// current average (the target is 4.5).
func ComputeScore(s Summary, satisfaction float64) Score {
	fillRate := clamp100(s.FillRate / TargetFillRate * 100)

	// Filling at or under the target time earns full marks; past it the
	// score loses two points per minute, hitting zero at 80 minutes.
	fillTime := clamp100(100 - 2*(s.AvgFillTimeMinutes-TargetFillTimeMinutes))

	utilization := clamp100(s.UtilizationRate / TargetUtilization * 100)
	recovery := clamp100(s.NetRecoveryRate)
	satisfactionScore := clamp100(satisfaction / 5 * 100)

	overall := round1(scoreWeightFillRate*fillRate +
		scoreWeightFillTime*fillTime +
		scoreWeightUtilization*utilization +
		scoreWeightRecovery*recovery +
		scoreWeightSatisfaction*satisfactionScore)

	return Score{
		Overall:           overall,
		Grade:             Grade(overall),
		FillRateScore:     round1(fillRate),
		FillTimeScore:     round1(fillTime),
		UtilizationScore:  round1(utilization),
		RecoveryScore:     round1(recovery),
		SatisfactionScore: round1(satisfactionScore),
	}
}

// Grade maps a 0-100 score to its letter.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "C+"
	case score >= 65:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
