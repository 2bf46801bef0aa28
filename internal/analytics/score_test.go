package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "A+"},
		{90, "A+"},
		{89.9, "A"},
		{85, "A"},
		{80, "B+"},
		{75, "B"},
		{70, "C+"},
		{65, "C"},
		{60, "D"},
		{59.9, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score=%v", tt.score)
	}
}

func TestComputeScorePerfectClinic(t *testing.T) {
	s := Summary{
		FillRate:           85,
		AvgFillTimeMinutes: 20,
		UtilizationRate:    90,
		NetRecoveryRate:    95,
	}

	score := ComputeScore(s, 5.0)
	assert.Equal(t, 100.0, score.FillRateScore)
	assert.Equal(t, 100.0, score.FillTimeScore)
	assert.Equal(t, 100.0, score.UtilizationScore)
	assert.Equal(t, 95.0, score.RecoveryScore)
	assert.Equal(t, 100.0, score.SatisfactionScore)
	// 0.3*100 + 0.2*100 + 0.2*100 + 0.2*95 + 0.1*100 = 99.0
	assert.Equal(t, 99.0, score.Overall)
	assert.Equal(t, "A+", score.Grade)
}

func TestComputeScoreStrugglingClinic(t *testing.T) {
	s := Summary{
		FillRate:           20,
		AvgFillTimeMinutes: 120,
		UtilizationRate:    40,
		NetRecoveryRate:    30,
	}

	score := ComputeScore(s, 3.0)
	assert.Equal(t, 25.0, score.FillRateScore)
	// 90 minutes over target at two points per minute floors at zero.
	assert.Equal(t, 0.0, score.FillTimeScore)
	assert.InDelta(t, 47.1, score.UtilizationScore, 0.05)
	assert.Equal(t, 30.0, score.RecoveryScore)
	assert.Equal(t, 60.0, score.SatisfactionScore)
	assert.Equal(t, "F", score.Grade)
}

func TestComputeScoreFillTimeDecay(t *testing.T) {
	tests := []struct {
		minutes float64
		want    float64
	}{
		{20, 100},  // under target never earns extra credit
		{30, 100},  // at target
		{45, 70},   // 100 - 2*15
		{60, 40},   // 100 - 2*30
		{80, 0},    // floor
		{150, 0},   // stays floored
	}

	for _, tt := range tests {
		score := ComputeScore(Summary{AvgFillTimeMinutes: tt.minutes}, 0)
		assert.Equal(t, tt.want, score.FillTimeScore, "minutes=%v", tt.minutes)
	}
}

func TestComputeScoreClampsSubScores(t *testing.T) {
	s := Summary{
		FillRate:           200, // wildly over target
		AvgFillTimeMinutes: 5,
		UtilizationRate:    100,
		NetRecoveryRate:    100,
	}

	score := ComputeScore(s, 5)
	assert.Equal(t, 100.0, score.FillRateScore)
	assert.LessOrEqual(t, score.Overall, 100.0)
}

func TestScoreWeightsSumToOne(t *testing.T) {
	sum := scoreWeightFillRate + scoreWeightFillTime + scoreWeightUtilization +
		scoreWeightRecovery + scoreWeightSatisfaction
	assert.InDelta(t, 1.0, sum, 1e-9)
}
