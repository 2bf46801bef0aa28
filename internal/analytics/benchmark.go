package analytics

// Benchmark ratings.
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingAverage   = "average"
	RatingPoor      = "poor"
)

// benchmarkDef encodes one industry benchmark. HigherIsBetter is explicit
// per metric; it is never inferred from the thresholds.
type benchmarkDef struct {
	Metric         string
	Unit           string
	HigherIsBetter bool
	// Thresholds are ordered excellent, good, average; anything past
	// average is poor. For lower-is-better metrics they are ceilings.
	Excellent float64
	Good      float64
	Average   float64
}

var benchmarkTable = []benchmarkDef{
	{Metric: "fill_rate", Unit: "%", HigherIsBetter: true, Excellent: 80, Good: 60, Average: 40},
	{Metric: "avg_fill_time_minutes", Unit: "min", HigherIsBetter: false, Excellent: 30, Good: 60, Average: 120},
	{Metric: "utilization_rate", Unit: "%", HigherIsBetter: true, Excellent: 90, Good: 80, Average: 70},
	{Metric: "net_recovery_rate", Unit: "%", HigherIsBetter: true, Excellent: 85, Good: 70, Average: 55},
	{Metric: "no_show_rate", Unit: "%", HigherIsBetter: false, Excellent: 5, Good: 10, Average: 15},
	{Metric: "patient_satisfaction", Unit: "/5", HigherIsBetter: true, Excellent: 4.5, Good: 4.0, Average: 3.5},
}

// Benchmark is one metric measured against the industry table.
type Benchmark struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Rating string  `json:"rating"`
}

// CompareBenchmarks rates the summary against the industry table, in table
// order. satisfaction is the clinic's survey average on a 0-5 scale.
func CompareBenchmarks(s Summary, satisfaction float64) []Benchmark {
	values := map[string]float64{
		"fill_rate":             s.FillRate,
		"avg_fill_time_minutes": s.AvgFillTimeMinutes,
		"utilization_rate":      s.UtilizationRate,
		"net_recovery_rate":     s.NetRecoveryRate,
		"no_show_rate":          s.NoShowRate,
		"patient_satisfaction":  satisfaction,
	}

	out := make([]Benchmark, 0, len(benchmarkTable))
	for _, def := range benchmarkTable {
		v := values[def.Metric]
		out = append(out, Benchmark{
			Metric: def.Metric,
			Value:  v,
			Unit:   def.Unit,
			Rating: def.rate(v),
		})
	}
	return out
}

func (d benchmarkDef) rate(v float64) string {
	if d.HigherIsBetter {
		switch {
		case v >= d.Excellent:
			return RatingExcellent
		case v >= d.Good:
			return RatingGood
		case v >= d.Average:
			return RatingAverage
		default:
			return RatingPoor
		}
	}
	switch {
	case v <= d.Excellent:
		return RatingExcellent
	case v <= d.Good:
		return RatingGood
	case v <= d.Average:
		return RatingAverage
	default:
		return RatingPoor
	}
}
