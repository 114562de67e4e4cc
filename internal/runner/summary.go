package runner

import (
	"time"

	"golang.org/x/perf/benchmath"
)

// summaryConfidence is the confidence level for sample interval estimates.
const summaryConfidence = 0.95

// Summary aggregates the sample durations of one operation. Center, Lo,
// and Hi come from a distribution-free benchmath summary at 95% confidence;
// Mean, Min, and Max are plain aggregates of the same samples.
type Summary struct {
	Mean time.Duration `json:"mean"`
	Min  time.Duration `json:"min"`
	Max  time.Duration `json:"max"`

	// Center is the benchmath center estimate (median), in nanoseconds.
	Center float64 `json:"center"`

	// Lo and Hi bound the confidence interval around Center, in
	// nanoseconds.
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`

	// Confidence is the interval's confidence level.
	Confidence float64 `json:"confidence"`
}

// summarize builds a Summary from per-sample durations. Returns nil for
// fewer than two samples - a single measurement has no distribution worth
// summarizing.
func summarize(durations []time.Duration) *Summary {
	if len(durations) < 2 {
		return nil
	}

	values := make([]float64, len(durations))
	var total time.Duration
	min, max := durations[0], durations[0]
	for i, d := range durations {
		values[i] = float64(d)
		total += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	sample := benchmath.NewSample(values, &benchmath.DefaultThresholds)
	sum := benchmath.AssumeNothing.Summary(sample, summaryConfidence)

	return &Summary{
		Mean:       total / time.Duration(len(durations)),
		Min:        min,
		Max:        max,
		Center:     sum.Center,
		Lo:         sum.Lo,
		Hi:         sum.Hi,
		Confidence: summaryConfidence,
	}
}
