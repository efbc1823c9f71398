// Package stats derives the summary values attached to a benchmark case:
// median, mean, spread and the percentage error used to label plots.
//
// Everything here is a pure function of its input slice. Inputs are never
// reordered in place.
package stats

import (
	"math"
	"slices"
)

// Summary aggregates per-case statistics for reporting.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Median float64
	Mean   float64
	StdDev float64
	P95    float64

	// Mean absolute deviation from the median divided by the median.
	// NaN when the median is zero; callers decide how to display it.
	PercentageError float64
}

// Summarize builds a Summary from raw samples. An empty slice produces a
// Summary whose values are all NaN and whose Count is zero.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Min: nan, Max: nan, Median: nan, Mean: nan, StdDev: nan, P95: nan, PercentageError: nan}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: sortedQuantile(sorted, 0.50),
		P95:    sortedQuantile(sorted, 0.95),
	}
	s.Mean, s.StdDev = MeanStd(sorted)
	s.PercentageError = percentageError(sorted, s.Median)
	return s
}

// ErrorDefined reports whether the percentage error carries a value.
func (s Summary) ErrorDefined() bool {
	return !math.IsNaN(s.PercentageError)
}

// Ratio returns value/baseline, or NaN when the baseline is not positive.
func Ratio(value, baseline float64) float64 {
	if !(baseline > 0) {
		return math.NaN()
	}
	return value / baseline
}
