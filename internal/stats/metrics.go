// internal/stats/metrics.go
// Package: stats
package stats

import (
	"math"
	"slices"
)

// Quantile returns the q-quantile (0..1) of a slice (copy-safe), using linear
// interpolation between the closest ranks. An empty slice yields NaN.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	cp := slices.Clone(values)
	slices.Sort(cp)
	return sortedQuantile(cp, q)
}

func sortedQuantile(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return sorted[l]
	}
	frac := pos - float64(l)
	return sorted[l]*(1-frac) + sorted[r]*frac
}

// Median is the 0.5 quantile: the middle value, or the average of the two
// middle values when the count is even.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// MeanStd returns the arithmetic mean and the population standard deviation.
func MeanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n
	var varsum float64
	for _, v := range values {
		d := v - mean
		varsum += d * d
	}
	std = math.Sqrt(varsum / n)
	return
}

// PercentageError is the mean absolute deviation from the median divided by
// the median, as a fraction. It is NaN when the median is not positive or the
// slice is empty.
func PercentageError(values []float64) float64 {
	return percentageError(values, Median(values))
}

func percentageError(values []float64, median float64) float64 {
	if len(values) == 0 || !(median > 0) {
		return math.NaN()
	}
	var dev float64
	for _, v := range values {
		dev += math.Abs(v - median)
	}
	return dev / float64(len(values)) / median
}
