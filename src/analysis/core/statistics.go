package core

import "math"

// -----------------------------------------------------------------------------

// MeanStd returns the mean and population standard deviation of a sparkline,
// using Welford's running update. A single point has zero spread.
func MeanStd(values []float64) (mean, std float64) {
	var m2 float64
	for i, v := range values {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	if len(values) < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(m2 / float64(len(values)))
}

// -----------------------------------------------------------------------------

// Pearson is the correlation of two equally long runs, 0 when either is flat
// or the lengths differ.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	meanX, stdX := MeanStd(x)
	meanY, stdY := MeanStd(y)
	if stdX == 0 || stdY == 0 {
		return 0
	}

	var cov float64
	for i := range x {
		cov += (x[i] - meanX) * (y[i] - meanY)
	}
	r := cov / float64(len(x)) / (stdX * stdY)
	if math.IsNaN(r) {
		return 0
	}
	// Clamp rounding drift.
	return math.Max(-1, math.Min(1, r))
}

// -----------------------------------------------------------------------------

// ZScore places value on the distribution; 0 for a flat series.
func ZScore(value, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (value - mean) / std
}
