package models

import (
	"math"
	"sort"
)

// Default sparkline window.
const (
	DefaultChartRange    = "1d"
	DefaultChartInterval = "5m"
	DefaultChartPoints   = 20
	DefaultChartStepSecs = 300
)

// MCandlePoint is one point of a chart series. Only Close is guaranteed.
type MCandlePoint struct {
	Time   int64    `json:"time"`
	Close  float64  `json:"close"`
	Open   *float64 `json:"open,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

// MChartSeries is ascending by Time once normalized.
type MChartSeries []MCandlePoint

// MChartWindow describes the recent window a provider should return.
type MChartWindow struct {
	Range    string `json:"range"`
	Interval string `json:"interval"`
	Points   int    `json:"points"`
}

// -----------------------------------------------------------------------------

// DefaultChartWindow returns the 1d/5m/20-point sparkline window.
func DefaultChartWindow() MChartWindow {
	return MChartWindow{
		Range:    DefaultChartRange,
		Interval: DefaultChartInterval,
		Points:   DefaultChartPoints,
	}
}

// -----------------------------------------------------------------------------

// Normalize drops non-finite closes and non-positive times, sorts by time,
// collapses duplicate timestamps (the later point wins) and keeps the last
// limit points. A limit <= 0 keeps everything.
func (s MChartSeries) Normalize(limit int) MChartSeries {
	out := make(MChartSeries, 0, len(s))
	for _, p := range s {
		if p.Time <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})

	dedup := out[:0]
	for _, p := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time == p.Time {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}

	if limit > 0 && len(dedup) > limit {
		dedup = dedup[len(dedup)-limit:]
	}
	return dedup
}

// -----------------------------------------------------------------------------

// Closes returns the close values in order.
func (s MChartSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// -----------------------------------------------------------------------------

// IsAscending reports whether the series is strictly time-ordered.
func (s MChartSeries) IsAscending() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Time <= s[i-1].Time {
			return false
		}
	}
	return true
}
