package core

import "math"

// OHLCV is the open/high/low/close/volume of a price run.
type OHLCV struct {
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	AvgPrice float64
}

// -----------------------------------------------------------------------------

// ComputeOHLCV calculates OHLCV and AvgPrice from price/volume arrays.
// volumes may be shorter than prices; missing entries count as zero.
func ComputeOHLCV(prices []float64, volumes []float64) OHLCV {
	if len(prices) == 0 {
		return OHLCV{}
	}

	out := OHLCV{
		Open:  prices[0],
		Close: prices[len(prices)-1],
		High:  math.Inf(-1),
		Low:   math.Inf(1),
	}
	sumPrice := 0.0
	for i, p := range prices {
		out.High = math.Max(out.High, p)
		out.Low = math.Min(out.Low, p)
		sumPrice += p
		if i < len(volumes) {
			out.Volume += volumes[i]
		}
	}
	out.AvgPrice = sumPrice / float64(len(prices))
	return out
}

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates fractional change.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}
