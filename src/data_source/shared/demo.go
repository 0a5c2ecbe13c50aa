package shared

import (
	"math"
	"math/rand/v2"
	"time"

	"market-dashboard/src/models"
)

// DemoInstrument is a fixed quote plus the shape of its synthetic sparkline.
type DemoInstrument struct {
	Quote     models.MQuote
	Base      float64
	Amplitude float64
	Period    float64
	Noise     float64
}

var defaultInstruments = []DemoInstrument{
	{models.MQuote{Symbol: "AAPL", Name: "Apple Inc.", Price: "175.43", Change: "2.15", ChangePercent: "1.24", Volume: "45678900"}, 175, 5, 3, 2},
	{models.MQuote{Symbol: "MSFT", Name: "Microsoft Corporation", Price: "378.85", Change: "-1.23", ChangePercent: "-0.32", Volume: "23456700"}, 378, 8, 2, 3},
	{models.MQuote{Symbol: "TSLA", Name: "Tesla, Inc.", Price: "248.50", Change: "5.67", ChangePercent: "2.34", Volume: "78901200"}, 248, 12, 4, 4},
	{models.MQuote{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: "485.09", Change: "3.45", ChangePercent: "0.72", Volume: "34567800"}, 485, 15, 3, 5},
	{models.MQuote{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: "142.56", Change: "1.89", ChangePercent: "1.34", Volume: "12345600"}, 142, 6, 2, 2},
	{models.MQuote{Symbol: "AMZN", Name: "Amazon.com, Inc.", Price: "145.80", Change: "-2.10", ChangePercent: "-1.42", Volume: "56789000"}, 145, 7, 4, 3},
}

// -----------------------------------------------------------------------------

// DemoDataset is the fallback data an adapter serves without live credentials.
type DemoDataset struct {
	instruments []DemoInstrument
	rnd         func() float64
	now         func() time.Time
}

// -----------------------------------------------------------------------------

// NewDemoDataset returns the stock demo set.
func NewDemoDataset() *DemoDataset {
	return NewDemoDatasetWith(defaultInstruments)
}

// -----------------------------------------------------------------------------

// NewDemoDatasetWith uses custom instruments, e.g. qualified symbols.
func NewDemoDatasetWith(instruments []DemoInstrument) *DemoDataset {
	return &DemoDataset{
		instruments: append([]DemoInstrument(nil), instruments...),
		rnd:         rand.Float64,
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

// DemoQuotes returns a copy of the fixed quotes.
func (d *DemoDataset) DemoQuotes() []models.MQuote {
	out := make([]models.MQuote, len(d.instruments))
	for i, in := range d.instruments {
		out[i] = in.Quote
	}
	return out
}

// -----------------------------------------------------------------------------

// DemoCharts returns synthetic series for the requested symbols the dataset
// knows about, or for every instrument when symbols is empty.
func (d *DemoDataset) DemoCharts(symbols []string, window models.MChartWindow) map[string]models.MChartSeries {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	points := window.Points
	if points <= 0 {
		points = models.DefaultChartPoints
	}

	now := d.now()
	out := make(map[string]models.MChartSeries)
	for _, in := range d.instruments {
		if len(wanted) > 0 && !wanted[in.Quote.Symbol] {
			continue
		}
		out[in.Quote.Symbol] = SyntheticSeries(in.Base, in.Amplitude, in.Period, in.Noise, points, models.DefaultChartStepSecs, now, d.rnd)
	}
	return out
}

// -----------------------------------------------------------------------------

// DefaultDemoQuotes is the stock demo quote list (first four instruments),
// used when a provider brings no dataset of its own.
func DefaultDemoQuotes() []models.MQuote {
	out := make([]models.MQuote, 0, 4)
	for _, in := range defaultInstruments[:4] {
		out = append(out, in.Quote)
	}
	return out
}

// -----------------------------------------------------------------------------

// SyntheticSeries builds `points` candles ending just before now, spaced
// stepSecs apart: base + sin(i/period)*amplitude + rnd()*noise.
func SyntheticSeries(base, amplitude, period, noise float64, points int, stepSecs int64, now time.Time, rnd func() float64) models.MChartSeries {
	if period == 0 {
		period = 1
	}
	end := now.Unix()
	series := make(models.MChartSeries, points)
	for i := 0; i < points; i++ {
		series[i] = models.MCandlePoint{
			Time:  end - int64(points-i)*stepSecs,
			Close: base + math.Sin(float64(i)/period)*amplitude + rnd()*noise,
		}
	}
	return series
}

// -----------------------------------------------------------------------------

// PlaceholderSeries is the random-level sine used when no provider returned
// any chart: level in [100, 300), amplitude 10.
func PlaceholderSeries(points int, now time.Time, rnd func() float64) models.MChartSeries {
	if points <= 0 {
		points = models.DefaultChartPoints
	}
	base := 100 + rnd()*200
	return SyntheticSeries(base, 10, 3, 2, points, models.DefaultChartStepSecs, now, rnd)
}
