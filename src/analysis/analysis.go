// Package analysis derives the dashboard's secondary views from a snapshot:
// the trending list, watch-list search and per-series summaries.
package analysis

import (
	"math"
	"sort"
	"strings"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/models"
	"market-dashboard/src/symbols"
	"market-dashboard/src/utils"
)

// Direction of a series from its first to its last close.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// SeriesSummary describes one sparkline.
type SeriesSummary struct {
	Points        int       `json:"points"`
	First         float64   `json:"first"`
	Last          float64   `json:"last"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Mean          float64   `json:"mean"`
	Std           float64   `json:"std"`
	ChangePercent float64   `json:"changePercent"`
	LastZScore    float64   `json:"lastZScore"`
	Volume        float64   `json:"volume"`
	Correlation   float64   `json:"priceVolumeCorrelation"`
	Direction     Direction `json:"direction"`
}

// -----------------------------------------------------------------------------

// Trending returns up to limit quotes ordered by absolute percent move,
// optionally filtered by a case-insensitive match on symbol or name.
// Quotes whose percent change does not parse are skipped.
func Trending(quotes []models.MQuote, query string, limit int) []models.MQuote {
	limit = utils.IntOr(limit, utils.DefaultTrendingLimit)
	q := strings.ToLower(strings.TrimSpace(query))

	type ranked struct {
		quote models.MQuote
		move  float64
	}
	candidates := make([]ranked, 0, len(quotes))
	for _, quote := range quotes {
		pct, ok := models.ParseDecimal(quote.ChangePercent)
		if !ok {
			continue
		}
		if q != "" && !matches(q, quote.Symbol, quote.Name) {
			continue
		}
		candidates = append(candidates, ranked{quote, math.Abs(pct)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].move > candidates[j].move
	})

	out := make([]models.MQuote, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, c.quote)
	}
	return out
}

// -----------------------------------------------------------------------------

// FilterWatchList keeps the qualified symbols whose own text, mapped provider
// symbol, or rendered quote (symbol or name) contains the query. An empty
// query returns the whole list.
func FilterWatchList(watch []string, query string, quotes []models.MQuote, mapper *symbols.Mapper) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]string(nil), watch...)
	}

	bySymbol := make(map[string]models.MQuote, len(quotes))
	for _, quote := range quotes {
		bySymbol[quote.Symbol] = quote
	}

	out := []string{}
	for _, qualified := range watch {
		plain := qualified
		if mapper != nil {
			plain = mapper.ToProviderSymbol(qualified)
		}
		if matches(q, qualified, plain) {
			out = append(out, qualified)
			continue
		}
		quote, ok := bySymbol[plain]
		if !ok {
			quote, ok = bySymbol[qualified]
		}
		if ok && matches(q, quote.Symbol, quote.Name) {
			out = append(out, qualified)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Summarize computes the summary of one series. An empty series yields a
// zero summary with DirectionFlat.
func Summarize(series models.MChartSeries) SeriesSummary {
	closes := series.Closes()
	if len(closes) == 0 {
		return SeriesSummary{Direction: DirectionFlat}
	}

	volumes := make([]float64, 0, len(series))
	for _, p := range series {
		if p.Volume == nil {
			break
		}
		volumes = append(volumes, *p.Volume)
	}

	ohlcv := core.ComputeOHLCV(closes, volumes)
	mean, std := core.MeanStd(closes)

	s := SeriesSummary{
		Points:        len(closes),
		First:         ohlcv.Open,
		Last:          ohlcv.Close,
		High:          ohlcv.High,
		Low:           ohlcv.Low,
		Mean:          mean,
		Std:           std,
		ChangePercent: core.CalculateChangePercent(ohlcv.Close, ohlcv.Open) * 100,
		LastZScore:    core.ZScore(ohlcv.Close, mean, std),
		Volume:        ohlcv.Volume,
		Direction:     DirectionFlat,
	}
	if len(volumes) == len(closes) {
		s.Correlation = core.Pearson(closes, volumes)
	}

	switch {
	case ohlcv.Close > ohlcv.Open:
		s.Direction = DirectionUp
	case ohlcv.Close < ohlcv.Open:
		s.Direction = DirectionDown
	}
	return s
}

// -----------------------------------------------------------------------------

// SummarizeAll summarizes every series of a chart map.
func SummarizeAll(charts map[string]models.MChartSeries) map[string]SeriesSummary {
	out := make(map[string]SeriesSummary, len(charts))
	for sym, series := range charts {
		out[sym] = Summarize(series)
	}
	return out
}
