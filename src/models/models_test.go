package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuote_Valid(t *testing.T) {
	t.Parallel()

	good := MQuote{Symbol: "AAPL", Price: "175.43", Change: "-2.15", ChangePercent: "-1.24", Volume: "45678900"}
	require.True(t, good.Valid())
	require.InDelta(t, 175.43, good.PriceValue(), 1e-9)
	require.False(t, good.IsUp())

	for _, bad := range []MQuote{
		{Symbol: "AAPL", Price: "NaN", Change: "0", ChangePercent: "0", Volume: "0"},
		{Symbol: "AAPL", Price: "1", Change: "+Inf", ChangePercent: "0", Volume: "0"},
		{Symbol: "AAPL", Price: "1", Change: "0", ChangePercent: "1.2%", Volume: "0"},
		{Symbol: "AAPL", Price: "1", Change: "0", ChangePercent: "0", Volume: ""},
		{Symbol: "", Price: "1", Change: "0", ChangePercent: "0", Volume: "0"},
	} {
		require.False(t, bad.Valid(), "%+v", bad)
	}
}

func TestChartSeries_Normalize(t *testing.T) {
	t.Parallel()

	series := MChartSeries{
		{Time: 300, Close: 3},
		{Time: 100, Close: 1},
		{Time: 200, Close: math.NaN()},
		{Time: 0, Close: 9},
		{Time: 400, Close: math.Inf(1)},
		{Time: 300, Close: 33},
		{Time: 500, Close: 5},
	}

	got := series.Normalize(0)

	require.Equal(t, MChartSeries{{Time: 100, Close: 1}, {Time: 300, Close: 33}, {Time: 500, Close: 5}}, got)
	require.True(t, got.IsAscending())
}

func TestChartSeries_NormalizeKeepsLastPoints(t *testing.T) {
	t.Parallel()

	var series MChartSeries
	for i := 30; i >= 1; i-- {
		series = append(series, MCandlePoint{Time: int64(i), Close: float64(i)})
	}

	got := series.Normalize(DefaultChartPoints)

	require.Len(t, got, DefaultChartPoints)
	require.Equal(t, int64(11), got[0].Time)
	require.Equal(t, int64(30), got[len(got)-1].Time)
	require.Equal(t, 30.0, got.Closes()[19])
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	orig := MSnapshot{
		Status:      StatusSuccess,
		Quotes:      []MQuote{{Symbol: "AAPL"}},
		Charts:      map[string]MChartSeries{"AAPL": {{Time: 1, Close: 1}}},
		LastUpdated: &now,
		WatchList:   []string{"NASDAQ:AAPL"},
		Alternate: &MFamilySnapshot{
			Quotes: []MQuote{{Symbol: "NASDAQ:AAPL"}},
			Charts: map[string]MChartSeries{},
		},
		MarketOpen: map[string]bool{"NASDAQ:AAPL": true},
	}

	cp := orig.Clone()
	cp.Quotes[0].Symbol = "X"
	cp.Charts["AAPL"][0].Close = 99
	cp.WatchList[0] = "X"
	cp.Alternate.Quotes[0].Symbol = "X"
	cp.MarketOpen["NASDAQ:AAPL"] = false
	*cp.LastUpdated = time.Time{}

	require.Equal(t, "AAPL", orig.Quotes[0].Symbol)
	require.Equal(t, 1.0, orig.Charts["AAPL"][0].Close)
	require.Equal(t, "NASDAQ:AAPL", orig.WatchList[0])
	require.Equal(t, "NASDAQ:AAPL", orig.Alternate.Quotes[0].Symbol)
	require.True(t, orig.MarketOpen["NASDAQ:AAPL"])
	require.Equal(t, now, *orig.LastUpdated)
}

func TestSnapshot_PreferredFamily(t *testing.T) {
	t.Parallel()

	s := EmptySnapshot([]string{"NASDAQ:AAPL"})
	s.Quotes = []MQuote{{Symbol: "AAPL"}}
	q, _ := s.PreferredFamily()
	require.Equal(t, "AAPL", q[0].Symbol)

	s.UseAlternate = true
	q, _ = s.PreferredFamily()
	require.Equal(t, "AAPL", q[0].Symbol, "falls back to primary without alternate data")

	s.Alternate = &MFamilySnapshot{Quotes: []MQuote{{Symbol: "NASDAQ:AAPL"}}}
	q, _ = s.PreferredFamily()
	require.Equal(t, "NASDAQ:AAPL", q[0].Symbol)
}
