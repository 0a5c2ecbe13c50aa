package analysis

import (
	"math"
	"testing"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/models"
	"market-dashboard/src/symbols"

	"github.com/stretchr/testify/require"
)

func q(symbol, name, pct string) models.MQuote {
	return models.MQuote{Symbol: symbol, Name: name, Price: "10", Change: "1", ChangePercent: pct, Volume: "1"}
}

func TestTrending_OrdersByAbsoluteMove(t *testing.T) {
	t.Parallel()

	// Arrange
	quotes := []models.MQuote{
		q("AAPL", "Apple Inc.", "1.24"),
		q("MSFT", "Microsoft Corporation", "-0.32"),
		q("TSLA", "Tesla, Inc.", "2.34"),
		q("NVDA", "NVIDIA Corporation", "0.72"),
		q("GOOGL", "Alphabet Inc.", "1.34"),
		q("AMZN", "Amazon.com, Inc.", "-1.42"),
		q("BAD", "Broken", "n/a"),
		q("META", "Meta Platforms", "0.10"),
	}

	// Act
	top := Trending(quotes, "", 0)

	// Assert
	require.Len(t, top, 6)
	got := []string{}
	for _, quote := range top {
		got = append(got, quote.Symbol)
	}
	require.Equal(t, []string{"TSLA", "AMZN", "GOOGL", "AAPL", "NVDA", "MSFT"}, got)
}

func TestTrending_Filter(t *testing.T) {
	t.Parallel()

	quotes := []models.MQuote{q("AAPL", "Apple Inc.", "1"), q("AMZN", "Amazon.com, Inc.", "2"), q("MSFT", "Microsoft", "3")}

	top := Trending(quotes, "  inc ", 1)

	require.Len(t, top, 1)
	require.Equal(t, "AMZN", top[0].Symbol)
	require.Empty(t, Trending(quotes, "zzz", 5))
}

func TestFilterWatchList(t *testing.T) {
	t.Parallel()

	// Arrange
	watch := symbols.DefaultWatchList()
	quotes := []models.MQuote{q("GC=F", "Gold Futures", "0.1"), q("AAPL", "Apple Inc.", "1")}
	mapper := symbols.NewMapper(nil)

	// Act & Assert
	require.Equal(t, watch, FilterWatchList(watch, "", quotes, mapper))
	require.Equal(t, []string{"TVC:GOLD"}, FilterWatchList(watch, "gold", quotes, mapper))
	require.Equal(t, []string{"CME_MINI:ES1!"}, FilterWatchList(watch, "es=f", quotes, mapper))
	require.Equal(t, []string{"NASDAQ:AAPL"}, FilterWatchList(watch, "apple", quotes, mapper))
	require.Equal(t, []string{"OANDA:EURUSD", "OANDA:USDJPY"}, FilterWatchList(watch, "oanda", nil, mapper))
	require.Empty(t, FilterWatchList(watch, "nothing-matches", quotes, mapper))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	v := func(f float64) *float64 { return &f }
	series := models.MChartSeries{
		{Time: 1, Close: 10, Volume: v(100)},
		{Time: 2, Close: 12, Volume: v(200)},
		{Time: 3, Close: 8, Volume: v(50)},
		{Time: 4, Close: 11, Volume: v(150)},
	}

	s := Summarize(series)

	require.Equal(t, 4, s.Points)
	require.Equal(t, 12.0, s.High)
	require.Equal(t, 8.0, s.Low)
	require.InDelta(t, 10.25, s.Mean, 1e-12)
	require.InDelta(t, 10.0, s.ChangePercent, 1e-9)
	require.Equal(t, DirectionUp, s.Direction)
	require.Equal(t, 500.0, s.Volume)
	require.Greater(t, s.Correlation, 0.9)
	require.InDelta(t, 0.75/s.Std, s.LastZScore, 1e-9)
}

func TestSummarize_EmptyAndFlat(t *testing.T) {
	t.Parallel()

	require.Equal(t, SeriesSummary{Direction: DirectionFlat}, Summarize(nil))

	flat := Summarize(models.MChartSeries{{Time: 1, Close: 5}, {Time: 2, Close: 5}})
	require.Equal(t, DirectionFlat, flat.Direction)
	require.Zero(t, flat.Std)
	require.Zero(t, flat.LastZScore)
	require.Zero(t, flat.Correlation)

	all := SummarizeAll(map[string]models.MChartSeries{"A": {{Time: 1, Close: 1}}})
	require.Contains(t, all, "A")
}

func TestCoreHelpers(t *testing.T) {
	t.Parallel()

	mean, std := core.MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.InDelta(t, 5.0, mean, 1e-12)
	require.InDelta(t, 2.0, std, 1e-12)

	require.InDelta(t, 1.0, core.Pearson([]float64{1, 2, 3}, []float64{10, 20, 30}), 1e-12)
	require.InDelta(t, -1.0, core.Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	require.Zero(t, core.Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
	require.Zero(t, core.Pearson([]float64{1, 2}, []float64{1}))
	require.Zero(t, core.ZScore(4, 4, 0))

	require.Zero(t, core.CalculateChangePercent(5, 0))
	require.InDelta(t, -0.5, core.CalculateChangePercent(5, 10), 1e-12)

	o := core.ComputeOHLCV([]float64{3, 1, 2}, []float64{1})
	require.Equal(t, core.OHLCV{Open: 3, High: 3, Low: 1, Close: 2, Volume: 1, AvgPrice: 2}, o)
	require.False(t, math.IsInf(core.ComputeOHLCV(nil, nil).High, 0))
}
