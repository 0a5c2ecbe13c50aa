package shared

import (
	"context"
	"sync"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"golang.org/x/sync/errgroup"
)

// ChartFetchFunc fetches one symbol's raw series.
type ChartFetchFunc func(ctx context.Context, symbol string) (models.MChartSeries, error)

// -----------------------------------------------------------------------------

// FanOutCharts runs fetch for every symbol concurrently (at most limit at a
// time) and joins the results. A failed or empty symbol is omitted; the others
// are still returned. Series are normalized to window.Points.
func FanOutCharts(
	ctx context.Context,
	symbols []string,
	limit int,
	window models.MChartWindow,
	log *logger.Logger,
	fetch ChartFetchFunc,
) map[string]models.MChartSeries {
	results := make(map[string]models.MChartSeries, len(symbols))
	if len(symbols) == 0 {
		return results
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, symbol := range symbols {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			series, err := fetch(gctx, symbol)
			if err != nil {
				log.Debug("Chart fetch failed for %s: %v", symbol, err)
				return nil // per-symbol faults never cancel siblings
			}
			series = series.Normalize(window.Points)
			if len(series) == 0 {
				return nil
			}
			mu.Lock()
			results[symbol] = series
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Debug("Fetched charts for %d/%d symbols", len(results), len(symbols))
	return results
}

// -----------------------------------------------------------------------------

// QuoteFetchFunc fetches one symbol's quote.
type QuoteFetchFunc func(ctx context.Context, symbol string) (models.MQuote, error)

// -----------------------------------------------------------------------------

// FanOutQuotes fetches quotes concurrently and returns the valid ones in
// request order. Failed or invalid symbols are omitted.
func FanOutQuotes(
	ctx context.Context,
	symbols []string,
	limit int,
	log *logger.Logger,
	fetch QuoteFetchFunc,
) []models.MQuote {
	slots := make([]*models.MQuote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, symbol := range symbols {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			q, err := fetch(gctx, symbol)
			if err != nil {
				log.Debug("Quote fetch failed for %s: %v", symbol, err)
				return nil
			}
			if !q.Valid() {
				log.Debug("Dropping malformed quote for %s", symbol)
				return nil
			}
			slots[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]models.MQuote, 0, len(symbols))
	for _, q := range slots {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	log.Debug("Fetched quotes for %d/%d symbols", len(quotes), len(symbols))
	return quotes
}
