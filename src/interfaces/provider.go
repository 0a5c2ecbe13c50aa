package interfaces

//go:generate mockgen -package=aggregator_test -destination=../aggregator/mock_provider_test.go -source=provider.go

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IProvider is the capability set every market-data vendor adapter implements.
// Fetches never fail as a whole: symbols that could not be served are omitted,
// and an empty result means "fall back", not "nothing to show".
// -----------------------------------------------------------------------------

type IProvider interface {

	// Name returns the unique identifier of the provider
	Name() string

	// -----------------------------------------------------------------------------

	// FetchQuotes returns one normalized quote per symbol that could be served.
	FetchQuotes(ctx context.Context, symbols []string) []models.MQuote

	// -----------------------------------------------------------------------------

	// FetchCharts returns a normalized series per symbol that could be served.
	FetchCharts(ctx context.Context, symbols []string, window models.MChartWindow) map[string]models.MChartSeries

	// -----------------------------------------------------------------------------

	// SelfTest performs one representative request. Diagnostic only.
	SelfTest(ctx context.Context) (*models.MSelfTestResult, error)

	// -----------------------------------------------------------------------------

	// Describe returns the static status descriptor. No I/O.
	Describe() models.MProviderInfo
}

// -----------------------------------------------------------------------------
// IDemoDataset is implemented by providers that carry their own fallback data.
// -----------------------------------------------------------------------------

type IDemoDataset interface {
	DemoQuotes() []models.MQuote
	DemoCharts(symbols []string, window models.MChartWindow) map[string]models.MChartSeries
}
