package datasource_test

import (
	"context"
	"errors"
	"io"
	"testing"

	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/data_source/finnhub"
	"market-dashboard/src/data_source/tradingview"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
	ok   bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchQuotes(context.Context, []string) []models.MQuote { return nil }

func (s *stubProvider) FetchCharts(context.Context, []string, models.MChartWindow) map[string]models.MChartSeries {
	return nil
}

func (s *stubProvider) SelfTest(context.Context) (*models.MSelfTestResult, error) {
	if !s.ok {
		return nil, errors.New("unreachable")
	}
	return &models.MSelfTestResult{Provider: s.name, OK: true}, nil
}

func (s *stubProvider) Describe() models.MProviderInfo {
	return models.MProviderInfo{Name: s.name, Status: models.ProviderLive}
}

func quiet() *logger.Logger {
	return logger.NewLoggerWithWriter(io.Discard, "ERROR", "registry")
}

func TestRegistry_AddRemoveKeepsOrder(t *testing.T) {
	t.Parallel()

	// Arrange
	r := datasource.NewProviderRegistry(nil, quiet())

	// Act
	require.NoError(t, r.Add(&stubProvider{name: "b"}))
	require.NoError(t, r.Add(&stubProvider{name: "a"}))
	require.NoError(t, r.Add(&stubProvider{name: "c"}))
	dupErr := r.Add(&stubProvider{name: "a"})
	require.NoError(t, r.Remove("a"))

	// Assert
	require.Error(t, dupErr)
	require.Error(t, r.Remove("a"))
	names := []string{}
	for _, p := range r.All() {
		names = append(names, p.Name())
	}
	require.Equal(t, []string{"b", "c"}, names)

	_, err := r.Get("c")
	require.NoError(t, err)
	_, err = r.Get("a")
	require.Error(t, err)
}

func TestRegistry_SelfTestAllReportsEveryProvider(t *testing.T) {
	t.Parallel()

	// Arrange
	r := datasource.NewProviderRegistry([]interfaces.IProvider{
		&stubProvider{name: "up", ok: true},
		&stubProvider{name: "down"},
	}, quiet())

	// Act
	results := r.SelfTestAll(t.Context())

	// Assert
	require.Len(t, results, 2)
	require.Equal(t, "up", results[0].Provider)
	require.True(t, results[0].OK)
	require.Equal(t, "down", results[1].Provider)
	require.False(t, results[1].OK)
	require.Equal(t, "unreachable", results[1].Detail)
	require.Len(t, r.DescribeAll(), 2)
}

func TestNewProvider_ByType(t *testing.T) {
	t.Parallel()

	log := quiet()
	net := network.NewAsyncNetworkManager(models.MNetworkConfig{}, log)

	p, err := datasource.NewProvider(models.MSourceConfig{Type: "finnhub"}, 4, net, log)
	require.NoError(t, err)
	require.IsType(t, &finnhub.FinnhubSource{}, p)
	require.Equal(t, "finnhub", p.Name())
	require.False(t, datasource.AcceptsQualifiedSymbols(p))

	p, err = datasource.NewProvider(models.MSourceConfig{Name: "tv", Type: "TradingView"}, 4, net, log)
	require.NoError(t, err)
	require.IsType(t, &tradingview.TradingViewSource{}, p)
	require.True(t, datasource.AcceptsQualifiedSymbols(p))

	_, err = datasource.NewProvider(models.MSourceConfig{Name: "x", Type: "bloomberg"}, 4, net, log)
	var cfgErr *helpers.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	log := quiet()
	net := network.NewAsyncNetworkManager(models.MNetworkConfig{}, log)

	_, err := datasource.BuildRegistry([]models.MSourceConfig{
		{Name: "y", Type: "yahoo"},
		{Name: "y", Type: "alphavantage"},
	}, 2, net, log)
	require.Error(t, err)

	r, err := datasource.BuildRegistry([]models.MSourceConfig{
		{Name: "y", Type: "yahoo"},
		{Name: "av", Type: "alphavantage"},
	}, 2, net, log)
	require.NoError(t, err)
	require.Len(t, r.All(), 2)
}
