package alphavantage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"

	"github.com/stretchr/testify/require"
)

const globalQuote = `{"Global Quote":{"01. symbol":"MSFT","02. open":"380.00","05. price":"378.8500","06. volume":"23456700","09. change":"-1.2300","10. change percent":"-0.3200%"}}`

const intradaySeries = `{
  "Meta Data": {"1. Information": "Intraday (5min)"},
  "Time Series (5min)": {
    "2024-03-01 15:55:00": {"1. open": "1", "4. close": "101.5"},
    "2024-03-01 15:50:00": {"1. open": "1", "4. close": "100.25"},
    "2024-03-01 16:00:00": {"1. open": "1", "4. close": "n/a"}
  }
}`

func newTestSource(t *testing.T, handler http.HandlerFunc, apiKey string) *AlphaVantageSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewLoggerWithWriter(io.Discard, "ERROR", "alphavantage")
	net := network.NewAsyncNetworkManager(models.MNetworkConfig{RequestTimeout: 5}, log)
	return NewAlphaVantageSource(models.MSourceConfig{Name: "alphavantage", Type: "alphavantage", APIKey: apiKey, BaseURL: srv.URL}, 2, net, log)
}

func TestFetchQuotes_ParsesGlobalQuote(t *testing.T) {
	t.Parallel()

	// Arrange
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "GLOBAL_QUOTE" || q.Get("apikey") != "live" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch q.Get("symbol") {
		case "MSFT":
			_, _ = w.Write([]byte(globalQuote))
		case "LIMIT":
			_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
		default:
			_, _ = w.Write([]byte(`{"Global Quote":{}}`))
		}
	}, "live")

	// Act
	quotes := src.FetchQuotes(t.Context(), []string{"MSFT", "LIMIT", "NOPE"})

	// Assert
	require.Len(t, quotes, 1)
	q := quotes[0]
	require.Equal(t, "MSFT", q.Symbol)
	require.Equal(t, "MSFT", q.Name)
	require.Equal(t, "378.85", q.Price)
	require.Equal(t, "-1.23", q.Change)
	require.Equal(t, "-0.32", q.ChangePercent)
	require.Equal(t, "23456700", q.Volume)
}

func TestFetchCharts_IntradayAscending(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "5min" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(intradaySeries))
	}, "live")

	charts := src.FetchCharts(t.Context(), []string{"AAPL"}, models.DefaultChartWindow())

	series := charts["AAPL"]
	require.Len(t, series, 2)
	require.True(t, series.IsAscending())
	require.Equal(t, 100.25, series[0].Close)
	require.Equal(t, int64(300), series[1].Time-series[0].Time)
	// 15:50 EST is 20:50 UTC.
	require.Equal(t, int64(1709326200), series[0].Time)
}

func TestDemoMode(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}, "demo")

	require.Len(t, src.FetchQuotes(t.Context(), []string{"AAPL"}), 6)
	require.Len(t, src.FetchCharts(t.Context(), []string{"AAPL"}, models.DefaultChartWindow()), 1)

	info := src.Describe()
	require.Equal(t, models.ProviderDemo, info.Status)
	require.Equal(t, "https://www.alphavantage.co/support/#api-key", info.ReferenceURL)
}

func TestSelfTest_RejectsInformationMessage(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Information":"The **demo** API key is for demo purposes only."}`))
	}, "live")

	res, err := src.SelfTest(t.Context())

	require.Error(t, err)
	require.False(t, res.OK)
	require.Contains(t, res.Detail, "demo purposes")
}

func TestSelfTest_OK(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Meta Data":{},"Time Series (Daily)":{"2024-03-01":{"4. close":"180.0"}}}`))
	}, "live")

	res, err := src.SelfTest(t.Context())

	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, models.ProviderLive, src.Describe().Status)
}

func TestSelfTest_DemoKeyReportsDemoDataset(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "demo"} {
		// Arrange
		var hits atomic.Int64
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }, key)

		// Act
		res, err := src.SelfTest(t.Context())

		// Assert
		require.NoError(t, err, key)
		require.True(t, res.OK, key)
		require.Equal(t, "demo dataset", res.Detail)
		require.Zero(t, hits.Load())
		require.Equal(t, models.ProviderDemo, src.Describe().Status)
	}
}
