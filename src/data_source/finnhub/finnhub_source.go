package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"market-dashboard/src/data_source/shared"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	placeholderKey   = "YOUR_FINNHUB_API_KEY"
	candleLookback   = 24 * time.Hour
	candleResolution = "5"
)

// FinnhubSource serves quotes and 5-minute candles from finnhub.io.
type FinnhubSource struct {
	*shared.DemoDataset
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
	concurrency  int
	now          func() time.Time
}

// -----------------------------------------------------------------------------

func NewFinnhubSource(sourceCfg models.MSourceConfig, concurrency int, netMgr interfaces.INetworkManager, log *logger.Logger) *FinnhubSource {
	base := strings.TrimRight(sourceCfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &FinnhubSource{
		DemoDataset:  shared.NewDemoDataset(),
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      base,
		concurrency:  utils.IntOr(concurrency, utils.DefaultChartConcurrency),
		now:          time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) isDemo() bool {
	key := strings.TrimSpace(s.SourceConfig.APIKey)
	return key == "" || key == "demo" || key == placeholderKey
}

// -----------------------------------------------------------------------------

// Describe returns the static descriptor
func (s *FinnhubSource) Describe() models.MProviderInfo {
	if s.isDemo() {
		return models.MProviderInfo{
			Name:         s.Name(),
			Status:       models.ProviderDemo,
			Message:      "Using demo data. Get a free API key at finnhub.io",
			ReferenceURL: "https://finnhub.io/register",
		}
	}
	return models.MProviderInfo{
		Name:         s.Name(),
		Status:       models.ProviderLive,
		Message:      "Using live Finnhub API",
		ReferenceURL: "https://finnhub.io/",
	}
}

// -----------------------------------------------------------------------------

type quoteResponse struct {
	Current       *float64 `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	Volume        *float64 `json:"v"`
}

type candleResponse struct {
	Status string     `json:"s"`
	Time   []int64    `json:"t"`
	Close  []*float64 `json:"c"`
	Open   []*float64 `json:"o"`
	High   []*float64 `json:"h"`
	Low    []*float64 `json:"l"`
	Volume []*float64 `json:"v"`
}

// -----------------------------------------------------------------------------

// FetchQuotes queries /quote for each symbol
func (s *FinnhubSource) FetchQuotes(ctx context.Context, symbols []string) []models.MQuote {
	if s.isDemo() {
		s.Logger.Debug("Using demo quotes (no API key)")
		return s.DemoQuotes()
	}
	return shared.FanOutQuotes(ctx, symbols, s.concurrency, s.Logger, s.fetchQuote)
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) fetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	body, err := s.Network.Get(ctx, s.baseURL+"/quote", map[string]string{
		"symbol": symbol,
		"token":  s.SourceConfig.APIKey,
	}, nil)
	if err != nil {
		return models.MQuote{}, err
	}
	return parseQuote(symbol, body)
}

// -----------------------------------------------------------------------------

func parseQuote(symbol string, body []byte) (models.MQuote, error) {
	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MQuote{}, fmt.Errorf("json unmarshal failed: %w", err)
	}
	// Unknown symbols come back as c=0 with null d/dp.
	if resp.Current == nil || *resp.Current <= 0 || resp.Change == nil || resp.ChangePercent == nil {
		return models.MQuote{}, fmt.Errorf("incomplete quote for %s", symbol)
	}

	volume := 0.0
	if resp.Volume != nil {
		volume = *resp.Volume
	}

	q, ok := shared.BuildQuote(symbol, symbol, *resp.Current, *resp.Change, *resp.ChangePercent, volume)
	if !ok {
		return models.MQuote{}, fmt.Errorf("non-finite quote for %s", symbol)
	}
	return q, nil
}

// -----------------------------------------------------------------------------

// FetchCharts queries /stock/candle for the last 24h of 5-minute bars
func (s *FinnhubSource) FetchCharts(ctx context.Context, symbols []string, window models.MChartWindow) map[string]models.MChartSeries {
	if s.isDemo() {
		return s.DemoCharts(symbols, window)
	}
	return shared.FanOutCharts(ctx, symbols, s.concurrency, window, s.Logger, s.fetchCandles)
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) fetchCandles(ctx context.Context, symbol string) (models.MChartSeries, error) {
	to := s.now()
	from := to.Add(-candleLookback)
	body, err := s.Network.Get(ctx, s.baseURL+"/stock/candle", map[string]string{
		"symbol":     symbol,
		"resolution": candleResolution,
		"from":       strconv.FormatInt(from.Unix(), 10),
		"to":         strconv.FormatInt(to.Unix(), 10),
		"token":      s.SourceConfig.APIKey,
	}, nil)
	if err != nil {
		return nil, err
	}
	return parseCandles(symbol, body)
}

// -----------------------------------------------------------------------------

func parseCandles(symbol string, body []byte) (models.MChartSeries, error) {
	var resp candleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if resp.Status != "ok" || len(resp.Time) == 0 {
		return nil, fmt.Errorf("no candles for %s (status %q)", symbol, resp.Status)
	}

	series := make(models.MChartSeries, 0, len(resp.Time))
	for i, ts := range resp.Time {
		closeVal := at(resp.Close, i)
		if closeVal == nil {
			continue
		}
		series = append(series, models.MCandlePoint{
			Time:   ts,
			Close:  *closeVal,
			Open:   at(resp.Open, i),
			High:   at(resp.High, i),
			Low:    at(resp.Low, i),
			Volume: at(resp.Volume, i),
		})
	}
	return series, nil
}

// -----------------------------------------------------------------------------

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// -----------------------------------------------------------------------------

// SelfTest requests a quote for AAPL
func (s *FinnhubSource) SelfTest(ctx context.Context) (*models.MSelfTestResult, error) {
	result := &models.MSelfTestResult{Provider: s.Name(), CheckedAt: s.now()}
	if s.isDemo() {
		result.OK = true
		result.Detail = "demo dataset"
		return result, nil
	}

	start := time.Now()
	q, err := s.fetchQuote(ctx, "AAPL")
	result.Latency = time.Since(start)
	if err != nil {
		result.Detail = err.Error()
		return result, helpers.NewProviderError(s.Name(), "self-test failed", err)
	}

	result.OK = true
	result.Detail = "AAPL " + q.Price
	return result, nil
}
