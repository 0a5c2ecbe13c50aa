package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
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
	DefaultBaseURL = "https://www.alphavantage.co/query"
	intraday       = "5min"
	timeLayout     = "2006-01-02 15:04:05"
)

// AlphaVantageSource reads GLOBAL_QUOTE and TIME_SERIES_INTRADAY.
type AlphaVantageSource struct {
	*shared.DemoDataset
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
	concurrency  int
	exchangeTZ   *time.Location
}

// -----------------------------------------------------------------------------

func NewAlphaVantageSource(sourceCfg models.MSourceConfig, concurrency int, netMgr interfaces.INetworkManager, log *logger.Logger) *AlphaVantageSource {
	base := strings.TrimRight(sourceCfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	// Intraday timestamps are US/Eastern wall-clock.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Warning("America/New_York unavailable, using UTC: %v", err)
		loc = time.UTC
	}

	return &AlphaVantageSource{
		DemoDataset:  shared.NewDemoDataset(),
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      base,
		concurrency:  utils.IntOr(concurrency, utils.DefaultChartConcurrency),
		exchangeTZ:   loc,
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) isDemo() bool {
	key := strings.TrimSpace(s.SourceConfig.APIKey)
	return key == "" || key == "demo"
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) Describe() models.MProviderInfo {
	if s.isDemo() {
		return models.MProviderInfo{
			Name:         s.Name(),
			Status:       models.ProviderDemo,
			Message:      "Using demo data. Get free API key at alphavantage.co",
			ReferenceURL: "https://www.alphavantage.co/support/#api-key",
		}
	}
	return models.MProviderInfo{
		Name:         s.Name(),
		Status:       models.ProviderLive,
		Message:      "Using live Alpha Vantage API",
		ReferenceURL: "https://www.alphavantage.co/",
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) query(ctx context.Context, params map[string]string) (map[string]json.RawMessage, error) {
	params["apikey"] = s.SourceConfig.APIKey
	body, err := s.Network.Get(ctx, s.baseURL, params, nil)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	// Rate limits and bad keys come back as 200 with a message field.
	for _, k := range []string{"Note", "Error Message", "Information"} {
		if raw, ok := envelope[k]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return nil, fmt.Errorf("alpha vantage %s: %s", strings.ToLower(k), msg)
		}
	}
	return envelope, nil
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) FetchQuotes(ctx context.Context, symbols []string) []models.MQuote {
	if s.isDemo() {
		s.Logger.Debug("Using demo data (Alpha Vantage)")
		return s.DemoQuotes()
	}
	return shared.FanOutQuotes(ctx, symbols, s.concurrency, s.Logger, s.fetchQuote)
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) fetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	envelope, err := s.query(ctx, map[string]string{"function": "GLOBAL_QUOTE", "symbol": symbol})
	if err != nil {
		return models.MQuote{}, err
	}
	raw, ok := envelope["Global Quote"]
	if !ok {
		return models.MQuote{}, fmt.Errorf("no Global Quote for %s", symbol)
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.MQuote{}, fmt.Errorf("json unmarshal failed: %w", err)
	}
	sym := fields["01. symbol"]
	if sym == "" {
		return models.MQuote{}, fmt.Errorf("empty Global Quote for %s", symbol)
	}

	q := models.MQuote{Symbol: sym, Name: sym}
	for dst, key := range map[*string]string{
		&q.Price:         "05. price",
		&q.Volume:        "06. volume",
		&q.Change:        "09. change",
		&q.ChangePercent: "10. change percent",
	} {
		v, ok := shared.NormalizeDecimalString(fields[key])
		if !ok {
			return models.MQuote{}, fmt.Errorf("bad %q for %s", key, symbol)
		}
		*dst = v
	}
	return q, nil
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) FetchCharts(ctx context.Context, symbols []string, window models.MChartWindow) map[string]models.MChartSeries {
	if s.isDemo() {
		return s.DemoCharts(symbols, window)
	}
	return shared.FanOutCharts(ctx, symbols, s.concurrency, window, s.Logger, s.fetchIntraday)
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) fetchIntraday(ctx context.Context, symbol string) (models.MChartSeries, error) {
	envelope, err := s.query(ctx, map[string]string{
		"function": "TIME_SERIES_INTRADAY",
		"symbol":   symbol,
		"interval": intraday,
	})
	if err != nil {
		return nil, err
	}
	raw, ok := envelope["Time Series ("+intraday+")"]
	if !ok {
		return nil, fmt.Errorf("no intraday series for %s", symbol)
	}
	return s.parseIntraday(raw)
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) parseIntraday(raw json.RawMessage) (models.MChartSeries, error) {
	var bars map[string]map[string]string
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	stamps := make([]string, 0, len(bars))
	for ts := range bars {
		stamps = append(stamps, ts)
	}
	sort.Strings(stamps)

	series := make(models.MChartSeries, 0, len(stamps))
	for _, ts := range stamps {
		t, err := time.ParseInLocation(timeLayout, ts, s.exchangeTZ)
		if err != nil {
			continue
		}
		closeVal, ok := models.ParseDecimal(bars[ts]["4. close"])
		if !ok {
			continue
		}
		series = append(series, models.MCandlePoint{Time: t.Unix(), Close: closeVal})
	}
	return series, nil
}

// -----------------------------------------------------------------------------

// SelfTest asks for the AAPL daily series, which also validates the key.
func (s *AlphaVantageSource) SelfTest(ctx context.Context) (*models.MSelfTestResult, error) {
	result := &models.MSelfTestResult{Provider: s.Name(), CheckedAt: time.Now()}
	if s.isDemo() {
		result.OK = true
		result.Detail = "demo dataset"
		return result, nil
	}

	start := time.Now()
	envelope, err := s.query(ctx, map[string]string{"function": "TIME_SERIES_DAILY", "symbol": "AAPL"})
	result.Latency = time.Since(start)
	if err != nil {
		result.Detail = err.Error()
		return result, helpers.NewProviderError(s.Name(), "self-test failed", err)
	}
	if _, ok := envelope["Time Series (Daily)"]; !ok {
		result.Detail = "missing daily series"
		return result, helpers.NewProviderError(s.Name(), "self-test failed", nil)
	}

	result.OK = true
	result.Detail = "daily series ok"
	return result, nil
}
