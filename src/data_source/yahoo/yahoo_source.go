package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"market-dashboard/src/data_source/shared"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// DefaultBaseURL is the vendor host; the dev server exposes it under /yapi.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

type YahooFinanceSource struct {
	*shared.DemoDataset
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
	concurrency  int
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(sourceCfg models.MSourceConfig, concurrency int, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	base := strings.TrimRight(sourceCfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &YahooFinanceSource{
		DemoDataset:  shared.NewDemoDataset(),
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      base,
		concurrency:  utils.IntOr(concurrency, utils.DefaultChartConcurrency),
	}
}

// -----------------------------------------------------------------------------

// Describe: Yahoo needs no key, so the adapter is always live.
func (s *YahooFinanceSource) Describe() models.MProviderInfo {
	return models.MProviderInfo{
		Name:         s.Name(),
		Status:       models.ProviderLive,
		Message:      "Using live Yahoo Finance API",
		ReferenceURL: "https://finance.yahoo.com/",
	}
}

// -----------------------------------------------------------------------------

type YahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			ShortName                  string   `json:"shortName"`
			LongName                   string   `json:"longName"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketChange        *float64 `json:"regularMarketChange"`
			RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume        *float64 `json:"regularMarketVolume"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// -----------------------------------------------------------------------------

// FetchQuotes issues one batched v7 quote request for all symbols.
func (s *YahooFinanceSource) FetchQuotes(ctx context.Context, symbols []string) []models.MQuote {
	if len(symbols) == 0 {
		return []models.MQuote{}
	}

	respBytes, err := s.Network.Get(ctx, s.baseURL+"/v7/finance/quote", map[string]string{
		"symbols": strings.Join(symbols, ","),
	}, nil)
	if err != nil {
		s.Logger.Info("Yahoo quote batch failed: %v", err)
		return []models.MQuote{}
	}

	quotes, err := s.parseQuoteResponse(respBytes)
	if err != nil {
		s.Logger.Info("Yahoo quote batch unusable: %v", err)
		return []models.MQuote{}
	}
	s.Logger.Debug("YahooFinance: %d/%d quotes", len(quotes), len(symbols))
	return quotes
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseQuoteResponse(data []byte) ([]models.MQuote, error) {
	var resp YahooQuoteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.QuoteResponse.Error.Code, resp.QuoteResponse.Error.Description)
	}

	quotes := make([]models.MQuote, 0, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		if r.Symbol == "" || r.RegularMarketPrice == nil || r.RegularMarketChange == nil || r.RegularMarketChangePercent == nil {
			s.Logger.Debug("Skipping incomplete Yahoo quote %q", r.Symbol)
			continue
		}
		volume := 0.0
		if r.RegularMarketVolume != nil {
			volume = *r.RegularMarketVolume
		}
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		q, ok := shared.BuildQuote(r.Symbol, name, *r.RegularMarketPrice, *r.RegularMarketChange, *r.RegularMarketChangePercent, volume)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) FetchCharts(ctx context.Context, symbols []string, window models.MChartWindow) map[string]models.MChartSeries {
	return shared.FanOutCharts(ctx, symbols, s.concurrency, window, s.Logger, func(ctx context.Context, symbol string) (models.MChartSeries, error) {
		return s.fetchSymbolChart(ctx, symbol, window)
	})
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) fetchSymbolChart(ctx context.Context, symbol string, window models.MChartWindow) (models.MChartSeries, error) {
	params := map[string]string{
		"range":          orDefault(window.Range, models.DefaultChartRange),
		"interval":       orDefault(window.Interval, models.DefaultChartInterval),
		"includePrePost": "false",
	}

	respBytes, err := s.Network.Get(ctx, s.baseURL+"/v8/finance/chart/"+url.PathEscape(symbol), params, nil)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}
	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				DataGranularity    string  `json:"dataGranularity"`
				Range              string  `json:"range"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"` // nil for empty bars
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) (models.MChartSeries, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data in response for %s", symbol)
	}

	bars := result.Indicators.Quote[0]
	series := make(models.MChartSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closeVal := at(bars.Close, i)
		if closeVal == nil || *closeVal <= 0 {
			continue
		}
		series = append(series, models.MCandlePoint{
			Time:   ts,
			Close:  *closeVal,
			Open:   at(bars.Open, i),
			High:   at(bars.High, i),
			Low:    at(bars.Low, i),
			Volume: at(bars.Volume, i),
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no valid data points for %s", symbol)
	}
	s.Logger.Debug("Fetched %s: %d valid points [%d -> %d]", symbol, len(series), series[0].Time, series[len(series)-1].Time)
	return series, nil
}

// -----------------------------------------------------------------------------

// SelfTest fetches the AAPL chart.
func (s *YahooFinanceSource) SelfTest(ctx context.Context) (*models.MSelfTestResult, error) {
	result := &models.MSelfTestResult{Provider: s.Name(), CheckedAt: time.Now()}

	start := time.Now()
	series, err := s.fetchSymbolChart(ctx, "AAPL", models.DefaultChartWindow())
	result.Latency = time.Since(start)
	if err != nil {
		result.Detail = err.Error()
		return result, helpers.NewProviderError(s.Name(), "self-test failed", err)
	}

	result.OK = true
	result.Detail = fmt.Sprintf("AAPL chart, %d points", len(series))
	return result, nil
}

// -----------------------------------------------------------------------------

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// -----------------------------------------------------------------------------

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
