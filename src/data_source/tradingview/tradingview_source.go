// Package tradingview adapts the TradingView scanner endpoint. It serves the
// alternate family, so it takes exchange-qualified symbols as-is.
package tradingview

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"market-dashboard/src/data_source/shared"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/symbols"
	"market-dashboard/src/utils"
)

// DefaultBaseURL is the scanner host; the dev server exposes it under /tvapi.
const DefaultBaseURL = "https://scanner.tradingview.com"

var quoteColumns = []string{
	"name", "description", "close", "change", "change_abs",
	"volume", "market_cap_basic", "sector", "country",
}

var chartColumns = []string{"close", "high", "low", "open", "volume", "time"}

type TradingViewSource struct {
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
	concurrency  int
}

// -----------------------------------------------------------------------------

func NewTradingViewSource(sourceCfg models.MSourceConfig, concurrency int, netMgr interfaces.INetworkManager, log *logger.Logger) *TradingViewSource {
	base := strings.TrimRight(sourceCfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &TradingViewSource{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      base,
		concurrency:  utils.IntOr(concurrency, utils.DefaultChartConcurrency),
	}
}

// -----------------------------------------------------------------------------

func (s *TradingViewSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

// AcceptsQualifiedSymbols reports that tickers are sent as EXCHANGE:SYMBOL.
func (s *TradingViewSource) AcceptsQualifiedSymbols() bool {
	return true
}

// -----------------------------------------------------------------------------

func (s *TradingViewSource) Describe() models.MProviderInfo {
	return models.MProviderInfo{
		Name:         s.Name(),
		Status:       models.ProviderLive,
		Message:      "Using live TradingView API",
		ReferenceURL: "https://www.tradingview.com/",
	}
}

// -----------------------------------------------------------------------------

type scanRequest struct {
	Symbols scanSymbols `json:"symbols"`
	Columns []string    `json:"columns"`
	Range   [2]int      `json:"range"`
	Sort    []scanSort  `json:"sort,omitempty"`
}

type scanSymbols struct {
	Tickers []string `json:"tickers"`
	Query   struct {
		Types []string `json:"types"`
	} `json:"query"`
}

type scanSort struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type scanResponse struct {
	TotalCount int `json:"totalCount"`
	Data       []struct {
		S string        `json:"s"`
		D []interface{} `json:"d"`
	} `json:"data"`
}

// -----------------------------------------------------------------------------

func (s *TradingViewSource) scan(ctx context.Context, req scanRequest) (*scanResponse, error) {
	if req.Symbols.Query.Types == nil {
		req.Symbols.Query.Types = []string{}
	}
	body, err := s.Network.PostJSON(ctx, s.baseURL+"/global/scan", req, nil)
	if err != nil {
		return nil, err
	}
	var resp scanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	return &resp, nil
}

// -----------------------------------------------------------------------------

// FetchQuotes scans all tickers in one request. Rows are keyed by the "s"
// field, so the vendor's ordering does not matter.
func (s *TradingViewSource) FetchQuotes(ctx context.Context, tickers []string) []models.MQuote {
	if len(tickers) == 0 {
		return []models.MQuote{}
	}

	req := scanRequest{Columns: quoteColumns, Range: [2]int{0, len(tickers)}}
	req.Symbols.Tickers = tickers
	resp, err := s.scan(ctx, req)
	if err != nil {
		s.Logger.Info("TradingView scan failed: %v", err)
		return []models.MQuote{}
	}

	rows := make(map[string][]interface{}, len(resp.Data))
	for _, row := range resp.Data {
		rows[row.S] = row.D
	}

	quotes := make([]models.MQuote, 0, len(tickers))
	for _, ticker := range tickers {
		d, ok := rows[ticker]
		if !ok {
			continue
		}
		q, ok := parseQuoteRow(ticker, d)
		if !ok {
			s.Logger.Debug("Dropping malformed scan row for %s", ticker)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// -----------------------------------------------------------------------------

func parseQuoteRow(ticker string, d []interface{}) (models.MQuote, bool) {
	if len(d) < len(quoteColumns) {
		return models.MQuote{}, false
	}
	price, ok1 := shared.JSONNumber(d[2])
	pct, ok2 := shared.JSONNumber(d[3])
	change, ok3 := shared.JSONNumber(d[4])
	if !ok1 || !ok2 || !ok3 {
		return models.MQuote{}, false
	}
	volume, _ := shared.JSONNumber(d[5])

	name := stringAt(d, 1)
	if name == "" {
		_, name = symbols.Split(ticker)
	}

	q, ok := shared.BuildQuote(ticker, name, price, change, pct, volume)
	if !ok {
		return q, false
	}
	if mc, ok := shared.JSONNumber(d[6]); ok {
		q.MarketCap, _ = shared.FormatFloat(mc)
	}
	q.Sector = stringAt(d, 7)
	q.Country = stringAt(d, 8)
	return q, true
}

// -----------------------------------------------------------------------------

func stringAt(d []interface{}, i int) string {
	if i >= len(d) {
		return ""
	}
	s, _ := d[i].(string)
	return s
}

// -----------------------------------------------------------------------------

func (s *TradingViewSource) FetchCharts(ctx context.Context, tickers []string, window models.MChartWindow) map[string]models.MChartSeries {
	points := utils.IntOr(window.Points, models.DefaultChartPoints)
	return shared.FanOutCharts(ctx, tickers, s.concurrency, window, s.Logger, func(ctx context.Context, ticker string) (models.MChartSeries, error) {
		return s.fetchBars(ctx, ticker, points)
	})
}

// -----------------------------------------------------------------------------

func (s *TradingViewSource) fetchBars(ctx context.Context, ticker string, points int) (models.MChartSeries, error) {
	req := scanRequest{
		Columns: chartColumns,
		Range:   [2]int{0, points},
		Sort:    []scanSort{{SortBy: "time", SortOrder: "desc"}},
	}
	req.Symbols.Tickers = []string{ticker}

	resp, err := s.scan(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no bars for %s", ticker)
	}

	series := make(models.MChartSeries, 0, len(resp.Data))
	for _, row := range resp.Data {
		if p, ok := parseBarRow(row.D); ok {
			series = append(series, p)
		}
	}
	// Rows arrive newest first.
	slices.Reverse(series)
	return series, nil
}

// -----------------------------------------------------------------------------

func parseBarRow(d []interface{}) (models.MCandlePoint, bool) {
	if len(d) < len(chartColumns) {
		return models.MCandlePoint{}, false
	}
	closeVal, ok := shared.JSONNumber(d[0])
	if !ok {
		return models.MCandlePoint{}, false
	}
	ts, ok := shared.JSONNumber(d[5])
	if !ok {
		return models.MCandlePoint{}, false
	}
	return models.MCandlePoint{
		Time:   int64(ts),
		Close:  closeVal,
		High:   optional(d[1]),
		Low:    optional(d[2]),
		Open:   optional(d[3]),
		Volume: optional(d[4]),
	}, true
}

// -----------------------------------------------------------------------------

func optional(v interface{}) *float64 {
	f, ok := shared.JSONNumber(v)
	if !ok {
		return nil
	}
	return &f
}

// -----------------------------------------------------------------------------

func (s *TradingViewSource) SelfTest(ctx context.Context) (*models.MSelfTestResult, error) {
	result := &models.MSelfTestResult{Provider: s.Name(), CheckedAt: time.Now()}

	start := time.Now()
	quotes := s.FetchQuotes(ctx, []string{"NASDAQ:AAPL"})
	result.Latency = time.Since(start)
	if len(quotes) == 0 {
		result.Detail = "scan for NASDAQ:AAPL returned no rows"
		return result, helpers.NewProviderError(s.Name(), "self-test failed", nil)
	}

	result.OK = true
	result.Detail = "NASDAQ:AAPL " + quotes[0].Price
	return result, nil
}
