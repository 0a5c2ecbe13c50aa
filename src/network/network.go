package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

const maxResponseBytes = 8 << 20

// AsyncNetworkManager issues vendor requests through an optional rotating proxy.
// A request is attempted once; blocked responses rotate the proxy for the next call.
type AsyncNetworkManager struct {
	Config       models.MNetworkConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg models.MNetworkConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Enabled {
		proxies = cfg.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Resolved per request so rotation needs no client rebuild.
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		if !nm.ProxyManager.HasProxies() {
			return http.ProxyFromEnvironment(req)
		}
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err != nil || proxyStr == "" {
			return nil, err
		}
		return url.Parse(proxyStr)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   utils.SecondsOr(nm.Config.RequestTimeout, utils.DefaultRequestTimeout),
	}
}

// -----------------------------------------------------------------------------

// Get performs a single GET request.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string, headers map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewNetworkError("invalid url "+urlStr, 0, err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, helpers.NewNetworkError("build request", 0, err)
	}
	return nm.do(req, headers)
}

// -----------------------------------------------------------------------------

// PostJSON marshals body and performs a single POST request.
func (nm *AsyncNetworkManager) PostJSON(ctx context.Context, urlStr string, body interface{}, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(payload))
	if err != nil {
		return nil, helpers.NewNetworkError("build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return nm.do(req, headers)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(req *http.Request, headers map[string]string) ([]byte, error) {
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Debug("%s %s failed: %v", req.Method, req.URL.Path, err)
		return nil, helpers.NewNetworkError(req.Method+" "+req.URL.Host, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, helpers.NewNetworkError("read body", resp.StatusCode, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		nm.Logger.Info("Request to %s blocked (%d). Rotating proxy.", req.URL.Host, resp.StatusCode)
		nm.ProxyManager.RotateProxy()
		return nil, helpers.NewNetworkError(fmt.Sprintf("blocked by %s", req.URL.Host), resp.StatusCode, nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, helpers.NewNetworkError(fmt.Sprintf("bad status from %s", req.URL.Host), resp.StatusCode, nil)
	}

	nm.Logger.Debug("%s %s -> %d in %s", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return body, nil
}
