package datasource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"market-dashboard/src/data_source/alphavantage"
	"market-dashboard/src/data_source/finnhub"
	"market-dashboard/src/data_source/tradingview"
	"market-dashboard/src/data_source/yahoo"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// ProviderRegistry holds the configured adapters by name, in registration order.
type ProviderRegistry struct {
	Providers map[string]interfaces.IProvider
	Logger    *logger.Logger
	order     []string
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewProviderRegistry(providers []interfaces.IProvider, log *logger.Logger) *ProviderRegistry {
	r := &ProviderRegistry{
		Providers: make(map[string]interfaces.IProvider),
		Logger:    log,
	}

	for _, p := range providers {
		if err := r.Add(p); err != nil {
			log.Warning("Skipping provider: %v", err)
		}
	}

	return r
}

// -----------------------------------------------------------------------------

// NewProvider builds an adapter from its config entry.
func NewProvider(cfg models.MSourceConfig, concurrency int, netMgr interfaces.INetworkManager, log *logger.Logger) (interfaces.IProvider, error) {
	if cfg.Name == "" {
		cfg.Name = cfg.Type
	}
	named := log.Named(cfg.Name)

	switch strings.ToLower(cfg.Type) {
	case "finnhub":
		return finnhub.NewFinnhubSource(cfg, concurrency, netMgr, named), nil
	case "alphavantage", "alpha_vantage":
		return alphavantage.NewAlphaVantageSource(cfg, concurrency, netMgr, named), nil
	case "yahoo":
		return yahoo.NewYahooFinanceSource(cfg, concurrency, netMgr, named), nil
	case "tradingview":
		return tradingview.NewTradingViewSource(cfg, concurrency, netMgr, named), nil
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unknown provider type %q for %q", cfg.Type, cfg.Name), nil)
	}
}

// -----------------------------------------------------------------------------

// BuildRegistry constructs every configured source. The first bad entry aborts.
func BuildRegistry(sources []models.MSourceConfig, concurrency int, netMgr interfaces.INetworkManager, log *logger.Logger) (*ProviderRegistry, error) {
	r := NewProviderRegistry(nil, log)
	for _, sc := range sources {
		p, err := NewProvider(sc, concurrency, netMgr, log)
		if err != nil {
			return nil, err
		}
		if err := r.Add(p); err != nil {
			return nil, helpers.NewConfigurationError("duplicate provider", err)
		}
	}
	return r, nil
}

// -----------------------------------------------------------------------------

// AcceptsQualifiedSymbols reports whether p takes EXCHANGE:SYMBOL tickers
// instead of mapper output.
func AcceptsQualifiedSymbols(p interfaces.IProvider) bool {
	q, ok := p.(interface{ AcceptsQualifiedSymbols() bool })
	return ok && q.AcceptsQualifiedSymbols()
}

// -----------------------------------------------------------------------------

func (r *ProviderRegistry) Add(p interfaces.IProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.Providers[name]; exists {
		return fmt.Errorf("provider %s already exists", name)
	}

	r.Providers[name] = p
	r.order = append(r.order, name)
	r.Logger.Info("Added provider: %s (%s)", name, p.Describe().Status)
	return nil
}

// -----------------------------------------------------------------------------

func (r *ProviderRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Providers[name]; !exists {
		return fmt.Errorf("provider %s not found", name)
	}

	delete(r.Providers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.Logger.Info("Removed provider: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

func (r *ProviderRegistry) Get(name string) (interfaces.IProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.Providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return p, nil
}

// -----------------------------------------------------------------------------

// All returns the providers in registration order.
func (r *ProviderRegistry) All() []interfaces.IProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]interfaces.IProvider, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.Providers[name])
	}
	return list
}

// -----------------------------------------------------------------------------

func (r *ProviderRegistry) DescribeAll() []models.MProviderInfo {
	providers := r.All()
	out := make([]models.MProviderInfo, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Describe())
	}
	return out
}

// -----------------------------------------------------------------------------

// SelfTestAll runs every provider's self-test concurrently. Results keep
// registration order; a failed test still yields its result.
func (r *ProviderRegistry) SelfTestAll(ctx context.Context) []models.MSelfTestResult {
	providers := r.All()
	results := make([]models.MSelfTestResult, len(providers))
	var wg sync.WaitGroup

	for i, p := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.SelfTest(ctx)
			if res == nil {
				res = &models.MSelfTestResult{Provider: p.Name()}
				if err != nil {
					res.Detail = err.Error()
				}
			}
			if err != nil {
				r.Logger.Info("Self-test failed for %s: %v", p.Name(), err)
			}
			results[i] = *res
		}()
	}
	wg.Wait()
	return results
}
