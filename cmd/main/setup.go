package main

import (
	"context"
	"time"

	"market-dashboard/src/aggregator"
	"market-dashboard/src/config"
	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/storage"
	"market-dashboard/src/symbols"
)

// -----------------------------------------------------------------------------

// setupStore opens the configured database and applies migrations.
func setupStore(ctx context.Context, conf *config.Config, appLogger *logger.Logger) (*storage.SQLStore, error) {
	store, err := storage.NewStore(conf.Storage, appLogger.Named("Store"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// setupRedis returns nil when the mirror is disabled or unreachable.
func setupRedis(ctx context.Context, conf *config.Config, appLogger *logger.Logger) *storage.RedisMirror {
	if !conf.Redis.Enabled {
		return nil
	}

	mirror := storage.NewRedisMirror(conf.Redis, appLogger.Named("Redis"))
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mirror.Ping(ctx); err != nil {
		appLogger.Warning("Redis mirror disabled: %v", err)
		_ = mirror.Close()
		return nil
	}
	appLogger.Info("Mirroring snapshots to redis at %s", conf.Redis.Addr)
	return mirror
}

// -----------------------------------------------------------------------------

// setupProviders builds every configured adapter and resolves the primary and
// alternate families.
func setupProviders(
	conf *config.Config,
	networkManager interfaces.INetworkManager,
	appLogger *logger.Logger,
) (*datasource.ProviderRegistry, aggregator.Family, *aggregator.Family, error) {
	registry, err := datasource.BuildRegistry(conf.Providers.Sources, conf.Refresh.ChartConcurrency, networkManager, appLogger)
	if err != nil {
		return nil, aggregator.Family{}, nil, err
	}

	primaryProvider, err := registry.Get(conf.Providers.Primary)
	if err != nil {
		return nil, aggregator.Family{}, nil, err
	}
	primary := aggregator.Family{
		Provider:         primaryProvider,
		QualifiedSymbols: datasource.AcceptsQualifiedSymbols(primaryProvider),
	}

	var alternate *aggregator.Family
	if conf.Providers.Alternate != "" {
		altProvider, err := registry.Get(conf.Providers.Alternate)
		if err != nil {
			return nil, aggregator.Family{}, nil, err
		}
		alternate = &aggregator.Family{
			Provider:         altProvider,
			QualifiedSymbols: datasource.AcceptsQualifiedSymbols(altProvider),
		}
	}

	for _, info := range registry.DescribeAll() {
		appLogger.Info("Provider %s: %s (%s)", info.Name, info.Status, info.Message)
	}
	return registry, primary, alternate, nil
}

// -----------------------------------------------------------------------------

// loadWatchList prefers the persisted list, then the configured one, then
// the built-in default.
func loadWatchList(ctx context.Context, conf *config.Config, store interfaces.IStore, appLogger *logger.Logger) []string {
	if store != nil {
		saved, err := store.LoadWatchList(ctx)
		if err != nil {
			appLogger.Warning("Could not restore watch-list: %v", err)
		}
		if len(saved) > 0 {
			appLogger.Info("Restored watch-list with %d symbols", len(saved))
			return saved
		}
	}
	if list := symbols.Normalize(conf.WatchList); len(list) > 0 {
		return list
	}
	return symbols.DefaultWatchList()
}
