package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-dashboard/src/aggregator"
	"market-dashboard/src/config"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/symbols"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)
	errorHandler := helpers.NewErrorHandler(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	store, err := setupStore(ctx, conf, appLogger)
	if err != nil {
		errorHandler.Handle(err, "storage setup")
		appLogger.Critical("Failed to initialise storage")
	}
	mirror := setupRedis(ctx, conf, appLogger)

	// 2. Providers
	networkManager := network.NewAsyncNetworkManager(conf.Network, appLogger.Named("Network"))
	registry, primary, alternate, err := setupProviders(conf, networkManager, appLogger)
	if err != nil {
		errorHandler.Handle(err, "provider setup")
		appLogger.Critical("Failed to build providers")
	}

	// 3. Controller
	watchList := loadWatchList(ctx, conf, store, appLogger)
	sinks := []interfaces.ISnapshotSink{store}
	if mirror != nil {
		sinks = append(sinks, mirror)
	}

	mapper := symbols.NewMapper(conf.SymbolMap)
	controller := aggregator.NewController(aggregator.Options{
		Primary:      primary,
		Alternate:    alternate,
		Mapper:       mapper,
		Sinks:        sinks,
		Sessions:     utils.NewMarketScheduler(watchList, appLogger.Named("MarketScheduler")),
		Interval:     time.Duration(conf.Refresh.IntervalSeconds) * time.Second,
		FanOutCap:    conf.Refresh.ChartFanOutCap,
		ChartTimeout: time.Duration(conf.Refresh.ChartTimeoutSeconds) * time.Second,
		Window: models.MChartWindow{
			Range:    models.DefaultChartRange,
			Interval: models.DefaultChartInterval,
			Points:   utils.IntOr(conf.Refresh.SparklinePoints, models.DefaultChartPoints),
		},
		UseAlternate: conf.Refresh.UseAlternate,
		Logger:       appLogger.Named("Controller"),
	})

	// 4. Servers
	running, err := startServers(conf, controller, registry, store, mapper, appLogger)
	if err != nil {
		errorHandler.Handle(err, "server startup")
		appLogger.Critical("Failed to start servers")
	}
	appLogger.Info("Dashboard listening on %s (primary=%s alternate=%s)",
		running.http.Addr(), conf.Providers.Primary, conf.Providers.Alternate)

	if err := controller.Start(watchList); err != nil {
		errorHandler.Handle(err, "controller start")
		appLogger.Critical("Failed to start refresh loop")
	}

	// 5. Wait for shutdown
	<-ctx.Done()
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	controller.Stop()
	running.stop(shutdownCtx)
	if mirror != nil {
		errorHandler.Handle(mirror.Close(), "redis close")
	}
	errorHandler.Handle(store.Close(), "storage close")
	appLogger.Info("Bye")
}
