// Command selftest runs every configured provider's diagnostic request once
// and prints the results. It exits non-zero when a live provider fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"market-dashboard/src/config"
	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(conf.LogLevel, "SelfTest")
	networkManager := network.NewAsyncNetworkManager(conf.Network, appLogger.Named("Network"))
	registry, err := datasource.BuildRegistry(conf.Providers.Sources, conf.Refresh.ChartConcurrency, networkManager, appLogger)
	if err != nil {
		fmt.Printf("Error building providers: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	modes := make(map[string]models.ProviderMode)
	for _, info := range registry.DescribeAll() {
		modes[info.Name] = info.Status
	}

	failed := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tMODE\tOK\tLATENCY\tDETAIL")
	for _, res := range registry.SelfTestAll(ctx) {
		mode := modes[res.Provider]
		if !res.OK && mode == models.ProviderLive {
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", res.Provider, mode, res.OK, res.Latency.Round(time.Millisecond), res.Detail)
	}
	_ = w.Flush()

	if failed > 0 {
		fmt.Printf("%d live provider(s) failed\n", failed)
		os.Exit(1)
	}
}
