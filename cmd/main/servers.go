package main

import (
	"context"
	"net/http"

	"market-dashboard/src/aggregator"
	"market-dashboard/src/config"
	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/devproxy"
	"market-dashboard/src/diagnostics"
	"market-dashboard/src/grpc_control"
	"market-dashboard/src/logger"
	"market-dashboard/src/server"
	"market-dashboard/src/storage"
	"market-dashboard/src/symbols"
)

// servers groups everything that listens, so shutdown can walk it in order.
type servers struct {
	http        *server.DashboardServer
	grpc        *grpc_control.Server
	diagnostics *diagnostics.Scheduler
}

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(
	conf *config.Config,
	controller *aggregator.Controller,
	registry *datasource.ProviderRegistry,
	store *storage.SQLStore,
	mapper *symbols.Mapper,
	appLogger *logger.Logger,
) (*servers, error) {
	out := &servers{}

	scheduler, err := diagnostics.NewScheduler(conf.Diagnostics, registry, store, appLogger.Named("Diagnostics"))
	if err != nil {
		return nil, err
	}
	out.diagnostics = scheduler

	mounts := map[string]http.Handler{}
	if conf.DevProxy.Enabled {
		proxy, err := devproxy.New(conf.DevProxy.Routes, conf.Network.UserAgent, appLogger.Named("DevProxy"))
		if err != nil {
			return nil, err
		}
		mounts = proxy.Handlers()
	}

	out.http = server.New(server.Options{
		Host:       conf.Host,
		Port:       conf.Port,
		Debug:      logger.ParseLevel(conf.LogLevel) == logger.LevelDebug,
		Controller: controller,
		Providers:  registry,
		Store:      store,
		SelfTests:  scheduler,
		Mapper:     mapper,
		Mounts:     mounts,
		Logger:     appLogger.Named("Server"),
	})
	controller.AddSink(out.http)
	if err := out.http.Start(); err != nil {
		return nil, err
	}

	if conf.GrpcPort > 0 {
		grpcLogger := appLogger.Named("ControlService")
		svc := grpc_control.NewControlService(controller, registry, store, grpcLogger)
		out.grpc = grpc_control.NewServer(svc, grpcLogger)
		controller.AddSink(out.grpc.HealthSink())
		if err := out.grpc.Start(conf.GrpcHost, conf.GrpcPort); err != nil {
			out.stop(context.Background())
			return nil, err
		}
	}

	scheduler.Start()
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *servers) stop(ctx context.Context) {
	if s.diagnostics != nil {
		s.diagnostics.Stop(ctx)
	}
	if s.grpc != nil {
		s.grpc.Stop(ctx)
	}
	if s.http != nil {
		_ = s.http.Stop(ctx)
	}
}
