package grpc_control

import (
	"context"
	"fmt"
	"net"
	"sync"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server hosts the control service and the standard health service.
type Server struct {
	Logger *logger.Logger
	grpc   *grpc.Server
	health *health.Server
	wg     sync.WaitGroup
	addr   net.Addr
}

func NewServer(svc ControlServer, log *logger.Logger) *Server {
	s := &Server{
		Logger: log,
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
	}
	RegisterControlServer(s.grpc, svc)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// -----------------------------------------------------------------------------

// Start listens on host:port and serves in the background.
func (s *Server) Start(host string, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return s.Serve(lis)
}

// Serve uses an existing listener, e.g. a bufconn in tests.
func (s *Server) Serve(lis net.Listener) error {
	s.addr = lis.Addr()
	s.Logger.Info("Starting gRPC Control Server on %s", lis.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.grpc.Serve(lis); err != nil {
			s.Logger.Error("gRPC server stopped: %v", err)
		}
	}()
	return nil
}

// Stop drains in-flight RPCs, giving up when ctx expires.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	s.wg.Wait()
}

// HealthSink returns a snapshot sink that keeps the health status in line
// with the dashboard.
func (s *Server) HealthSink() *HealthSink {
	return &HealthSink{Health: s.health}
}

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

var _ interfaces.ISnapshotSink = (*HealthSink)(nil)

// HealthSink reports NOT_SERVING while the latest snapshot is an error.
type HealthSink struct {
	Health *health.Server
}

func (h *HealthSink) Name() string {
	return "grpc-health"
}

func (h *HealthSink) Publish(_ context.Context, snap models.MSnapshot) error {
	st := healthpb.HealthCheckResponse_SERVING
	if snap.Status == models.StatusError {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.Health.SetServingStatus(ServiceName, st)
	h.Health.SetServingStatus("", st)
	return nil
}
