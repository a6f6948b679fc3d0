package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "storefront.v1.Storefront"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor publishes the reachability of the state backend through the
// standard gRPC health service.
type Monitor struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger
}

func NewMonitor(pinger Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

// Register exposes the health service and reflection on grpcServer.
func (m *Monitor) Register(grpcServer *grpc.Server) {
	healthpb.RegisterHealthServer(grpcServer, m.server)
	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)
}

func (m *Monitor) Server() healthpb.HealthServer {
	return m.server
}

// Check pings the backend once and updates the serving status.
func (m *Monitor) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := m.pinger.Ping(ctx); err != nil {
		m.logger.Warn("storage ping error", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
}

// Run checks the backend every interval until ctx is done, then marks the
// service as shutting down.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			m.server.Shutdown()
			return
		}
	}
}
