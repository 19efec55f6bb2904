// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the server. Serving status follows the database connection.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name reported next to the overall
// ("") status.
const ServiceName = "taskkeeper.TaskService"

const defaultProbeInterval = 10 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address  string
	logger   logging.Logger
	db       Pinger
	interval time.Duration
	health   *health.Server
}

func NewHealthServer(address string, l logging.Logger, db Pinger) *HealthServer {
	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_health"),
		db:       db,
		interval: defaultProbeInterval,
		health:   health.NewServer(),
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC health server", "address", s.address)
	return s.serve(ctx, listen)
}

func (s *HealthServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.probeLoop(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}

func (s *HealthServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *HealthServer) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.interval/2)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(pingCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
