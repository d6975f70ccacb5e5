package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported next to "".
const ServiceName = "nodalcv"

// GRPCServer exposes readiness over the standard grpc.health.v1 protocol.
type GRPCServer struct {
	svc      ReadinessUseCase
	health   *grpchealth.Server
	server   *grpc.Server
	interval time.Duration
}

func NewGRPCServer(svc ReadinessUseCase, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := grpchealth.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &GRPCServer{svc: svc, health: hs, server: srv, interval: interval}
}

// Refresh runs the checkers once and publishes the resulting status.
func (g *GRPCServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := g.svc.Ready(ctx); err != nil {
		slog.Warn("readiness check failed", "err", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve refreshes the status periodically and serves on lis until ctx ends.
func (g *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	g.Refresh(ctx)
	go func() {
		t := time.NewTicker(g.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				g.health.Shutdown()
				g.server.GracefulStop()
				return
			case <-t.C:
				g.Refresh(ctx)
			}
		}
	}()
	return g.server.Serve(lis)
}
