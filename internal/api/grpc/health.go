// Package grpc serves the standard gRPC health protocol so orchestrators can
// probe the service and its dependencies.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"toolrent-backend/internal/api/grpc/interceptor"
	"toolrent-backend/internal/logger"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "toolrent.RentalService"

// Check probes one dependency. A nil error means healthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// NewServer builds a gRPC server with health and reflection registered.
// Every service starts NOT_SERVING until the first probe round passes.
func NewServer() (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor().Unary()),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s, hs
}

type HealthUpdater struct {
	health   *health.Server
	checks   []Check
	interval time.Duration
	timeout  time.Duration
}

func NewHealthUpdater(hs *health.Server, interval time.Duration, checks ...Check) *HealthUpdater {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthUpdater{health: hs, checks: checks, interval: interval, timeout: 2 * time.Second}
}

// Run probes on every tick until ctx is done, then marks everything NOT_SERVING.
func (u *HealthUpdater) Run(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	u.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			u.health.Shutdown()
			return
		case <-ticker.C:
			u.Probe(ctx)
		}
	}
}

// Probe runs all checks once and publishes the result.
func (u *HealthUpdater) Probe(ctx context.Context) bool {
	healthy := true
	for _, c := range u.checks {
		probeCtx, cancel := context.WithTimeout(ctx, u.timeout)
		err := c.Probe(probeCtx)
		cancel()
		if err != nil {
			healthy = false
			logger.Warn("Health check failed", "check", c.Name, "error", err)
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	u.health.SetServingStatus("", status)
	u.health.SetServingStatus(ServiceName, status)
	return healthy
}
