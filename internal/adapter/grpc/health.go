package grpc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserServiceName is the health check name reported for the user account service.
const UserServiceName = "darb.user.v1.UserService"

// Checker pings one backing dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping calls f.
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthService reports SERVING for the user service while every dependency answers.
type HealthService struct {
	server   *health.Server
	checkers map[string]Checker
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	status healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthService creates a health service over the named dependency checkers.
func NewHealthService(checkers map[string]Checker, timeout time.Duration, log *zap.Logger) *HealthService {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(UserServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthService{
		server:   srv,
		checkers: checkers,
		timeout:  timeout,
		log:      log,
		status:   healthpb.HealthCheckResponse_NOT_SERVING,
	}
}

// Register attaches the health service to s.
func (h *HealthService) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Server exposes the underlying health server.
func (h *HealthService) Server() *health.Server {
	return h.server
}

// Refresh pings every dependency and updates the serving status.
func (h *HealthService) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, c := range h.checkers {
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := c.Ping(pingCtx)
		cancel()
		if err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	h.mu.Lock()
	changed := status != h.status
	h.status = status
	h.mu.Unlock()

	if changed {
		h.log.Info("serving status changed", zap.String("status", status.String()))
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(UserServiceName, status)
	return status
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthService) Watch(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING so load balancers drain traffic.
func (h *HealthService) Shutdown() {
	h.server.Shutdown()
}
