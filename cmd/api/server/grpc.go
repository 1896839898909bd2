package server

import (
	grpcadapter "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc"
	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc/middleware"
	"github.com/otikanelson/Darb-Networks-sub001/pkg/logger"

	"google.golang.org/grpc"
)

// SetupGRPC creates the gRPC server with request ID and rate limit interceptors
// and registers the health service on it.
func SetupGRPC(health *grpcadapter.HealthService, rateLimiter *middleware.RateLimiter) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	health.Register(grpcServer)

	return grpcServer
}
