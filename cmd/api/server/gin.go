package server

import (
	"net/http"
	"time"

	ginhandler "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/gin/handler"
	ginrouter "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/gin/router"
	grpcmiddleware "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc/middleware"

	"go.uber.org/zap"
)

// SetupGinServer creates the Gin REST API server
func SetupGinServer(
	handler *ginhandler.UserHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	serviceName string,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, serviceName, l)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
