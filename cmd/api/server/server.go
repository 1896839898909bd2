package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/otikanelson/Darb-Networks-sub001/cmd/api/di"
	grpcadapter "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc"
	"github.com/otikanelson/Darb-Networks-sub001/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const (
	// healthInterval is how often dependency health is refreshed.
	healthInterval = 10 * time.Second
	// defaultShutdownTimeout applies when the config leaves the timeout unset.
	defaultShutdownTimeout = 5 * time.Second
)

// Server holds the gRPC and Gin servers
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Gin    *http.Server
	Health *grpcadapter.HealthService

	stopOnce sync.Once
	stopErr  error
}

// New creates a new server instance from the wired container
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		GRPC:   SetupGRPC(c.Health, c.RateLimiter),
		Gin:    SetupGinServer(c.GinHandler, c.RateLimiter, cfg.Logger.ServiceName, httpAddress(cfg), l),
		Health: c.Health,
	}
}

// Start serves gRPC and HTTP until one of them fails or ctx is done.
// Either way both servers are stopped before Start returns.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress(s.Config), err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Health.Watch(gctx, healthInterval)
		return nil
	})

	// A failing server cancels gctx; the survivor has to be stopped for Wait to return.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", lis.Addr().String()))
		if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("Gin REST API running", zap.String("address", s.Gin.Addr))
		if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown drains both servers. Only the first call does any work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.stopErr = s.shutdown(ctx)
	})
	return s.stopErr
}

func (s *Server) shutdown(ctx context.Context) error {
	if s.Health != nil {
		s.Health.Shutdown()
	}

	var errs []error
	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
		}
	}

	return errors.Join(errs...)
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.Config.App.ShutdownTimeoutSeconds > 0 {
		return time.Duration(s.Config.App.ShutdownTimeoutSeconds) * time.Second
	}
	return defaultShutdownTimeout
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
