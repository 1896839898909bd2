package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otikanelson/Darb-Networks-sub001/cmd/api/infrastructure"
	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/cache"
	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/db/postgres"
	ginhandler "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/gin/handler"
	grpcadapter "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc"
	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc/middleware"
	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/repository/cached"
	"github.com/otikanelson/Darb-Networks-sub001/internal/config"
	"github.com/otikanelson/Darb-Networks-sub001/internal/usecase/user"
	redisclient "github.com/otikanelson/Darb-Networks-sub001/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.UserUsecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
	Health      *grpcadapter.HealthService
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	userCache := cache.NewRedisUserCache(
		rdb.Client,
		time.Duration(cfg.Redis.CacheTTL)*time.Second,
		l,
	)

	dbRepo := postgres.NewUserRepoPG(db, l)
	repo := cached.NewUserRepository(dbRepo, userCache, l)

	userUC := user.New(repo, l, user.WithBcryptCost(cfg.Security.BcryptCost))

	rateLimiter := middleware.NewRateLimiter(
		rdb.Client,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
			TrustProxyHeaders: cfg.RateLimit.TrustProxyHeaders,
		},
		l,
	)

	health := grpcadapter.NewHealthService(map[string]grpcadapter.Checker{
		"database": grpcadapter.CheckerFunc(func(ctx context.Context) error {
			return infrastructure.PingDatabase(ctx, db)
		}),
		"redis": rdb,
	}, 2*time.Second, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		GinHandler:  ginhandler.NewUserHandler(userUC, l),
		Health:      health,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
