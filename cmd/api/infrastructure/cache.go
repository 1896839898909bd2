package infrastructure

import (
	"context"
	"fmt"

	"github.com/otikanelson/Darb-Networks-sub001/internal/config"
	redisclient "github.com/otikanelson/Darb-Networks-sub001/pkg/redis"

	"go.uber.org/zap"
)

// NewRedisClient connects to the Redis instance backing the user cache and rate limiter.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
