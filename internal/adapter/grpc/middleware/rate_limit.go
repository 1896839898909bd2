package middleware

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// KeyPrefix namespaces token buckets in Redis.
const KeyPrefix = "ratelimit:tb:"

// tokenBucket refills at ARGV[1] tokens/s up to ARGV[2] and takes one token per call.
// Returns 1 when the call is allowed.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, math.ceil(capacity / rate) + 1)
return allowed
`)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64 // Refill rate of each bucket
	BurstCapacity     int     // Bucket size
	Enabled           bool
	TrustProxyHeaders bool // Key on x-forwarded-for/x-real-ip; only safe behind a proxy that sets them
}

// RateLimiter is a Redis-backed token bucket shared by the gRPC and HTTP transports.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Config returns the limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}

// Allow takes one token from the bucket identified by key.
// It fails open: a disabled limiter, a missing client or a Redis error all allow the call.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || !rl.config.Enabled || rl.client == nil {
		return true
	}

	now := float64(rl.now().UnixMilli()) / 1000
	allowed, err := tokenBucket.Run(ctx, rl.client, []string{KeyPrefix + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstCapacity,
		now,
	).Int64()
	if err != nil {
		rl.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}

	return allowed == 1
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		clientIP := rl.clientIP(ctx)

		if !rl.Allow(ctx, fmt.Sprintf("%s:%s", info.FullMethod, clientIP)) {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				rl.config.RequestsPerSecond, rl.config.BurstCapacity)
		}

		return handler(ctx, req)
	}
}

// clientIP extracts the client host from the gRPC context. Forwarding headers are
// honored only when the limiter trusts them; otherwise the peer host is used, without its port.
func (rl *RateLimiter) clientIP(ctx context.Context) string {
	if rl != nil && rl.config.TrustProxyHeaders {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
				// The left-most entry is the original client
				if ip := strings.TrimSpace(strings.Split(xff[0], ",")[0]); ip != "" {
					return ip
				}
			}
			if xri := md.Get("x-real-ip"); len(xri) > 0 && strings.TrimSpace(xri[0]) != "" {
				return strings.TrimSpace(xri[0])
			}
		}
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}

	return "unknown"
}
