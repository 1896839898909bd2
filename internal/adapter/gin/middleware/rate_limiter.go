package middleware

import (
	"fmt"
	"net/http"

	grpcmiddleware "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc/middleware"

	"github.com/gin-gonic/gin"
)

// RateLimiter returns a Gin middleware backed by the shared token bucket limiter.
// Buckets are keyed by method, route and client IP.
func RateLimiter(limiter *grpcmiddleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, path, c.ClientIP())

		if !limiter.Allow(c.Request.Context(), key) {
			cfg := limiter.Config()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", cfg.RequestsPerSecond, cfg.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
