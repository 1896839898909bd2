package router

import (
	"net/http"

	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/gin/handler"
	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/gin/middleware"
	grpcmiddleware "github.com/otikanelson/Darb-Networks-sub001/internal/adapter/grpc/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Without a fronting proxy, X-Forwarded-For is client-controlled and must not pick the rate-limit bucket
	if rateLimiter == nil || !rateLimiter.Config().TrustProxyHeaders {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Warn("failed to reset trusted proxies", zap.Error(err))
		}
	}

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	// Health check stays outside the rate limiter
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	// API v1 routes
	v1 := router.Group("/v1", middleware.RateLimiter(rateLimiter))
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/verify", userHandler.VerifyEmail)
			users.POST("/:id/login", userHandler.RecordLogin)
			users.PUT("/:id/password", userHandler.ChangePassword)
		}
	}

	return router
}
