package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradematch.app/linkup/internal/http/handler"
	"tradematch.app/linkup/internal/http/middleware"
	"tradematch.app/linkup/internal/idempotency"
	"tradematch.app/linkup/internal/service"
)

type RouterConfig struct {
	// Idempotency backs the Idempotency-Key header on creation. Nil disables it.
	Idempotency idempotency.Store
	// Ready checks the backing stores for /ready. Nil always reports ready.
	Ready func(ctx context.Context) error
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	HealthRouter(router, cfg.Ready)

	v1 := router.Group("/api/v1")
	{
		connHandler := handler.NewConnectionHandler(services.Connections(), cfg.Idempotency)
		ConnectionRouter(v1.Group("/connections"), connHandler, middleware.RequireAuth(services.Auth()))
	}
}

// HealthRouter mounts liveness and readiness probes.
func HealthRouter(router *gin.Engine, ready func(ctx context.Context) error) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				slog.WarnContext(ctx, "readiness check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
