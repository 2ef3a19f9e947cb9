package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"tradematch.app/linkup/common/id"
	"tradematch.app/linkup/common/logger"
	"tradematch.app/linkup/common/otel"
	"tradematch.app/linkup/core/config"
	"tradematch.app/linkup/core/db"
	"tradematch.app/linkup/internal/http/middleware"
	httprouter "tradematch.app/linkup/internal/http/router"
	"tradematch.app/linkup/internal/idempotency"
	"tradematch.app/linkup/internal/queue"
	"tradematch.app/linkup/internal/service"
	"tradematch.app/linkup/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "linkup starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.SnowflakeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.NotifyStream)

	producer := queue.NewRedisProducer(redisClient, cfg.Redis.NotifyStream, nil)
	defer producer.Close()

	services, err := service.NewServices(
		store.NewStores(database.Queries()),
		service.NewTxRunner(database),
		producer,
		cfg,
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, httprouter.RouterConfig{
		Idempotency: idempotency.NewRedisStore(redisClient, cfg.Redis.IdempotencyTTL),
		Ready: func(ctx context.Context) error {
			return errors.Join(database.Ping(ctx), redisClient.Ping(ctx).Err())
		},
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, routes httprouter.RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → request id → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, routes)

	return router
}

const banner = `
██╗     ██╗███╗   ██╗██╗  ██╗██╗   ██╗██████╗ 
██║     ██║████╗  ██║██║ ██╔╝██║   ██║██╔══██╗
██║     ██║██╔██╗ ██║█████╔╝ ██║   ██║██████╔╝
██║     ██║██║╚██╗██║██╔═██╗ ██║   ██║██╔═══╝ 
███████╗██║██║ ╚████║██║  ██╗╚██████╔╝██║     
╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝ ╚═════╝ ╚═╝     
`
