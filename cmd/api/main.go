package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicore/platform/internal/api/router"
	appconfig "github.com/clinicore/platform/internal/config"
	"github.com/clinicore/platform/internal/directory"
	"github.com/clinicore/platform/internal/observability/metrics"
	"github.com/clinicore/platform/internal/scheduling"
	"github.com/clinicore/platform/pkg/logging"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicore API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Write model over pgx, read-side projections over database/sql
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Redis backs the coarse appointment-view cache invalidation
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	var invalidator scheduling.Invalidator = scheduling.NewRedisInvalidator(redisClient)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("redis unavailable, cache invalidation disabled", "error", err)
		invalidator = scheduling.NoopInvalidator{}
	}

	// Initialize repositories and services
	schedulingMetrics := metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)
	apptRepo := scheduling.NewPostgresRepository(pool)
	dirRepo := directory.NewPostgresRepository(pool)
	views := scheduling.NewProjectionStore(db)
	schedulingService := scheduling.NewService(apptRepo, dirRepo, views, invalidator, schedulingMetrics, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: scheduling.NewHandler(schedulingService, logger),
		MetricsHandler:      promhttp.Handler(),
		AuthSecret:          cfg.AuthSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
