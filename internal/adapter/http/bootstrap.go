package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todoservice/internal/adapter/database"
	"todoservice/internal/adapter/http/middleware"
	"todoservice/internal/adapter/http/routes"
	"todoservice/internal/adapter/logger"
	"todoservice/internal/adapter/telemetry"
	"todoservice/internal/config"
)

// StartServer opens the store, applies pending migrations and serves the API
// until ctx is cancelled or the process receives SIGINT/SIGTERM.
func StartServer(ctx context.Context, cfg *config.Config, log *logger.LokiLogger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := telemetry.NewContainer(ctx, cfg, log.Logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		shutdownTelemetry(tel, cfg.ShutdownTimeout, log)
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Logger.Error("Failed to close database", zap.Error(err))
		}
		shutdownTelemetry(tel, cfg.ShutdownTimeout, log)
	}()

	if err := database.Migrate(db, database.Up); err != nil {
		return err
	}

	container, err := NewContainer(db, cfg, log, tel.NewTelemetryRecorder(log.Logger))
	if err != nil {
		return err
	}

	rateLimiter, closeStore, err := newRateLimiter(ctx, cfg, log, tel, container)
	if err != nil {
		return err
	}
	defer closeStore()

	router := routes.SetupRouter(routes.HandlersConfig{
		TodoHandler:   container.TodoHandler,
		HealthHandler: container.HealthHandler,
	}, routes.MiddlewareConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        tel.AppMetrics,
		Logger:         log,
		Responder:      container.Responder,
		Translator:     container.Translator,
		HTTPSEnforcer:  middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, log),
		RateLimiter:    rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Logger.Info("Shutting down gracefully...", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Logger.Warn("Graceful shutdown timed out, closing connections", zap.Error(err))
		if err := srv.Close(); err != nil {
			log.Logger.Error("Failed to close server", zap.Error(err))
		}
	}

	log.Logger.Info("Server stopped")
	return nil
}

// newRateLimiter picks the shared Redis store when REDIS_URL is set and the
// in-process store otherwise. It returns nil when rate limiting is disabled.
func newRateLimiter(ctx context.Context, cfg *config.Config, log *logger.LokiLogger, tel *telemetry.Container, container *Container) (*middleware.RateLimiter, func(), error) {
	noop := func() {}

	if !cfg.RateLimit.Enabled {
		return nil, noop, nil
	}

	if cfg.RateLimit.RedisURL == "" {
		store := middleware.NewMemoryStore()
		return middleware.NewRateLimiter(store, cfg.RateLimit, log, tel.AppMetrics, container.Responder), noop, nil
	}

	store, err := middleware.NewRedisStoreFromURL(ctx, cfg.RateLimit.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("connect rate limit store: %w", err)
	}

	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Logger.Warn("Failed to close rate limit store", zap.Error(err))
		}
	}

	return middleware.NewRateLimiter(store, cfg.RateLimit, log, tel.AppMetrics, container.Responder), closeStore, nil
}

func shutdownTelemetry(tel *telemetry.Container, timeout time.Duration, log *logger.LokiLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := tel.Shutdown(ctx); err != nil {
		log.Logger.Warn("Failed to flush telemetry", zap.Error(err))
	}
}
