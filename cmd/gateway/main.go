// Command gateway runs the validating edge in front of the backend API.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, cleanup := initRateLimiter(ctx, cfg, &logger)
	defer cleanup()

	gin.SetMode(gin.ReleaseMode)
	metrics.Register()

	client := gateway.NewBackendClient(cfg.Gateway.ServerURL, cfg.Gateway.APIKey, cfg.API.Auth.HeaderAPIKey, cfg.Gateway.RequestTimeout)
	gw := gateway.New(cfg.Gateway, client, limiter, &logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           gw.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.Monitoring.PrometheusEnabled {
		go serveMetrics(ctx, cfg.Gateway.MetricsPort, &logger)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info().Int("port", cfg.Gateway.Port).Str("backend", cfg.Gateway.ServerURL).Msg("Gateway started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("gateway server stopped")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info().Msg("Gateway stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "gateway-main").Logger()

	return cfg, logger, closer, nil
}

// initRateLimiter prefers Redis so that several gateway replicas share one
// budget per user. The memory store serves alone when Redis is not configured.
func initRateLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.RateLimitStore, func()) {
	if !cfg.Gateway.RateLimit.Enabled {
		return nil, func() {}
	}

	memory := ratelimit.NewMemoryStore()
	go sweepLoop(ctx, memory, cfg.Gateway.RateLimit.Window)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("rate limiting with in-memory store")
		return memory, func() {}
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	if err := ratelimit.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable at startup, memory store will serve until it recovers")
	}

	store := ratelimit.NewFailoverStore(ratelimit.NewRedisStore(client), memory, logger)
	return store, func() { _ = ratelimit.Close(client) }
}

func sweepLoop(ctx context.Context, store *ratelimit.MemoryStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}

func serveMetrics(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
