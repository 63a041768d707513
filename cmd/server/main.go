// Command server runs the vestibule identity-governance gateway.
//
// Configuration is layered: built-in defaults, a YAML config file
// (discovered or via -config / VESTIBULE_CONFIG), then VESTIBULE_* env
// overrides. See pkg/config for the full list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vestibule-io/vestibule/pkg/audit"
	auditmemory "github.com/vestibule-io/vestibule/pkg/audit/memory"
	auditpostgres "github.com/vestibule-io/vestibule/pkg/audit/postgres"
	"github.com/vestibule-io/vestibule/pkg/auth"
	"github.com/vestibule-io/vestibule/pkg/config"
	"github.com/vestibule-io/vestibule/pkg/gateway"
	"github.com/vestibule-io/vestibule/pkg/session"
	"github.com/vestibule-io/vestibule/pkg/upstream"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Session cookie codec.
	codec, err := session.NewCodec(session.CodecConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
		Domain: cfg.Session.CookieDomain,
	})
	if err != nil {
		return fmt.Errorf("creating session codec: %w", err)
	}

	// Backend proxy.
	backend := upstream.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	defer backend.Close()

	// Rate limiter.
	var limiter auth.RateLimiter
	switch cfg.RateLimit.Type {
	case "memory":
		limiter = auth.NewInProcessLimiter(cfg.RateLimit.RequestsPerMinute)
		logger.Info("rate limiting enabled", "type", "memory", "rpm", cfg.RateLimit.RequestsPerMinute)
	case "redis":
		rl, err := auth.NewRedisLimiter(auth.RedisLimiterConfig{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
			RPM:      cfg.RateLimit.RequestsPerMinute,
		})
		if err != nil {
			return fmt.Errorf("creating rate limiter: %w", err)
		}
		defer rl.Close()
		limiter = rl
		logger.Info("rate limiting enabled", "type", "redis", "addr", cfg.RateLimit.Redis.Addr,
			"rpm", cfg.RateLimit.RequestsPerMinute)
	default:
		logger.Info("rate limiting disabled")
	}

	// Delegation audit recorder.
	var recorder audit.Recorder
	switch cfg.Audit.Type {
	case "memory":
		recorder = auditmemory.New(cfg.Audit.MaxSize)
		logger.Info("delegation audit enabled", "type", "memory", "max_size", cfg.Audit.MaxSize)
	case "postgres":
		pg, err := auditpostgres.New(context.Background(), auditpostgres.Config{
			DSN:            cfg.Audit.Postgres.DSN,
			MaxConns:       cfg.Audit.Postgres.MaxConns,
			MigrateOnStart: cfg.Audit.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("creating audit recorder: %w", err)
		}
		defer pg.Close()
		recorder = pg
		logger.Info("delegation audit enabled", "type", "postgres")
	default:
		logger.Info("delegation audit disabled")
	}

	gw := gateway.New(codec, backend, gateway.Options{
		Limiter:        limiter,
		Recorder:       recorder,
		Logger:         logger,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      gw.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
