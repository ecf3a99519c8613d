package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bridgescan/interchain-indexer/internal/bridge/example"
	"github.com/bridgescan/interchain-indexer/internal/buffer"
	"github.com/bridgescan/interchain-indexer/internal/config"
	"github.com/bridgescan/interchain-indexer/internal/store/postgres"
	redispkg "github.com/bridgescan/interchain-indexer/internal/store/redis"
	"github.com/bridgescan/interchain-indexer/internal/tracing"
)

const metricsShutdownTimeout = 5 * time.Second

func main() {
	logLevel := slog.LevelInfo
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting interchain-indexer",
		"hot_ttl", cfg.Buffer.HotTTL,
		"maintenance_interval", cfg.Buffer.MaintenanceInterval,
		"metrics_port", cfg.Server.MetricsPort,
		"redis_notifier", cfg.Redis.URL != "",
	)

	shutdownTracing, err := tracing.Init(context.Background(), "interchain-indexer", cfg.Tracing.OTLPEndpoint, cfg.Tracing.Insecure)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.OTLPEndpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.OTLPEndpoint)
	}

	db, err := postgres.New(postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	if cfg.DB.MigrationsDir != "" {
		if err := db.RunMigrations(cfg.DB.MigrationsDir); err != nil {
			logger.Error("failed to run migrations", "error", err, "dir", cfg.DB.MigrationsDir)
			os.Exit(1)
		}
		logger.Info("migrations applied", "dir", cfg.DB.MigrationsDir)
	}

	opts := []buffer.Option[*example.MessageState]{}
	if cfg.Redis.URL != "" {
		notifier, err := redispkg.NewNotifier(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer notifier.Close()
		logger.Info("finalized-message notifier enabled")
		opts = append(opts, buffer.WithNotifier[*example.MessageState](notifier))
	}

	buf := buffer.New(
		buffer.Config{
			HotTTL:              cfg.Buffer.HotTTL,
			MaintenanceInterval: cfg.Buffer.MaintenanceInterval,
		},
		postgres.NewPendingRepo(db),
		postgres.NewMaintenanceRepo(db),
		example.NewMessageState,
		logger,
		opts...,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runMetricsServer(gCtx, cfg.Server.MetricsPort, logger)
	})

	g.Go(func() error {
		return buf.Run(gCtx)
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("indexer exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("indexer shut down gracefully")
}

func runMetricsServer(ctx context.Context, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
