// Command ctbridge runs the CleverTap bridge on the queued platform. It reads
// newline-delimited JSON commands from stdin, stores the resulting records in
// a SQLite outbox and publishes them to NATS JetStream or Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/config"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/delivery"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/instance"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/kafka"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/nats"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/observability"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/storage"
	"github.com/CleverTap/clevertap-unreal-sdk/sdk/mobile"
)

// Config holds all ctbridge configuration.
type Config struct {
	// LogLevel is the log level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is the log format (json, text)
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// MetricsAddr is the listen address for /metrics. Empty disables it.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// OutboxPath is the SQLite database holding queued records.
	OutboxPath string `env:"OUTBOX_PATH" envDefault:"ctbridge.db"`

	// OutboxMaxSize caps the number of queued records.
	OutboxMaxSize int `env:"OUTBOX_MAX_SIZE" envDefault:"1000"`

	// ShutdownTimeout bounds the final flush.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// CleverTap project configuration
	CleverTap config.Config `envPrefix:"CLEVERTAP_"`

	// Outbox delivery configuration
	Delivery delivery.Config `envPrefix:""`

	// Sink selects the broker records are published to (nats, kafka)
	Sink string `env:"SINK" envDefault:"nats"`

	// NATS configuration
	NATS nats.Config `envPrefix:""`

	// Kafka configuration
	Kafka kafka.Config `envPrefix:""`
}

func main() {
	// Load configuration from environment
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout carries command results.
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting ctbridge",
		"log_level", cfg.LogLevel,
		"project_id", cfg.CleverTap.ProjectID,
		"outbox", cfg.OutboxPath,
		"sink", cfg.Sink,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Metrics
	obs, err := observability.New("ctbridge")
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer obs.Shutdown(context.Background())

	metrics, err := observability.NewMetrics(obs.Meter())
	if err != nil {
		logger.Error("failed to create instruments", "error", err)
		os.Exit(1)
	}
	mobile.SetMetrics(metrics)

	// Broker
	out, err := openSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open sink", "error", err)
		os.Exit(1)
	}

	// Outbox
	db, err := storage.Open(cfg.OutboxPath)
	if err != nil {
		logger.Error("failed to open outbox", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	outbox := storage.NewOutbox(db, cfg.OutboxMaxSize)

	// Flusher
	flusher := delivery.NewFlusher(outbox, out.sender, cfg.Delivery, metrics, logger)
	flusher.Start(ctx)
	if out.onConnect != nil {
		out.onConnect(flusher.Trigger)
	}

	// Shared instance
	platform := instance.NewQueuedPlatform(outbox, db, metrics, logger)
	subsystem := instance.NewSubsystem(platform, cfg.CleverTap, logger)
	if err := subsystem.Start(ctx); err != nil {
		logger.Error("failed to initialize shared instance", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.MetricsHandler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	// Command loop
	runner := newCommandRunner(subsystem, flusher, metrics, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runner.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			logger.Error("command loop error", "error", err)
		} else {
			logger.Info("stdin closed")
		}
	}

	// Graceful shutdown
	logger.Info("initiating graceful shutdown")
	flusher.Stop()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	if err := flusher.Drain(drainCtx); err != nil {
		pending, _ := flusher.Pending()
		logger.Error("final flush incomplete", "error", err, "pending", pending)
	}
	drainCancel()
	if dead, err := outbox.DeadLetterCount(); err == nil && dead > 0 {
		logger.Warn("dead-lettered records retained", "count", dead)
	}
	cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(context.Background()); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	if err := out.close(); err != nil {
		logger.Error("sink close error", "error", err)
	}

	logger.Info("ctbridge stopped")
}

// setupLogger creates a logger based on configuration.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
