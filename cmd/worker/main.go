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

	"github.com/kirillkom/wardrobe-assistant/internal/bootstrap"
	"github.com/kirillkom/wardrobe-assistant/internal/config"
	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
	"github.com/kirillkom/wardrobe-assistant/internal/observability/logging"
	"github.com/kirillkom/wardrobe-assistant/internal/observability/metrics"
)

const service = "wardrobe-worker"

func main() {
	cfg := config.Load()
	logger, flush, err := logging.New(logging.Options{Service: service, Level: cfg.LogLevel, SentryDSN: cfg.SentryDSN})
	if err != nil {
		slog.Error("logger_init_failed", "error", err)
		os.Exit(1)
	}
	defer flush()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, bootstrap.WithRetryObserver(func(operation string, _ int, _ error) {
		workerMetrics.RecordRetry(service, operation)
	}))
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		flush()
		os.Exit(1)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeClothingUploaded(ctx, func(handlerCtx context.Context, event domain.UploadEvent) error {
		workerMetrics.ObserveQueueLag(service, time.Since(event.UploadedAt))
		workerMetrics.StartIngest()
		start := time.Now()

		ingestCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()
		result, err := app.IngestUC.IngestUploaded(ingestCtx, event.OwnerID, event.ImageLocator)

		outcome := ""
		if result != nil {
			outcome = string(result.Outcome)
		}
		workerMetrics.FinishIngest(service, outcome, time.Since(start), err)
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
	}
}
