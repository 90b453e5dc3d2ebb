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

	httpadapter "github.com/kirillkom/wardrobe-assistant/internal/adapters/http"
	"github.com/kirillkom/wardrobe-assistant/internal/bootstrap"
	"github.com/kirillkom/wardrobe-assistant/internal/config"
	"github.com/kirillkom/wardrobe-assistant/internal/observability/logging"
	"github.com/kirillkom/wardrobe-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger, flush, err := logging.New(logging.Options{Service: "wardrobe-api", Level: cfg.LogLevel, SentryDSN: cfg.SentryDSN})
	if err != nil {
		slog.Error("logger_init_failed", "error", err)
		os.Exit(1)
	}
	defer flush()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		flush()
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("wardrobe-api")
	router := httpadapter.NewRouter(cfg, app.IngestUC, app.RecommendUC, app.Store, httpadapter.WithMetrics(httpMetrics)).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
