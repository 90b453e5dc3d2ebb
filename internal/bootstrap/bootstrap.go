package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/wardrobe-assistant/internal/config"
	"github.com/kirillkom/wardrobe-assistant/internal/core/ports"
	"github.com/kirillkom/wardrobe-assistant/internal/core/usecase"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/fingerprint"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/repository/sqldb"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Repo        ports.ClothingRepository
	IngestUC    *usecase.IngestClothingUseCase
	RecommendUC *usecase.RecommendationUseCase
	Store       *usecase.WardrobeStore

	closeFn func()
}

type Option func(*options)

type options struct {
	onRetry resilience.RetryObserver
}

// WithRetryObserver reports retries of outbound calls, e.g. to worker metrics.
func WithRetryObserver(fn resilience.RetryObserver) Option {
	return func(o *options) { o.onRetry = fn }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	taxonomies, err := cfg.Taxonomies()
	if err != nil {
		return nil, fmt.Errorf("load taxonomies: %w", err)
	}

	db, err := sqldb.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqldb.Migrate(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	repo, err := sqldb.NewClothingRepository(db, cfg.DBDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resiliencePolicy(cfg),
		resilience.WithLogger(slog.Default()),
		resilience.WithRetryObserver(o.onRetry),
	)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaVisionModel, ollama.WithExecutor(executor))
	classifier := ollama.NewClassifier(ollamaClient, storage)

	store := usecase.NewWardrobeStore(repo, fingerprint.New(storage))
	gate := usecase.NewConfidenceGate(cfg.ClassificationThreshold)
	ingestUC := usecase.NewIngestClothingUseCase(classifier, store, gate, taxonomies, storage, queue)
	recommendUC := usecase.NewRecommendationUseCase(store, cfg.RecommendLimit)

	slog.Info("app_initialized",
		"db_driver", cfg.DBDriver,
		"storage_backend", cfg.StorageBackend,
		"vision_model", cfg.OllamaVisionModel,
		"threshold", gate.Threshold(),
		"categories", len(taxonomies.Categories),
		"styles", len(taxonomies.Styles),
	)

	return &App{
		Config:      cfg,
		Queue:       queue,
		Repo:        repo,
		IngestUC:    ingestUC,
		RecommendUC: recommendUC,
		Store:       store,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	case "", "localfs":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func resiliencePolicy(cfg config.Config) resilience.Policy {
	minRequests := cfg.ResilienceBreakerMinRequests
	if minRequests < 0 {
		minRequests = 0
	}
	return resilience.Policy{
		Retry: resilience.RetryPolicy{
			MaxAttempts:    cfg.ResilienceRetryMaxAttempts,
			InitialBackoff: cfg.ResilienceRetryInitialBackoff,
			MaxBackoff:     cfg.ResilienceRetryMaxBackoff,
			Multiplier:     cfg.ResilienceRetryMultiplier,
		},
		Breaker: resilience.BreakerPolicy{
			Enabled:      cfg.ResilienceBreakerEnabled,
			MinRequests:  uint32(minRequests),
			FailureRatio: cfg.ResilienceBreakerFailureRatio,
			OpenTimeout:  cfg.ResilienceBreakerOpenTimeout,
		},
	}
}
