package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
	"github.com/kirillkom/wardrobe-assistant/internal/core/ports"
)

type IngestClothingUseCase struct {
	classifier ports.ImageClassifier
	store      *WardrobeStore
	gate       ConfidenceGate
	taxonomies domain.Taxonomies
	storage    ports.ObjectStorage
	queue      ports.MessageQueue
}

func NewIngestClothingUseCase(
	classifier ports.ImageClassifier,
	store *WardrobeStore,
	gate ConfidenceGate,
	taxonomies domain.Taxonomies,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestClothingUseCase {
	return &IngestClothingUseCase{
		classifier: classifier,
		store:      store,
		gate:       gate,
		taxonomies: taxonomies,
		storage:    storage,
		queue:      queue,
	}
}

// Ingest classifies the image against both taxonomies and persists it when the
// category confidence passes the gate. A rejected classification ends with
// IngestManualReview and no store mutation.
func (uc *IngestClothingUseCase) Ingest(ctx context.Context, ownerID, imageLocator string) (*domain.IngestResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest clothing", errors.New("owner id is required"))
	}
	if strings.TrimSpace(imageLocator) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest clothing", errors.New("image locator is required"))
	}

	category, style, err := uc.classify(ctx, imageLocator)
	if err != nil {
		return nil, err
	}

	result := &domain.IngestResult{
		OwnerID:            ownerID,
		ImageLocator:       imageLocator,
		Category:           category.Label,
		CategoryConfidence: category.Confidence,
		StyleLabel:         style.Label,
		StyleTag:           deriveStyleTag(style.Label),
		StyleConfidence:    style.Confidence,
	}

	if !uc.gate.Accept(category.Confidence) {
		result.Outcome = domain.IngestManualReview
		slog.Info("clothing_manual_review",
			"owner_id", ownerID,
			"image_locator", imageLocator,
			"category", category.Label,
			"category_confidence", category.Confidence,
			"threshold", uc.gate.Threshold(),
		)
		return result, nil
	}

	id, isNew, err := uc.store.Insert(ctx, ownerID, imageLocator, result.Category, result.StyleTag, result.CategoryConfidence)
	if err != nil {
		return nil, err
	}
	result.ClothingID = id
	result.IsNew = isNew
	result.Outcome = domain.IngestDuplicate
	if isNew {
		result.Outcome = domain.IngestStored
	} else if existing, err := uc.store.GetByID(ctx, id); err == nil {
		result.ImageLocator = existing.ImageLocator
	} else {
		slog.Warn("clothing_duplicate_lookup_failed", "clothing_id", id, "error", err)
	}

	slog.Info("clothing_ingested",
		"outcome", string(result.Outcome),
		"clothing_id", id,
		"owner_id", ownerID,
		"category", result.Category,
		"category_confidence", result.CategoryConfidence,
		"style_tag", result.StyleTag,
		"style_confidence", result.StyleConfidence,
	)
	return result, nil
}

// Upload stores the image bytes and ingests them synchronously.
func (uc *IngestClothingUseCase) Upload(ctx context.Context, ownerID, filename string, body io.Reader) (*domain.IngestResult, error) {
	key, err := uc.save(ctx, ownerID, filename, body)
	if err != nil {
		return nil, err
	}
	return uc.IngestUploaded(ctx, ownerID, key)
}

// IngestUploaded ingests an object this service stored itself. When the content
// is already known, the freshly stored copy is removed and the result points at
// the existing record's image.
func (uc *IngestClothingUseCase) IngestUploaded(ctx context.Context, ownerID, key string) (*domain.IngestResult, error) {
	result, err := uc.Ingest(ctx, ownerID, key)
	if err != nil {
		return nil, err
	}
	if result.Outcome == domain.IngestDuplicate && result.ImageLocator != key {
		if err := uc.storage.Delete(ctx, key); err != nil {
			slog.Warn("duplicate_upload_cleanup_failed", "image_locator", key, "error", err)
		}
	}
	return result, nil
}

// Enqueue stores the image bytes and hands classification to the worker.
func (uc *IngestClothingUseCase) Enqueue(ctx context.Context, ownerID, filename string, body io.Reader) (*domain.UploadEvent, error) {
	key, err := uc.save(ctx, ownerID, filename, body)
	if err != nil {
		return nil, err
	}

	event := domain.UploadEvent{
		OwnerID:      ownerID,
		ImageLocator: key,
		UploadedAt:   time.Now().UTC(),
	}
	if err := uc.queue.PublishClothingUploaded(ctx, event); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}
	return &event, nil
}

func (uc *IngestClothingUseCase) save(ctx context.Context, ownerID, filename string, body io.Reader) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "upload clothing", errors.New("owner id is required"))
	}
	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, body); err != nil {
		return "", fmt.Errorf("save to object storage: %w", err)
	}
	return key, nil
}

// classify runs the category and style passes concurrently; they share no state.
func (uc *IngestClothingUseCase) classify(ctx context.Context, imageLocator string) (domain.LabelPrediction, domain.LabelPrediction, error) {
	var category, style domain.LabelPrediction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		prediction, err := uc.classifier.Classify(gctx, imageLocator, uc.taxonomies.Categories)
		if err != nil {
			return fmt.Errorf("classify category: %w", err)
		}
		category = prediction
		return nil
	})
	g.Go(func() error {
		prediction, err := uc.classifier.Classify(gctx, imageLocator, uc.taxonomies.Styles)
		if err != nil {
			return fmt.Errorf("classify style: %w", err)
		}
		style = prediction
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.LabelPrediction{}, domain.LabelPrediction{}, err
	}
	return category, style, nil
}

// deriveStyleTag keeps the first word of the raw style label ("sports wear" -> "sports").
func deriveStyleTag(rawLabel string) string {
	fields := strings.Fields(rawLabel)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "image.bin"
	}
	return base
}
