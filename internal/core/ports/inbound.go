package ports

import (
	"context"
	"io"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

// ClothingIngestor is the inbound contract for classifying and storing one image.
type ClothingIngestor interface {
	Ingest(ctx context.Context, ownerID, imageLocator string) (*domain.IngestResult, error)
	Upload(ctx context.Context, ownerID, filename string, body io.Reader) (*domain.IngestResult, error)
	Enqueue(ctx context.Context, ownerID, filename string, body io.Reader) (*domain.UploadEvent, error)
}

// Recommender is the inbound contract for weighted suggestions and selection feedback.
type Recommender interface {
	Recommend(ctx context.Context, ownerID, styleFilter string) ([]domain.ClothingRecord, error)
	OnSelect(ctx context.Context, clothingID int64) (domain.ReinforceOutcome, error)
}

// ClothingReader is the inbound read model for a single stored record.
type ClothingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.ClothingRecord, error)
}
