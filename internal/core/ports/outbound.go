package ports

import (
	"context"
	"io"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

// ClothingRepository persists clothing records. InsertIfAbsent must rely on the
// storage-level uniqueness of the content digest.
type ClothingRepository interface {
	InsertIfAbsent(ctx context.Context, item domain.NewClothing) (id int64, isNew bool, err error)
	GetByID(ctx context.Context, id int64) (*domain.ClothingRecord, error)
	QueryByOwner(ctx context.Context, ownerID, styleFilter string, limit int) ([]domain.ClothingRecord, error)
	AddWeight(ctx context.Context, id int64, delta float64) (domain.ReinforceOutcome, error)
}

// ContentFingerprinter digests the bytes behind an image locator.
type ContentFingerprinter interface {
	Fingerprint(ctx context.Context, imageLocator string) (string, error)
}

// ImageClassifier picks the best label for an image among candidate labels.
type ImageClassifier interface {
	Classify(ctx context.Context, imageLocator string, labels []string) (domain.LabelPrediction, error)
}

// ObjectStorage stores uploaded images.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishClothingUploaded(ctx context.Context, event domain.UploadEvent) error
	SubscribeClothingUploaded(ctx context.Context, handler func(context.Context, domain.UploadEvent) error) error
}
