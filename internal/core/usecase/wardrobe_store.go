package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
	"github.com/kirillkom/wardrobe-assistant/internal/core/ports"
)

const (
	DefaultQueryLimit     = 3
	DefaultReinforceDelta = 0.1
)

// WardrobeStore owns clothing records: digest-deduplicated inserts, weighted
// retrieval and in-place weight reinforcement.
type WardrobeStore struct {
	repo        ports.ClothingRepository
	fingerprint ports.ContentFingerprinter
	now         func() time.Time
}

func NewWardrobeStore(repo ports.ClothingRepository, fingerprint ports.ContentFingerprinter) *WardrobeStore {
	return &WardrobeStore{
		repo:        repo,
		fingerprint: fingerprint,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores a record for the image behind imageLocator unless a record with
// the same content digest already exists, in which case the existing id is
// returned untouched with isNew=false.
func (s *WardrobeStore) Insert(
	ctx context.Context,
	ownerID, imageLocator, category, styleTag string,
	confidence float64,
) (int64, bool, error) {
	if err := validateNewClothing(ownerID, imageLocator, category); err != nil {
		return 0, false, err
	}

	digest, err := s.fingerprint.Fingerprint(ctx, imageLocator)
	if err != nil {
		return 0, false, domain.WrapError(domain.ErrDigestUnavailable, "insert clothing", err)
	}

	id, isNew, err := s.repo.InsertIfAbsent(ctx, domain.NewClothing{
		OwnerID:       ownerID,
		ImageLocator:  imageLocator,
		ContentDigest: digest,
		Category:      category,
		StyleTag:      styleTag,
		Confidence:    confidence,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return 0, false, fmt.Errorf("insert clothing: %w", err)
	}
	if !isNew {
		slog.Info("clothing_duplicate", "clothing_id", id, "owner_id", ownerID, "content_digest", digest)
	}
	return id, isNew, nil
}

func (s *WardrobeStore) QueryByOwner(ctx context.Context, ownerID, styleFilter string, limit int) ([]domain.ClothingRecord, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	records, err := s.repo.QueryByOwner(ctx, ownerID, styleFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("query clothes by owner: %w", err)
	}
	if records == nil {
		records = []domain.ClothingRecord{}
	}
	return records, nil
}

// Reinforce adds delta to the record weight. An unknown id is reported as
// ReinforceNotFound and logged, not returned as an error.
func (s *WardrobeStore) Reinforce(ctx context.Context, id int64, delta float64) (domain.ReinforceOutcome, error) {
	outcome, err := s.repo.AddWeight(ctx, id, delta)
	if err != nil {
		return "", fmt.Errorf("reinforce clothing: %w", err)
	}
	if outcome == domain.ReinforceNotFound {
		slog.Warn("reinforce_unknown_clothing", "clothing_id", id, "delta", delta)
	}
	return outcome, nil
}

func (s *WardrobeStore) GetByID(ctx context.Context, id int64) (*domain.ClothingRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch clothing by id: %w", err)
	}
	return record, nil
}

func validateNewClothing(ownerID, imageLocator, category string) error {
	switch {
	case strings.TrimSpace(ownerID) == "":
		return domain.WrapError(domain.ErrInvalidInput, "insert clothing", fmt.Errorf("owner id is required"))
	case strings.TrimSpace(imageLocator) == "":
		return domain.WrapError(domain.ErrInvalidInput, "insert clothing", fmt.Errorf("image locator is required"))
	case strings.TrimSpace(category) == "":
		return domain.WrapError(domain.ErrInvalidInput, "insert clothing", fmt.Errorf("category is required"))
	}
	return nil
}
