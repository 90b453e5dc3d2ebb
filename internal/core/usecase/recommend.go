package usecase

import (
	"context"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

// SelectionReinforceDelta is the weight boost applied when a user picks a suggestion.
const SelectionReinforceDelta = 0.5

type RecommendationUseCase struct {
	store *WardrobeStore
	limit int
}

func NewRecommendationUseCase(store *WardrobeStore, limit int) *RecommendationUseCase {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return &RecommendationUseCase{
		store: store,
		limit: limit,
	}
}

func (uc *RecommendationUseCase) Recommend(ctx context.Context, ownerID, styleFilter string) ([]domain.ClothingRecord, error) {
	return uc.store.QueryByOwner(ctx, ownerID, styleFilter, uc.limit)
}

func (uc *RecommendationUseCase) OnSelect(ctx context.Context, clothingID int64) (domain.ReinforceOutcome, error) {
	return uc.store.Reinforce(ctx, clothingID, SelectionReinforceDelta)
}
