package card_review

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// MockCardReviewService is a mock implementation of the CardReviewService interface for testing.
type MockCardReviewService struct {
	SubmitReviewFunc    func(ctx context.Context, cardID uuid.UUID, quality domain.ReviewQuality) (*ReviewResult, error)
	SubmitRawReviewFunc func(ctx context.Context, cardID uuid.UUID, rawQuality int) (*ReviewResult, error)
	PostponeCardFunc    func(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error)
}

// Verify interface compliance at compile time
var _ CardReviewService = (*MockCardReviewService)(nil)

// SubmitReview calls SubmitReviewFunc when set.
func (m *MockCardReviewService) SubmitReview(
	ctx context.Context,
	cardID uuid.UUID,
	quality domain.ReviewQuality,
) (*ReviewResult, error) {
	if m.SubmitReviewFunc != nil {
		return m.SubmitReviewFunc(ctx, cardID, quality)
	}
	return nil, nil
}

// SubmitRawReview calls SubmitRawReviewFunc when set.
func (m *MockCardReviewService) SubmitRawReview(
	ctx context.Context,
	cardID uuid.UUID,
	rawQuality int,
) (*ReviewResult, error) {
	if m.SubmitRawReviewFunc != nil {
		return m.SubmitRawReviewFunc(ctx, cardID, rawQuality)
	}
	return nil, nil
}

// PostponeCard calls PostponeCardFunc when set.
func (m *MockCardReviewService) PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error) {
	if m.PostponeCardFunc != nil {
		return m.PostponeCardFunc(ctx, cardID, days)
	}
	return nil, nil
}
