package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/service/review"
)

// MockBatchReviewService is a mock implementation of review.BatchReviewService
// for testing HTTP handlers without a database.
type MockBatchReviewService struct {
	// ReviewBatchFn allows customizing the ReviewBatch behavior per test.
	ReviewBatchFn func(ctx context.Context, ownerID, batchID uuid.UUID, decisions []domain.ReviewDecision) (*review.ReviewResult, error)

	// Default values returned when ReviewBatchFn is nil.
	Result *review.ReviewResult
	Err    error
}

// ReviewBatch implements review.BatchReviewService.
func (m *MockBatchReviewService) ReviewBatch(
	ctx context.Context,
	ownerID uuid.UUID,
	batchID uuid.UUID,
	decisions []domain.ReviewDecision,
) (*review.ReviewResult, error) {
	if m.ReviewBatchFn != nil {
		return m.ReviewBatchFn(ctx, ownerID, batchID, decisions)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Ensure MockBatchReviewService implements the interface.
var _ review.BatchReviewService = (*MockBatchReviewService)(nil)
