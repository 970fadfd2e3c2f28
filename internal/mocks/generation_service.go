package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/service"
)

// MockGenerationService is a mock implementation of service.GenerationService
// for testing HTTP handlers without a generator or database.
type MockGenerationService struct {
	// GenerateCardsFn allows customizing the GenerateCards behavior per test.
	GenerateCardsFn func(ctx context.Context, userID uuid.UUID, inputText string) (*service.GenerationOutcome, error)
	// GetBatchFn allows customizing the GetBatch behavior per test.
	GetBatchFn func(ctx context.Context, userID, batchID uuid.UUID) (*domain.GenerationBatch, error)

	// Default values returned when the corresponding Fn is nil.
	Outcome *service.GenerationOutcome
	Batch   *domain.GenerationBatch
	Err     error
}

// GenerateCards implements service.GenerationService.
func (m *MockGenerationService) GenerateCards(
	ctx context.Context,
	userID uuid.UUID,
	inputText string,
) (*service.GenerationOutcome, error) {
	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, userID, inputText)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Outcome, nil
}

// GetBatch implements service.GenerationService.
func (m *MockGenerationService) GetBatch(
	ctx context.Context,
	userID, batchID uuid.UUID,
) (*domain.GenerationBatch, error) {
	if m.GetBatchFn != nil {
		return m.GetBatchFn(ctx, userID, batchID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Batch, nil
}

// Ensure MockGenerationService implements the interface.
var _ service.GenerationService = (*MockGenerationService)(nil)
