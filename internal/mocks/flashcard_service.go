package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/service"
)

// MockFlashcardService is a mock implementation of service.FlashcardService
// for testing HTTP handlers without a database.
type MockFlashcardService struct {
	// Per-method overrides. When nil, the method falls back to the default
	// Card/Cards/DeletedIDs/Err fields below.
	CreateFlashcardFn  func(ctx context.Context, userID uuid.UUID, frontText, backText string) (*domain.Flashcard, error)
	GetFlashcardFn     func(ctx context.Context, userID, cardID uuid.UUID) (*domain.Flashcard, error)
	ListFlashcardsFn   func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)
	UpdateFlashcardFn  func(ctx context.Context, userID, cardID uuid.UUID, frontText, backText *string) (*domain.Flashcard, error)
	DeleteFlashcardFn  func(ctx context.Context, userID, cardID uuid.UUID) error
	DeleteFlashcardsFn func(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error)

	// Default values returned when the corresponding Fn is nil.
	Card       *domain.Flashcard
	Cards      []*domain.Flashcard
	DeletedIDs []uuid.UUID
	Err        error
}

// CreateFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) CreateFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	frontText, backText string,
) (*domain.Flashcard, error) {
	if m.CreateFlashcardFn != nil {
		return m.CreateFlashcardFn(ctx, userID, frontText, backText)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Card, nil
}

// GetFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) GetFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Flashcard, error) {
	if m.GetFlashcardFn != nil {
		return m.GetFlashcardFn(ctx, userID, cardID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Card, nil
}

// ListFlashcards implements service.FlashcardService.
func (m *MockFlashcardService) ListFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	if m.ListFlashcardsFn != nil {
		return m.ListFlashcardsFn(ctx, userID, limit, offset)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Cards, nil
}

// UpdateFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) UpdateFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	frontText, backText *string,
) (*domain.Flashcard, error) {
	if m.UpdateFlashcardFn != nil {
		return m.UpdateFlashcardFn(ctx, userID, cardID, frontText, backText)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Card, nil
}

// DeleteFlashcard implements service.FlashcardService.
func (m *MockFlashcardService) DeleteFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) error {
	if m.DeleteFlashcardFn != nil {
		return m.DeleteFlashcardFn(ctx, userID, cardID)
	}
	return m.Err
}

// DeleteFlashcards implements service.FlashcardService.
func (m *MockFlashcardService) DeleteFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	if m.DeleteFlashcardsFn != nil {
		return m.DeleteFlashcardsFn(ctx, userID, cardIDs)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DeletedIDs, nil
}

// Ensure MockFlashcardService implements the interface.
var _ service.FlashcardService = (*MockFlashcardService)(nil)
