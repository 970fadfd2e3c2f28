package review

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// MockGenerationBatchStore mocks the store.GenerationBatchStore interface
type MockGenerationBatchStore struct {
	mock.Mock
}

func (m *MockGenerationBatchStore) Create(ctx context.Context, batch *domain.GenerationBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockGenerationBatchStore) GetByIDForOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.GenerationBatch, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationBatch), args.Error(1)
}

func (m *MockGenerationBatchStore) FinalizeReview(
	ctx context.Context,
	id, ownerID uuid.UUID,
	accepted, rejected, edited int,
) error {
	args := m.Called(ctx, id, ownerID, accepted, rejected, edited)
	return args.Error(0)
}

// WithTx returns the same mock; transactional behavior is not simulated.
func (m *MockGenerationBatchStore) WithTx(tx *sql.Tx) store.GenerationBatchStore {
	return m
}

// MockFlashcardStore mocks the store.FlashcardStore interface
type MockFlashcardStore struct {
	mock.Mock
}

func (m *MockFlashcardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardStore) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockFlashcardStore) GetByID(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.Flashcard, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	update store.FlashcardUpdate,
) (*domain.Flashcard, error) {
	args := m.Called(ctx, id, ownerID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockFlashcardStore) DeleteMany(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// WithTx returns the same mock; transactional behavior is not simulated.
func (m *MockFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return m
}
