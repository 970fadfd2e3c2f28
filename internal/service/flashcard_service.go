package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// FlashcardService provides manual flashcard operations for the HTTP layer.
// Every operation is scoped to the authenticated owner; a flashcard belonging
// to someone else is indistinguishable from a missing one.
type FlashcardService interface {
	// CreateFlashcard creates a manually authored flashcard, enforcing the
	// per-owner capacity ceiling.
	CreateFlashcard(ctx context.Context, userID uuid.UUID, frontText, backText string) (*domain.Flashcard, error)

	// GetFlashcard retrieves one of the user's flashcards by ID.
	GetFlashcard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Flashcard, error)

	// ListFlashcards returns a window of the user's flashcards, newest first.
	ListFlashcards(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)

	// UpdateFlashcard applies a partial text update. At least one field must
	// be provided; any change marks the card edited.
	UpdateFlashcard(ctx context.Context, userID, cardID uuid.UUID, frontText, backText *string) (*domain.Flashcard, error)

	// DeleteFlashcard permanently removes one of the user's flashcards.
	DeleteFlashcard(ctx context.Context, userID, cardID uuid.UUID) error

	// DeleteFlashcards permanently removes the user's cards among cardIDs and
	// reports which were deleted. Unknown or foreign IDs are skipped.
	DeleteFlashcards(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error)
}

// Common sentinel errors for FlashcardService
var (
	// ErrFlashcardNotFound indicates that the flashcard does not exist or
	// belongs to another user.
	ErrFlashcardNotFound = errors.New("flashcard not found")

	// ErrInvalidFlashcard indicates flashcard text outside the accepted
	// bounds after trimming.
	ErrInvalidFlashcard = errors.New("invalid flashcard text")

	// ErrNoUpdateFields indicates an update request with neither side of the
	// card provided.
	ErrNoUpdateFields = errors.New("at least one of front text or back text is required")
)

// FlashcardServiceError wraps errors from the flashcard service with context.
type FlashcardServiceError struct {
	// Operation is the operation that failed (e.g., "create_flashcard")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for FlashcardServiceError.
func (e *FlashcardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flashcard service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("flashcard service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *FlashcardServiceError) Unwrap() error {
	return e.Err
}

// NewFlashcardServiceError creates a new FlashcardServiceError.
// It returns known sentinel errors directly without wrapping.
func NewFlashcardServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrFlashcardNotFound) ||
		errors.Is(err, ErrInvalidFlashcard) ||
		errors.Is(err, ErrNoUpdateFields) ||
		errors.Is(err, store.ErrFlashcardLimitExceeded) {
		return err
	}

	if errors.Is(err, store.ErrFlashcardNotFound) {
		return ErrFlashcardNotFound
	}

	return &FlashcardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// flashcardServiceImpl implements the FlashcardService interface
type flashcardServiceImpl struct {
	db             *sql.DB
	flashcardStore store.FlashcardStore
	logger         *slog.Logger
}

// NewFlashcardService creates a new FlashcardService.
// It returns an error if any of the required dependencies are nil.
func NewFlashcardService(
	db *sql.DB,
	flashcardStore store.FlashcardStore,
	logger *slog.Logger,
) (FlashcardService, error) {
	if db == nil {
		return nil, &FlashcardServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if flashcardStore == nil {
		return nil, &FlashcardServiceError{
			Operation: "create_service",
			Message:   "flashcardStore cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &flashcardServiceImpl{
		db:             db,
		flashcardStore: flashcardStore,
		logger:         logger.With("component", "flashcard_service"),
	}, nil
}

// CreateFlashcard creates a manually authored flashcard for the user.
func (s *flashcardServiceImpl) CreateFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	frontText, backText string,
) (*domain.Flashcard, error) {
	card, err := domain.NewFlashcard(userID, frontText, backText)
	if err != nil {
		s.logger.Warn("rejected flashcard text",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlashcard, err)
	}

	// Fast-path count before taking the insert lock; the store re-checks
	// inside the transaction, which is the check that actually holds.
	count, err := s.flashcardStore.CountByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count flashcards",
			"error", err,
			"user_id", userID)
		return nil, NewFlashcardServiceError("create_flashcard", "failed to count flashcards", err)
	}
	if count >= domain.MaxFlashcardsPerUser {
		s.logger.Debug("flashcard create rejected by capacity ceiling",
			"user_id", userID,
			"current_count", count)
		return nil, store.NewFlashcardLimitError(count)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.flashcardStore.WithTx(tx).Create(ctx, card); err != nil {
			return NewFlashcardServiceError("create_flashcard", "failed to save flashcard", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create flashcard",
			"error", err,
			"user_id", userID)
		return nil, err
	}

	s.logger.Info("flashcard created",
		"card_id", card.ID,
		"user_id", userID)

	return card, nil
}

// GetFlashcard retrieves one of the user's flashcards by ID.
func (s *flashcardServiceImpl) GetFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Flashcard, error) {
	card, err := s.flashcardStore.GetByID(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			s.logger.Debug("flashcard not found",
				"card_id", cardID,
				"user_id", userID)
			return nil, ErrFlashcardNotFound
		}

		s.logger.Error("failed to retrieve flashcard",
			"error", err,
			"card_id", cardID,
			"user_id", userID)
		return nil, NewFlashcardServiceError("get_flashcard", "failed to retrieve flashcard", err)
	}

	return card, nil
}

// ListFlashcards returns a window of the user's flashcards, newest first.
func (s *flashcardServiceImpl) ListFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	cards, err := s.flashcardStore.List(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list flashcards",
			"error", err,
			"user_id", userID)
		return nil, NewFlashcardServiceError("list_flashcards", "failed to list flashcards", err)
	}

	return cards, nil
}

// UpdateFlashcard applies a partial text update to one of the user's cards.
func (s *flashcardServiceImpl) UpdateFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	frontText, backText *string,
) (*domain.Flashcard, error) {
	if frontText == nil && backText == nil {
		return nil, ErrNoUpdateFields
	}

	update := store.FlashcardUpdate{}
	if frontText != nil {
		trimmed := strings.TrimSpace(*frontText)
		if err := domain.ValidateFrontText(trimmed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFlashcard, err)
		}
		update.FrontText = &trimmed
	}
	if backText != nil {
		trimmed := strings.TrimSpace(*backText)
		if err := domain.ValidateBackText(trimmed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFlashcard, err)
		}
		update.BackText = &trimmed
	}

	card, err := s.flashcardStore.Update(ctx, cardID, userID, update)
	if err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			s.logger.Debug("flashcard not found for update",
				"card_id", cardID,
				"user_id", userID)
			return nil, ErrFlashcardNotFound
		}

		s.logger.Error("failed to update flashcard",
			"error", err,
			"card_id", cardID,
			"user_id", userID)
		return nil, NewFlashcardServiceError("update_flashcard", "failed to update flashcard", err)
	}

	s.logger.Info("flashcard updated",
		"card_id", cardID,
		"user_id", userID)

	return card, nil
}

// DeleteFlashcard permanently removes one of the user's flashcards.
func (s *flashcardServiceImpl) DeleteFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) error {
	err := s.flashcardStore.Delete(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			s.logger.Debug("flashcard not found for delete",
				"card_id", cardID,
				"user_id", userID)
			return ErrFlashcardNotFound
		}

		s.logger.Error("failed to delete flashcard",
			"error", err,
			"card_id", cardID,
			"user_id", userID)
		return NewFlashcardServiceError("delete_flashcard", "failed to delete flashcard", err)
	}

	s.logger.Info("flashcard deleted",
		"card_id", cardID,
		"user_id", userID)

	return nil
}

// DeleteFlashcards removes the user's cards among cardIDs in one statement.
func (s *flashcardServiceImpl) DeleteFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	deleted, err := s.flashcardStore.DeleteMany(ctx, userID, cardIDs)
	if err != nil {
		s.logger.Error("failed to bulk delete flashcards",
			"error", err,
			"user_id", userID,
			"requested", len(cardIDs))
		return nil, NewFlashcardServiceError("delete_flashcards", "failed to delete flashcards", err)
	}

	s.logger.Info("flashcards deleted",
		"user_id", userID,
		"requested", len(cardIDs),
		"deleted", len(deleted))

	return deleted, nil
}
