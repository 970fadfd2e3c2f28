package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/generation"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// GenerationOutcome bundles the persisted batch record with the ephemeral
// candidates from one generation call. Candidates live only in this value and
// in the HTTP response built from it; they are never stored.
type GenerationOutcome struct {
	Batch      *domain.GenerationBatch
	Candidates []generation.Candidate
}

// GenerationService turns pasted study text into flashcard candidates and
// tracks each attempt as a generation batch.
type GenerationService interface {
	// GenerateCards validates the input text, invokes the card generator
	// synchronously, and records a pending batch for the result. Generator
	// sentinel failures (rate limit, unavailable, blocked, malformed output)
	// pass through untouched; they occur strictly before a batch row exists.
	GenerateCards(ctx context.Context, userID uuid.UUID, inputText string) (*GenerationOutcome, error)

	// GetBatch retrieves one of the user's batches by ID.
	GetBatch(ctx context.Context, userID, batchID uuid.UUID) (*domain.GenerationBatch, error)
}

// Common sentinel errors for GenerationService
var (
	// ErrInvalidInputText indicates input outside the accepted character
	// window after trimming.
	ErrInvalidInputText = errors.New("generation input text is invalid")

	// ErrBatchNotFound indicates that the batch does not exist or belongs to
	// another user.
	ErrBatchNotFound = errors.New("generation batch not found")
)

// GenerationServiceError wraps errors from the generation service with context.
type GenerationServiceError struct {
	// Operation is the operation that failed (e.g., "generate_cards", "get_batch")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GenerationServiceError.
func (e *GenerationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("generation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}

// NewGenerationServiceError creates a new GenerationServiceError.
// It returns known sentinel errors directly without wrapping.
func NewGenerationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrInvalidInputText) || errors.Is(err, ErrBatchNotFound) {
		return err
	}

	if errors.Is(err, store.ErrBatchNotFound) {
		return ErrBatchNotFound
	}

	return &GenerationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// generationServiceImpl implements the GenerationService interface
type generationServiceImpl struct {
	db         *sql.DB
	batchStore store.GenerationBatchStore
	generator  generation.CardGenerator
	logger     *slog.Logger
}

// NewGenerationService creates a new GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	db *sql.DB,
	batchStore store.GenerationBatchStore,
	generator generation.CardGenerator,
	logger *slog.Logger,
) (GenerationService, error) {
	if db == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if batchStore == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "batchStore cannot be nil",
		}
	}
	if generator == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "generator cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		db:         db,
		batchStore: batchStore,
		generator:  generator,
		logger:     logger.With("component", "generation_service"),
	}, nil
}

// GenerateCards runs one synchronous generation attempt for the user.
func (s *generationServiceImpl) GenerateCards(
	ctx context.Context,
	userID uuid.UUID,
	inputText string,
) (*GenerationOutcome, error) {
	input := strings.TrimSpace(inputText)
	inputLength := utf8.RuneCountInString(input)

	if err := validateInputText(inputLength); err != nil {
		s.logger.Warn("rejected generation input",
			"error", err,
			"user_id", userID,
			"input_length", inputLength)
		return nil, err
	}

	s.logger.Debug("generating flashcard candidates",
		"user_id", userID,
		"input_length", inputLength)

	genResult, err := s.generator.GenerateCards(ctx, input)
	if err != nil {
		s.logger.Error("card generation failed",
			"error", err,
			"user_id", userID,
			"input_length", inputLength)
		// Generator sentinels carry their own HTTP mapping; pass them
		// through untouched. No batch row exists at this point.
		return nil, err
	}

	batch, err := domain.NewGenerationBatch(
		userID,
		inputLength,
		len(genResult.Candidates),
		genResult.ModelUsed,
		genResult.TimeTaken,
	)
	if err != nil {
		s.logger.Error("failed to create batch object",
			"error", err,
			"user_id", userID)
		return nil, NewGenerationServiceError("generate_cards", "failed to create batch record", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.batchStore.WithTx(tx).Create(ctx, batch); err != nil {
			s.logger.Error("failed to save generation batch",
				"error", err,
				"batch_id", batch.ID,
				"user_id", userID)
			return NewGenerationServiceError("generate_cards", "failed to save batch record", err)
		}
		return nil
	})
	if err != nil {
		// Error is already wrapped in the transaction
		return nil, err
	}

	s.logger.Info("generation batch created",
		"batch_id", batch.ID,
		"user_id", userID,
		"cards_generated", batch.TotalCardsGenerated,
		"model", batch.ModelUsed,
		"time_taken_ms", batch.TimeTakenMs)

	return &GenerationOutcome{
		Batch:      batch,
		Candidates: genResult.Candidates,
	}, nil
}

// GetBatch retrieves one of the user's batches by ID.
func (s *generationServiceImpl) GetBatch(
	ctx context.Context,
	userID, batchID uuid.UUID,
) (*domain.GenerationBatch, error) {
	batch, err := s.batchStore.GetByIDForOwner(ctx, batchID, userID)
	if err != nil {
		if errors.Is(err, store.ErrBatchNotFound) {
			s.logger.Debug("batch not found",
				"batch_id", batchID,
				"user_id", userID)
			return nil, ErrBatchNotFound
		}

		s.logger.Error("failed to retrieve batch",
			"error", err,
			"batch_id", batchID,
			"user_id", userID)
		return nil, NewGenerationServiceError("get_batch", "failed to retrieve batch", err)
	}

	return batch, nil
}

// validateInputText checks the trimmed input length in code points against
// the generation window.
func validateInputText(length int) error {
	if length < domain.GenerationInputMinLen {
		return fmt.Errorf("%w: %v", ErrInvalidInputText, domain.ErrBatchInputTooShort)
	}
	if length > domain.GenerationInputMaxLen {
		return fmt.Errorf("%w: %v", ErrInvalidInputText, domain.ErrBatchInputTooLong)
	}
	return nil
}
