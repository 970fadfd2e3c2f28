package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/platform/logger"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// PostgresGenerationBatchStore implements the store.GenerationBatchStore
// interface using a PostgreSQL database.
type PostgresGenerationBatchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Verify PostgresGenerationBatchStore implements store.GenerationBatchStore
var _ store.GenerationBatchStore = (*PostgresGenerationBatchStore)(nil)

// NewPostgresGenerationBatchStore creates a new PostgresGenerationBatchStore
// using the given database connection or transaction.
func NewPostgresGenerationBatchStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationBatchStore {
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationBatchStore{
		db:     db,
		logger: logger.With(slog.String("component", "batch_store")),
	}
}

// WithTx implements store.GenerationBatchStore.WithTx
// It returns a new store instance that runs its statements on the given
// transaction.
func (s *PostgresGenerationBatchStore) WithTx(tx *sql.Tx) store.GenerationBatchStore {
	return &PostgresGenerationBatchStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.GenerationBatchStore.Create
// It saves a new batch tracking record, handling domain validation.
// Returns store.ErrInvalidEntity if the owner doesn't exist (foreign key
// violation).
func (s *PostgresGenerationBatchStore) Create(ctx context.Context, batch *domain.GenerationBatch) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate batch data
	if err := batch.Validate(); err != nil {
		log.Warn("batch validation failed during create",
			slog.String("error", err.Error()),
			slog.String("batch_id", batch.ID.String()))
		return err
	}

	query := `
		INSERT INTO generation_batches
			(id, user_id, status, input_text_length, total_cards_generated,
			 cards_accepted, cards_rejected, cards_edited, model_used,
			 time_taken_ms, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		batch.ID,
		batch.UserID,
		batch.Status,
		batch.InputTextLength,
		batch.TotalCardsGenerated,
		batch.CardsAccepted,
		batch.CardsRejected,
		batch.CardsEdited,
		batch.ModelUsed,
		batch.TimeTakenMs,
		batch.GeneratedAt,
	)

	if err != nil {
		// Check for foreign key violation
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during batch creation",
				slog.String("error", err.Error()),
				slog.String("batch_id", batch.ID.String()),
				slog.String("user_id", batch.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, batch.UserID)
		}

		log.Error("failed to create generation batch",
			slog.String("error", err.Error()),
			slog.String("batch_id", batch.ID.String()),
			slog.String("user_id", batch.UserID.String()))
		return err
	}

	log.Info("generation batch created successfully",
		slog.String("batch_id", batch.ID.String()),
		slog.String("user_id", batch.UserID.String()),
		slog.Int("total_cards_generated", batch.TotalCardsGenerated))
	return nil
}

// GetByIDForOwner implements store.GenerationBatchStore.GetByIDForOwner
// It retrieves a batch by ID and owner in one filtered lookup.
// Returns store.ErrBatchNotFound whether the batch is missing or belongs to
// another user, so callers can't probe for foreign batch IDs.
func (s *PostgresGenerationBatchStore) GetByIDForOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.GenerationBatch, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving generation batch",
		slog.String("batch_id", id.String()))

	query := `
		SELECT id, user_id, status, input_text_length, total_cards_generated,
		       cards_accepted, cards_rejected, cards_edited, model_used,
		       time_taken_ms, generated_at
		FROM generation_batches
		WHERE id = $1 AND user_id = $2
	`

	var batch domain.GenerationBatch
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&batch.ID,
		&batch.UserID,
		&batch.Status,
		&batch.InputTextLength,
		&batch.TotalCardsGenerated,
		&batch.CardsAccepted,
		&batch.CardsRejected,
		&batch.CardsEdited,
		&batch.ModelUsed,
		&batch.TimeTakenMs,
		&batch.GeneratedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generation batch not found",
				slog.String("batch_id", id.String()))
			return nil, store.ErrBatchNotFound
		}

		log.Error("failed to get generation batch",
			slog.String("error", err.Error()),
			slog.String("batch_id", id.String()))
		return nil, err
	}

	log.Debug("generation batch retrieved successfully",
		slog.String("batch_id", id.String()),
		slog.String("status", string(batch.Status)))
	return &batch, nil
}

// FinalizeReview implements store.GenerationBatchStore.FinalizeReview
// It transitions a pending batch to reviewed and records the decision counts
// in one conditional update. Zero affected rows means no pending row matched;
// callers look the batch up first in the same transaction, so that reports
// the batch as already reviewed rather than missing.
func (s *PostgresGenerationBatchStore) FinalizeReview(
	ctx context.Context,
	id, ownerID uuid.UUID,
	accepted, rejected, edited int,
) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("finalizing batch review",
		slog.String("batch_id", id.String()),
		slog.Int("accepted", accepted),
		slog.Int("rejected", rejected),
		slog.Int("edited", edited))

	if accepted < 0 || rejected < 0 || edited < 0 {
		log.Warn("negative decision counts during review finalize",
			slog.String("batch_id", id.String()))
		return fmt.Errorf("%w: decision counts cannot be negative",
			store.ErrInvalidEntity)
	}

	query := `
		UPDATE generation_batches
		SET status = $1, cards_accepted = $2, cards_rejected = $3, cards_edited = $4
		WHERE id = $5 AND user_id = $6 AND status = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.BatchStatusReviewed,
		accepted,
		rejected,
		edited,
		id,
		ownerID,
		domain.BatchStatusPending,
	)

	if err != nil {
		// The counters carry a check constraint capping their sum at the
		// generated total
		if isCheckViolation(err) {
			log.Warn("decision counts exceed generated total",
				slog.String("error", err.Error()),
				slog.String("batch_id", id.String()))
			return fmt.Errorf("%w: decision counts exceed cards generated",
				store.ErrInvalidEntity)
		}

		log.Error("failed to finalize batch review",
			slog.String("error", err.Error()),
			slog.String("batch_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("batch_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("no pending batch matched during review finalize",
			slog.String("batch_id", id.String()))
		return store.ErrBatchAlreadyReviewed
	}

	log.Info("batch review finalized",
		slog.String("batch_id", id.String()),
		slog.String("user_id", ownerID.String()),
		slog.Int("accepted", accepted),
		slog.Int("rejected", rejected),
		slog.Int("edited", edited))
	return nil
}
