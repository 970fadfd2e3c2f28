package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/platform/logger"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// sqlBuilder builds the dynamic flashcard queries with $n placeholders.
var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// flashcardColumns is the column list every flashcard query selects, in the
// order scanFlashcard reads them.
const flashcardColumns = "id, user_id, front_text, back_text, is_ai_generated, " +
	"was_edited, generation_batch_id, created_at, updated_at"

// defaultListLimit caps unbounded list requests.
const defaultListLimit = 20

// PostgresFlashcardStore implements the store.FlashcardStore interface using
// a PostgreSQL database.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Verify PostgresFlashcardStore implements store.FlashcardStore
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// NewPostgresFlashcardStore creates a new PostgresFlashcardStore using the
// given database connection or transaction.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// WithTx implements store.FlashcardStore.WithTx
// It returns a new store instance that runs its statements on the given
// transaction.
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanFlashcard reads one flashcard row in flashcardColumns order.
func scanFlashcard(row interface{ Scan(dest ...any) error }) (*domain.Flashcard, error) {
	var (
		card    domain.Flashcard
		batchID uuid.NullUUID
	)

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.FrontText,
		&card.BackText,
		&card.IsAIGenerated,
		&card.WasEdited,
		&batchID,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if batchID.Valid {
		card.GenerationBatchID = &batchID.UUID
	}
	return &card, nil
}

// CountByOwner implements store.FlashcardStore.CountByOwner
// It returns the owner's current number of flashcards.
func (s *PostgresFlashcardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM flashcards WHERE user_id = $1",
		ownerID,
	).Scan(&count)
	if err != nil {
		log.Error("failed to count flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return 0, err
	}

	return count, nil
}

// Create implements store.FlashcardStore.Create
// It saves a single flashcard through the same capacity-guarded path as
// CreateMany.
func (s *PostgresFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	return s.CreateMany(ctx, []*domain.Flashcard{card})
}

// CreateMany implements store.FlashcardStore.CreateMany
// It validates every card, locks the owner's user row, re-checks the capacity
// ceiling under that lock, and inserts all cards in one statement. Run it
// inside a transaction; the lock is released at commit or rollback.
// Returns a *store.FlashcardLimitError when the set would exceed the ceiling.
func (s *PostgresFlashcardStore) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	// Validate card data; all cards must share one owner
	ownerID := cards[0].UserID
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during create",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return err
		}
		if card.UserID != ownerID {
			log.Warn("mixed owners in flashcard batch",
				slog.String("user_id", ownerID.String()))
			return fmt.Errorf("%w: all flashcards in one batch must share an owner",
				store.ErrInvalidEntity)
		}
	}

	// Lock the owner's user row so concurrent inserts for the same owner
	// serialize on the capacity check. Different owners never contend.
	var lockedID uuid.UUID
	err := s.db.QueryRowContext(
		ctx,
		"SELECT id FROM users WHERE id = $1 FOR UPDATE",
		ownerID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("owner not found during flashcard create",
				slog.String("user_id", ownerID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, ownerID)
		}

		log.Error("failed to lock owner row",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return err
	}

	// Capacity check under the owner lock
	count, err := s.CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if count+len(cards) > domain.MaxFlashcardsPerUser {
		log.Debug("flashcard limit would be exceeded",
			slog.String("user_id", ownerID.String()),
			slog.Int("current_count", count),
			slog.Int("requested", len(cards)))
		return store.NewFlashcardLimitError(count)
	}

	insert := sqlBuilder.Insert("flashcards").Columns(
		"id", "user_id", "front_text", "back_text",
		"is_ai_generated", "was_edited", "generation_batch_id",
		"created_at", "updated_at",
	)
	for _, card := range cards {
		insert = insert.Values(
			card.ID,
			card.UserID,
			card.FrontText,
			card.BackText,
			card.IsAIGenerated,
			card.WasEdited,
			card.GenerationBatchID,
			card.CreatedAt,
			card.UpdatedAt,
		)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		log.Error("failed to build flashcard insert",
			slog.String("error", err.Error()))
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		// Check for foreign key violation on user or batch references
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during flashcard create",
				slog.String("error", err.Error()),
				slog.String("user_id", ownerID.String()))
			return fmt.Errorf("%w: referenced user or generation batch not found",
				store.ErrInvalidEntity)
		}

		log.Error("failed to insert flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()),
			slog.Int("count", len(cards)))
		return err
	}

	log.Info("flashcards created successfully",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
// It retrieves a flashcard by ID and owner in one filtered lookup.
// Returns store.ErrFlashcardNotFound whether the card is missing or belongs
// to another user.
func (s *PostgresFlashcardStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Flashcard, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving flashcard",
		slog.String("flashcard_id", id.String()))

	query := "SELECT " + flashcardColumns + " FROM flashcards WHERE id = $1 AND user_id = $2"

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found",
				slog.String("flashcard_id", id.String()))
			return nil, store.ErrFlashcardNotFound
		}

		log.Error("failed to get flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, err
	}

	return card, nil
}

// List implements store.FlashcardStore.List
// It returns a window of the owner's flashcards, newest first. A
// non-positive limit falls back to defaultListLimit and a negative offset is
// treated as zero. Returns an empty slice, not nil, when nothing matches.
func (s *PostgresFlashcardStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query, args, err := sqlBuilder.Select(
		"id", "user_id", "front_text", "back_text",
		"is_ai_generated", "was_edited", "generation_batch_id",
		"created_at", "updated_at",
	).
		From("flashcards").
		Where(squirrel.Eq{"user_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		log.Error("failed to build flashcard list query",
			slog.String("error", err.Error()))
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("error closing rows",
				slog.String("error", closeErr.Error()))
		}
	}()

	cards := []*domain.Flashcard{}
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row",
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating flashcard rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("flashcards listed",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// Update implements store.FlashcardStore.Update
// It applies a partial text update to an owned flashcard in one statement and
// returns the updated record. Callers trim and validate the new text before
// persisting. Any text update marks the card edited and refreshes updated_at.
// Returns store.ErrFlashcardNotFound when no owned row matches.
func (s *PostgresFlashcardStore) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	update store.FlashcardUpdate,
) (*domain.Flashcard, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.FrontText == nil && update.BackText == nil {
		log.Warn("empty flashcard update",
			slog.String("flashcard_id", id.String()))
		return nil, fmt.Errorf("%w: no fields to update", store.ErrInvalidEntity)
	}

	builder := sqlBuilder.Update("flashcards").
		Set("was_edited", true).
		Set("updated_at", time.Now().UTC())
	if update.FrontText != nil {
		builder = builder.Set("front_text", *update.FrontText)
	}
	if update.BackText != nil {
		builder = builder.Set("back_text", *update.BackText)
	}

	query, args, err := builder.
		Where(squirrel.Eq{"id": id, "user_id": ownerID}).
		Suffix("RETURNING " + flashcardColumns).
		ToSql()
	if err != nil {
		log.Error("failed to build flashcard update query",
			slog.String("error", err.Error()))
		return nil, err
	}

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found during update",
				slog.String("flashcard_id", id.String()))
			return nil, store.ErrFlashcardNotFound
		}

		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, err
	}

	log.Info("flashcard updated successfully",
		slog.String("flashcard_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return card, nil
}

// Delete implements store.FlashcardStore.Delete
// It permanently removes an owned flashcard.
// Returns store.ErrFlashcardNotFound when no owned row matches.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM flashcards WHERE id = $1 AND user_id = $2",
		id,
		ownerID,
	)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("flashcard not found during delete",
			slog.String("flashcard_id", id.String()))
		return store.ErrFlashcardNotFound
	}

	log.Info("flashcard deleted successfully",
		slog.String("flashcard_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// DeleteMany implements store.FlashcardStore.DeleteMany
// It removes the intersection of ids with the owner's cards and returns the
// ids actually deleted. Ids that don't exist or belong to another user are
// skipped without error.
func (s *PostgresFlashcardStore) DeleteMany(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]uuid.UUID, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}

	query, args, err := sqlBuilder.Delete("flashcards").
		Where(squirrel.Eq{"user_id": ownerID}).
		Where(squirrel.Eq{"id": ids}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		log.Error("failed to build flashcard bulk delete query",
			slog.String("error", err.Error()))
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to bulk delete flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("error closing rows",
				slog.String("error", closeErr.Error()))
		}
	}()

	deleted := []uuid.UUID{}
	for rows.Next() {
		var deletedID uuid.UUID
		if err := rows.Scan(&deletedID); err != nil {
			log.Error("failed to scan deleted flashcard ID",
				slog.String("error", err.Error()))
			return nil, err
		}
		deleted = append(deleted, deletedID)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating deleted flashcard rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("flashcards deleted",
		slog.String("user_id", ownerID.String()),
		slog.Int("requested", len(ids)),
		slog.Int("deleted", len(deleted)))
	return deleted, nil
}
