package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
)

// FlashcardUpdate describes a partial text update. A nil field leaves that
// side of the card unchanged; at least one field must be set.
type FlashcardUpdate struct {
	FrontText *string
	BackText  *string
}

// FlashcardStore defines the interface for flashcard data persistence.
//
// Every read and write is owner-scoped: callers pass the authenticated
// owner's ID and implementations must never touch another owner's rows.
type FlashcardStore interface {
	// CountByOwner returns the owner's current number of flashcards.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)

	// Create saves a single flashcard, enforcing the per-owner capacity
	// ceiling. Returns a *FlashcardLimitError (matching
	// ErrFlashcardLimitExceeded) when the owner is already at capacity.
	//
	// IMPORTANT: run this within a transaction (WithTx +
	// store.RunInTransaction) so the capacity check and the insert are
	// atomic; outside a transaction the ceiling is only best-effort.
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateMany saves a set of flashcards belonging to one owner, enforcing
	// the capacity ceiling across the whole set: either every card is
	// inserted or none are. Returns a *FlashcardLimitError when
	// count+len(cards) would exceed the ceiling.
	//
	// IMPORTANT: this method MUST be run within a transaction for the
	// all-or-nothing and capacity guarantees to hold. Use WithTx together
	// with store.RunInTransaction:
	//
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return flashcardStore.WithTx(tx).CreateMany(ctx, cards)
	//   })
	CreateMany(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a flashcard by ID, filtered by owner in the same
	// lookup. Returns ErrFlashcardNotFound whether the card is missing or
	// belongs to someone else.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Flashcard, error)

	// List returns a window of the owner's flashcards, newest first.
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)

	// Update applies a partial text update to an owned flashcard and returns
	// the updated record. Any text change sets was_edited and refreshes
	// updated_at. Returns ErrFlashcardNotFound when no owned row matches.
	Update(ctx context.Context, id, ownerID uuid.UUID, update FlashcardUpdate) (*domain.Flashcard, error)

	// Delete permanently removes an owned flashcard.
	// Returns ErrFlashcardNotFound when no owned row matches.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// DeleteMany permanently removes the intersection of ids with the
	// owner's cards and returns the ids actually deleted. Ids that don't
	// exist or belong to someone else are silently skipped, never an error.
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns a new FlashcardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) FlashcardStore
}
