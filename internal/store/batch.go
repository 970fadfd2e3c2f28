package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
)

// GenerationBatchStore defines the interface for generation batch persistence.
type GenerationBatchStore interface {
	// Create saves a new batch tracking record. Batches are created pending
	// with all decision counters at zero.
	Create(ctx context.Context, batch *domain.GenerationBatch) error

	// GetByIDForOwner retrieves a batch by ID and owner in a single filtered
	// lookup. Returns ErrBatchNotFound whether the batch is missing or
	// belongs to someone else; callers cannot distinguish the two, which
	// keeps other users' batch IDs unguessable.
	GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.GenerationBatch, error)

	// FinalizeReview transitions a pending batch to reviewed and records the
	// decision counts, in one conditional update guarded on the pending
	// status. Returns ErrBatchAlreadyReviewed when no pending row matches,
	// which is how the losing side of a concurrent double review finds out.
	FinalizeReview(ctx context.Context, id, ownerID uuid.UUID, accepted, rejected, edited int) error

	// WithTx returns a new GenerationBatchStore instance that uses the
	// provided transaction. The transaction is created and managed by the
	// caller.
	WithTx(tx *sql.Tx) GenerationBatchStore
}
