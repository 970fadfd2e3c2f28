package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/domain"
)

// ReviewResult summarizes a completed batch review: the final decision counts
// recorded on the batch and the flashcards created from accept and edit
// decisions, in decision order.
type ReviewResult struct {
	BatchID           uuid.UUID
	CardsAccepted     int
	CardsRejected     int
	CardsEdited       int
	CreatedFlashcards []*domain.Flashcard
}

// BatchReviewService applies reviewer decisions to a pending generation batch.
type BatchReviewService interface {
	// ReviewBatch applies a set of per-candidate decisions to a generation
	// batch as a single logical unit: flashcards are created for every
	// accept/edit decision, the batch records the final decision counts, and
	// nothing happens at all if any precondition fails.
	//
	// Preconditions are checked strictly in this order, each failure terminal
	// with no partial effects:
	// 1. The batch must exist and belong to ownerID (one owner-filtered
	//    lookup; a foreign batch is indistinguishable from a missing one)
	// 2. The batch must still be pending
	// 3. The decisions list must be well formed: non-empty, indices unique
	//    and inside [0, TotalCardsGenerated), accept/edit text within the
	//    flashcard text bounds after trimming
	// 4. The owner must have room for every card the decisions would create
	//
	// Parameters:
	//   - ctx: Context for the operation, which can include correlation ID and cancellation
	//   - ownerID: UUID of the authenticated batch owner
	//   - batchID: UUID of the batch under review
	//   - decisions: one entry per reviewed candidate; candidates without a
	//     decision are left out of every count (partial reviews are valid)
	//
	// Returns:
	//   - (*ReviewResult, nil): final counts and created flashcards
	//   - (nil, ErrBatchNotFound): unknown or foreign batch
	//   - (nil, ErrBatchAlreadyReviewed): batch was reviewed before this
	//     call, possibly by a concurrent request that won the claim
	//   - (nil, ErrInvalidDecision or a wrapping of it): malformed decisions
	//   - (nil, *store.FlashcardLimitError): the owner's capacity ceiling
	//     would be exceeded; carries the current count and the limit
	//   - (nil, error): any other error, typically from the database
	//
	// All writes happen in one transaction: a capacity or insert failure
	// rolls the batch claim back, leaving the batch pending.
	ReviewBatch(
		ctx context.Context,
		ownerID uuid.UUID,
		batchID uuid.UUID,
		decisions []domain.ReviewDecision,
	) (*ReviewResult, error)
}

// Common error types for BatchReviewService
var (
	// ErrBatchNotFound indicates that the batch does not exist or belongs to
	// another user. The two cases are deliberately indistinguishable.
	ErrBatchNotFound = errors.New("generation batch not found")

	// ErrBatchAlreadyReviewed indicates that the batch has already been
	// reviewed; a batch is reviewed at most once.
	ErrBatchAlreadyReviewed = errors.New("generation batch already reviewed")

	// ErrInvalidDecision indicates a malformed review submission. The more
	// specific failures below wrap it, so errors.Is(err, ErrInvalidDecision)
	// matches all of them.
	ErrInvalidDecision = errors.New("invalid review decision")

	// ErrNoDecisions indicates an empty decisions list.
	ErrNoDecisions = fmt.Errorf("%w: at least one decision is required", ErrInvalidDecision)

	// ErrDecisionIndexOutOfRange indicates a decision index at or past the
	// number of candidates the batch generated.
	ErrDecisionIndexOutOfRange = fmt.Errorf(
		"%w: decision index outside the batch's candidate range",
		ErrInvalidDecision,
	)

	// ErrDuplicateDecisionIndex indicates two decisions targeting the same
	// candidate.
	ErrDuplicateDecisionIndex = fmt.Errorf(
		"%w: more than one decision for the same candidate",
		ErrInvalidDecision,
	)
)

// ServiceError wraps errors from the batch review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "review_batch")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewReviewBatchError returns a new ServiceError for the review_batch operation.
func NewReviewBatchError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "review_batch",
		Message:   message,
		Err:       err,
	}
}
