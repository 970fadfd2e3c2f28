package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the review state of a generation batch
type BatchStatus string

// Possible batch status values. A batch is pending exactly once, at creation,
// and transitions to reviewed at most once.
const (
	BatchStatusPending  BatchStatus = "pending"
	BatchStatusReviewed BatchStatus = "reviewed"
)

// Bounds for the text submitted to the card generator, measured in Unicode
// code points after trimming.
const (
	GenerationInputMinLen = 1000
	GenerationInputMaxLen = 10000
)

// Common validation errors for GenerationBatch
var (
	ErrBatchIDEmpty       = errors.New("generation batch ID cannot be empty")
	ErrBatchUserIDEmpty   = errors.New("generation batch user ID cannot be empty")
	ErrBatchNoCards       = errors.New("generation batch must contain at least one generated card")
	ErrBatchModelEmpty    = errors.New("generation batch model identifier cannot be empty")
	ErrInvalidBatchStatus = errors.New("invalid generation batch status")
	ErrInvalidBatchCounts = errors.New("generation batch decision counts are invalid")
	ErrBatchInputTooShort = errors.New("generation input text must be at least 1000 characters")
	ErrBatchInputTooLong  = errors.New("generation input text must be at most 10000 characters")
	ErrBatchAlreadyClosed = errors.New("generation batch has already been reviewed")
)

// GenerationBatch tracks a single AI-generation attempt: how much text went
// in, how many candidates came out, and the reviewer's final verdict counts.
// The candidate cards themselves are ephemeral and never persisted; only this
// tracking record survives.
type GenerationBatch struct {
	ID                  uuid.UUID   `json:"id"`
	UserID              uuid.UUID   `json:"user_id"`
	Status              BatchStatus `json:"status"`
	InputTextLength     int         `json:"input_text_length"`
	TotalCardsGenerated int         `json:"total_cards_generated"`
	CardsAccepted       int         `json:"cards_accepted"`
	CardsRejected       int         `json:"cards_rejected"`
	CardsEdited         int         `json:"cards_edited"`
	ModelUsed           string      `json:"model_used"`
	TimeTakenMs         int64       `json:"time_taken_ms"`
	GeneratedAt         time.Time   `json:"generated_at"`
}

// NewGenerationBatch creates a batch record for a completed generation call.
// The batch starts pending with all decision counters at zero; that state
// changes exactly once, when the batch is reviewed.
func NewGenerationBatch(
	userID uuid.UUID,
	inputTextLength, totalCardsGenerated int,
	modelUsed string,
	timeTaken time.Duration,
) (*GenerationBatch, error) {
	batch := &GenerationBatch{
		ID:                  uuid.New(),
		UserID:              userID,
		Status:              BatchStatusPending,
		InputTextLength:     inputTextLength,
		TotalCardsGenerated: totalCardsGenerated,
		ModelUsed:           modelUsed,
		TimeTakenMs:         timeTaken.Milliseconds(),
		GeneratedAt:         time.Now().UTC(),
	}

	if err := batch.Validate(); err != nil {
		return nil, err
	}

	return batch, nil
}

// Validate checks if the GenerationBatch has valid data.
// Returns an error if any field fails validation.
func (b *GenerationBatch) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBatchIDEmpty
	}

	if b.UserID == uuid.Nil {
		return ErrBatchUserIDEmpty
	}

	if !isValidBatchStatus(b.Status) {
		return ErrInvalidBatchStatus
	}

	if b.TotalCardsGenerated < 1 {
		return ErrBatchNoCards
	}

	if b.ModelUsed == "" {
		return ErrBatchModelEmpty
	}

	if b.InputTextLength < GenerationInputMinLen {
		return ErrBatchInputTooShort
	}
	if b.InputTextLength > GenerationInputMaxLen {
		return ErrBatchInputTooLong
	}

	return validateBatchCounts(b.CardsAccepted, b.CardsRejected, b.CardsEdited, b.TotalCardsGenerated)
}

// IsReviewed reports whether the batch has been reviewed. Status is the
// authoritative signal; the counter sum is kept as a secondary guard because
// counters are zero exactly once, at creation.
func (b *GenerationBatch) IsReviewed() bool {
	return b.Status == BatchStatusReviewed || b.CardsAccepted+b.CardsRejected > 0
}

// MarkReviewed records the final decision counts and closes the batch.
// It fails if the batch was already reviewed or the counts are inconsistent
// with the number of generated candidates. Partial reviews are allowed, so
// the counts may sum to less than TotalCardsGenerated.
func (b *GenerationBatch) MarkReviewed(accepted, rejected, edited int) error {
	if b.IsReviewed() {
		return ErrBatchAlreadyClosed
	}

	if err := validateBatchCounts(accepted, rejected, edited, b.TotalCardsGenerated); err != nil {
		return err
	}

	b.Status = BatchStatusReviewed
	b.CardsAccepted = accepted
	b.CardsRejected = rejected
	b.CardsEdited = edited
	return nil
}

// validateBatchCounts checks that decision counters are non-negative and do
// not exceed the number of candidates the batch produced.
func validateBatchCounts(accepted, rejected, edited, total int) error {
	if accepted < 0 || rejected < 0 || edited < 0 {
		return ErrInvalidBatchCounts
	}
	if accepted+rejected+edited > total {
		return ErrInvalidBatchCounts
	}
	return nil
}

// isValidBatchStatus checks if the given status is a valid BatchStatus.
func isValidBatchStatus(status BatchStatus) bool {
	switch status {
	case BatchStatusPending, BatchStatusReviewed:
		return true
	default:
		return false
	}
}
