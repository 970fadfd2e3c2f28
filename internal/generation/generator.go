package generation

import (
	"context"
	"time"
)

// Candidate is one proposed flashcard produced by a generator. Index is the
// candidate's position in the generator's output; reviewers refer back to it
// by that index when submitting decisions, so order must be stable.
type Candidate struct {
	Index     int    `json:"index"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

// GenerationResult carries the ordered candidates from one generation call
// together with its provenance.
type GenerationResult struct {
	// Candidates holds the proposed cards in generation order. Candidate
	// indices run 0..len(Candidates)-1 with no gaps.
	Candidates []Candidate

	// ModelUsed names the model that produced the candidates.
	ModelUsed string

	// TimeTaken is the wall-clock duration of the generation call.
	TimeTaken time.Duration
}

// CardGenerator defines the interface for producing flashcard candidates from
// input text. This interface is the boundary between the application core and
// external AI/LLM services.
type CardGenerator interface {
	// GenerateCards produces ordered flashcard candidates for the given
	// input text. Callers validate input length bounds beforehand;
	// implementations still return ErrEmptyInput for blank text.
	//
	// Failures map to the package sentinels: ErrRateLimited and
	// ErrUnavailable may succeed on a later request, while
	// ErrInvalidModelOutput and ErrContentBlocked are permanent for this
	// input.
	GenerateCards(ctx context.Context, inputText string) (*GenerationResult, error)
}
