package domain

import "errors"

// ReviewAction is the verdict a reviewer passes on one generated candidate.
type ReviewAction string

// Possible review actions
const (
	ReviewActionAccept ReviewAction = "accept"
	ReviewActionReject ReviewAction = "reject"
	ReviewActionEdit   ReviewAction = "edit"
)

// Decision validation errors
var (
	ErrInvalidReviewAction   = errors.New("review action must be accept, reject or edit")
	ErrNegativeDecisionIndex = errors.New("decision index cannot be negative")
)

// ReviewDecision is one reviewer verdict on a generated candidate, correlated
// to the candidate by its zero-based index within the batch. Decisions are
// ephemeral input; they are never persisted themselves.
//
// FrontText and BackText carry the text to persist when the decision creates
// a flashcard: the candidate text as generated for accept, the user-modified
// text for edit. For reject they are ignored.
type ReviewDecision struct {
	Index     int
	Action    ReviewAction
	FrontText string
	BackText  string
}

// CreatesFlashcard reports whether applying this decision persists a card.
func (d ReviewDecision) CreatesFlashcard() bool {
	return d.Action == ReviewActionAccept || d.Action == ReviewActionEdit
}

// Validate checks the decision's shape independent of any batch: the action
// must be known and the index non-negative. Bounds against a batch's
// candidate count are the review engine's concern.
func (d ReviewDecision) Validate() error {
	if d.Index < 0 {
		return ErrNegativeDecisionIndex
	}

	switch d.Action {
	case ReviewActionAccept, ReviewActionReject, ReviewActionEdit:
		return nil
	default:
		return ErrInvalidReviewAction
	}
}
