package domain

import "testing"

func TestReviewDecisionValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		decision ReviewDecision
		wantErr  error
	}{
		{"accept", ReviewDecision{Index: 0, Action: ReviewActionAccept}, nil},
		{"reject", ReviewDecision{Index: 3, Action: ReviewActionReject}, nil},
		{"edit", ReviewDecision{Index: 1, Action: ReviewActionEdit}, nil},
		{"negative index", ReviewDecision{Index: -1, Action: ReviewActionAccept}, ErrNegativeDecisionIndex},
		{"unknown action", ReviewDecision{Index: 0, Action: "approve"}, ErrInvalidReviewAction},
		{"empty action", ReviewDecision{Index: 0}, ErrInvalidReviewAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.decision.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestReviewDecisionCreatesFlashcard(t *testing.T) {
	t.Parallel()

	if !(ReviewDecision{Action: ReviewActionAccept}).CreatesFlashcard() {
		t.Error("Expected accept to create a flashcard")
	}
	if !(ReviewDecision{Action: ReviewActionEdit}).CreatesFlashcard() {
		t.Error("Expected edit to create a flashcard")
	}
	if (ReviewDecision{Action: ReviewActionReject}).CreatesFlashcard() {
		t.Error("Expected reject not to create a flashcard")
	}
}
