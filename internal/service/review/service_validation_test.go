package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiszkit/fiszkit-api/internal/domain"
)

func TestValidateDecisions_RejectIgnoresText(t *testing.T) {
	decisions := []domain.ReviewDecision{
		{Index: 0, Action: domain.ReviewActionReject},
		{Index: 1, Action: domain.ReviewActionReject, FrontText: "x"},
	}

	assert.NoError(t, validateDecisions(decisions, 2))
}

func TestValidateDecisions_TrimsBeforeMeasuring(t *testing.T) {
	decisions := []domain.ReviewDecision{
		{
			Index:     0,
			Action:    domain.ReviewActionAccept,
			FrontText: "  ten chars?  ",
			BackText:  "\tanswer text\n",
		},
	}
	assert.NoError(t, validateDecisions(decisions, 1))

	// Whitespace padding cannot rescue text that is too short.
	padded := []domain.ReviewDecision{
		{
			Index:     0,
			Action:    domain.ReviewActionAccept,
			FrontText: "        a        ",
			BackText:  backText,
		},
	}
	assert.ErrorIs(t, validateDecisions(padded, 1), ErrInvalidDecision)
}

func TestBuildFlashcards_DecisionOrder(t *testing.T) {
	ownerID := uuid.New()
	batchID := uuid.New()

	decisions := []domain.ReviewDecision{
		{Index: 2, Action: domain.ReviewActionAccept, FrontText: frontText, BackText: backText},
		{Index: 1, Action: domain.ReviewActionReject},
		{Index: 0, Action: domain.ReviewActionEdit, FrontText: frontText, BackText: editedText},
	}

	cards, err := buildFlashcards(ownerID, batchID, decisions)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	// Cards come out in decision order, not index order.
	assert.Equal(t, backText, cards[0].BackText)
	assert.False(t, cards[0].WasEdited)
	assert.Equal(t, editedText, cards[1].BackText)
	assert.True(t, cards[1].WasEdited)

	for _, card := range cards {
		assert.Equal(t, ownerID, card.UserID)
		assert.True(t, card.IsAIGenerated)
		require.NotNil(t, card.GenerationBatchID)
		assert.Equal(t, batchID, *card.GenerationBatchID)
	}
}

func TestBuildFlashcards_TrimsText(t *testing.T) {
	ownerID := uuid.New()
	batchID := uuid.New()

	decisions := []domain.ReviewDecision{
		{
			Index:     0,
			Action:    domain.ReviewActionAccept,
			FrontText: "  " + frontText + "  ",
			BackText:  backText + "\n",
		},
	}

	cards, err := buildFlashcards(ownerID, batchID, decisions)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, frontText, cards[0].FrontText)
	assert.Equal(t, backText, cards[0].BackText)
}
