package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow implements the single-row Scan interface with canned values.
type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = v.(uuid.UUID)
		case *uuid.NullUUID:
			*d = v.(uuid.NullUUID)
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		}
	}
	return nil
}

func TestScanFlashcard(t *testing.T) {
	t.Parallel()

	cardID := uuid.New()
	ownerID := uuid.New()
	batchID := uuid.New()
	now := time.Now().UTC()

	t.Run("generated card with batch reference", func(t *testing.T) {
		t.Parallel()

		card, err := scanFlashcard(fakeRow{values: []any{
			cardID,
			ownerID,
			"What is the capital of France?",
			"Paris is the capital of France.",
			true,
			false,
			uuid.NullUUID{UUID: batchID, Valid: true},
			now,
			now,
		}})
		require.NoError(t, err)

		assert.Equal(t, cardID, card.ID)
		assert.Equal(t, ownerID, card.UserID)
		assert.True(t, card.IsAIGenerated)
		assert.False(t, card.WasEdited)
		require.NotNil(t, card.GenerationBatchID)
		assert.Equal(t, batchID, *card.GenerationBatchID)
	})

	t.Run("manual card has nil batch reference", func(t *testing.T) {
		t.Parallel()

		card, err := scanFlashcard(fakeRow{values: []any{
			cardID,
			ownerID,
			"What is the capital of France?",
			"Paris is the capital of France.",
			false,
			false,
			uuid.NullUUID{},
			now,
			now,
		}})
		require.NoError(t, err)

		assert.False(t, card.IsAIGenerated)
		assert.Nil(t, card.GenerationBatchID)
	})
}

func TestNewPostgresFlashcardStore_NilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewPostgresFlashcardStore(nil, nil)
	})
}

func TestNewPostgresGenerationBatchStore_NilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewPostgresGenerationBatchStore(nil, nil)
	})
}

func TestNewPostgresUserStore_NilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewPostgresUserStore(nil, 10, nil)
	})
}
