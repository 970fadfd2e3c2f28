package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", store.ErrNotFound, true},
		{"ErrUserNotFound", store.ErrUserNotFound, true},
		{"ErrFlashcardNotFound", store.ErrFlashcardNotFound, true},
		{"ErrBatchNotFound", store.ErrBatchNotFound, true},
		{"wrapped ErrFlashcardNotFound", fmt.Errorf("lookup failed: %w", store.ErrFlashcardNotFound), true},
		{"ErrBatchAlreadyReviewed is not a not-found", store.ErrBatchAlreadyReviewed, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, store.IsNotFoundError(tc.err))
		})
	}

	// Entity-specific not-found errors still match the generic sentinel.
	assert.True(t, errors.Is(store.ErrBatchNotFound, store.ErrNotFound))
	assert.True(t, errors.Is(store.ErrFlashcardNotFound, store.ErrNotFound))
}

func TestDuplicateErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsDuplicateError(store.ErrEmailExists))
	assert.True(t, store.IsDuplicateError(fmt.Errorf("create failed: %w", store.ErrDuplicate)))
	assert.False(t, store.IsDuplicateError(store.ErrNotFound))
	assert.True(t, errors.Is(store.ErrEmailExists, store.ErrDuplicate))
}

func TestFlashcardLimitError(t *testing.T) {
	t.Parallel()

	err := store.NewFlashcardLimitError(498)

	assert.Equal(t, 498, err.CurrentCount)
	assert.Equal(t, domain.MaxFlashcardsPerUser, err.Limit)
	assert.Equal(t, "flashcard limit exceeded: 498 of 500 cards used", err.Error())

	// Matches the sentinel through Unwrap, including when wrapped again.
	assert.True(t, errors.Is(err, store.ErrFlashcardLimitExceeded))
	wrapped := fmt.Errorf("insert rejected: %w", err)
	assert.True(t, errors.Is(wrapped, store.ErrFlashcardLimitExceeded))

	// errors.As recovers the counts from a wrapped chain.
	var limitErr *store.FlashcardLimitError
	require.True(t, errors.As(wrapped, &limitErr))
	assert.Equal(t, 498, limitErr.CurrentCount)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	base := errors.New("connection refused")
	err := store.NewStoreError("flashcard", "create", "failed to save flashcard", base)

	assert.Contains(t, err.Error(), "create operation on flashcard failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, base))

	noCause := store.NewStoreError("user", "get", "failed to get user", nil)
	assert.Equal(t, "get operation on user failed: failed to get user", noCause.Error())
}
