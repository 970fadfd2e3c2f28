package store

import (
	"errors"
	"fmt"

	"github.com/fiszkit/fiszkit-api/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrUserNotFound, ErrFlashcardNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete operation fails, for example
	// because the entity does not exist or is referenced by other entities.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrFlashcardNotFound indicates that the requested flashcard does not
	// exist or does not belong to the caller. Lookups are owner-scoped, so
	// the two cases are deliberately indistinguishable.
	ErrFlashcardNotFound = fmt.Errorf("%w: flashcard", ErrNotFound)

	// ErrBatchNotFound indicates that the requested generation batch does not
	// exist or does not belong to the caller.
	ErrBatchNotFound = fmt.Errorf("%w: generation batch", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrBatchAlreadyReviewed indicates that a generation batch has already
	// been transitioned out of its pending state. The conditional review
	// update returns this when it matches no pending row, which is how a
	// lost double-review race surfaces.
	ErrBatchAlreadyReviewed = errors.New("generation batch already reviewed")

	// ErrFlashcardLimitExceeded indicates that an insert would push an owner
	// past the flashcard capacity ceiling. Use errors.As with
	// *FlashcardLimitError to read the current count.
	ErrFlashcardLimitExceeded = errors.New("flashcard limit exceeded")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// FlashcardLimitError reports a rejected insert against the per-owner
// capacity ceiling. CurrentCount is the owner's count at the time of the
// check, before any of the attempted inserts.
type FlashcardLimitError struct {
	CurrentCount int
	Limit        int
}

// Error implements the error interface for FlashcardLimitError.
func (e *FlashcardLimitError) Error() string {
	return fmt.Sprintf("flashcard limit exceeded: %d of %d cards used", e.CurrentCount, e.Limit)
}

// Unwrap returns ErrFlashcardLimitExceeded so errors.Is matching works.
func (e *FlashcardLimitError) Unwrap() error {
	return ErrFlashcardLimitExceeded
}

// NewFlashcardLimitError creates a FlashcardLimitError for the given count
// against the domain capacity ceiling.
func NewFlashcardLimitError(currentCount int) *FlashcardLimitError {
	return &FlashcardLimitError{
		CurrentCount: currentCount,
		Limit:        domain.MaxFlashcardsPerUser,
	}
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "flashcard")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
