package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fiszkit/fiszkit-api/internal/api/shared"
	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/generation"
	"github.com/fiszkit/fiszkit-api/internal/service"
	"github.com/fiszkit/fiszkit-api/internal/service/auth"
	"github.com/fiszkit/fiszkit-api/internal/service/review"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Capacity errors
	case errors.Is(err, store.ErrFlashcardLimitExceeded):
		return http.StatusForbidden

	// Not found errors. Owner-scoped lookups fold "exists but not yours"
	// into "not found", so there is no separate status for foreign entities.
	case errors.Is(err, service.ErrBatchNotFound),
		errors.Is(err, review.ErrBatchNotFound),
		errors.Is(err, service.ErrFlashcardNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, review.ErrBatchAlreadyReviewed),
		errors.Is(err, store.ErrBatchAlreadyReviewed):
		return http.StatusConflict

	// Generator failures
	case errors.Is(err, generation.ErrRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, generation.ErrUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrInvalidModelOutput),
		errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, service.ErrInvalidInputText),
		errors.Is(err, service.ErrInvalidFlashcard),
		errors.Is(err, service.ErrNoUpdateFields),
		errors.Is(err, review.ErrInvalidDecision),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	// Field-level validation failures carry a message built from the field
	// name and static text, so it can be returned as-is.
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Capacity errors
	case errors.Is(err, store.ErrFlashcardLimitExceeded):
		return "Flashcard limit exceeded"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrFlashcardNotFound),
		errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found"

	case errors.Is(err, service.ErrBatchNotFound),
		errors.Is(err, review.ErrBatchNotFound),
		errors.Is(err, store.ErrBatchNotFound):
		return "Generation batch not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, review.ErrBatchAlreadyReviewed),
		errors.Is(err, store.ErrBatchAlreadyReviewed):
		return "Generation batch already reviewed"

	// Generator failures
	case errors.Is(err, generation.ErrRateLimited):
		return "Generation rate limit exceeded, try again later"

	case errors.Is(err, generation.ErrUnavailable):
		return "Generation service unavailable, try again later"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Generation was blocked by the model's safety filters"

	case errors.Is(err, generation.ErrInvalidModelOutput):
		return "Generation produced unusable output, try again"

	// Validation errors from the service layer are composed of static
	// domain text (character bounds, decision indices), so the error text
	// itself is the most useful thing to show the client.
	case errors.Is(err, service.ErrInvalidInputText),
		errors.Is(err, service.ErrInvalidFlashcard),
		errors.Is(err, service.ErrNoUpdateFields),
		errors.Is(err, review.ErrInvalidDecision):
		return err.Error()

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err onto the error response contract and writes it:
// a sanitized message under the mapped status code, with the underlying
// error logged (redacted) rather than sent to the client. Capacity errors
// additionally carry a details object with the current count and the limit.
// fallbackMessage, when non-empty, replaces the message for unexpected
// errors only, so specific client-facing messages are preserved.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	statusCode := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && statusCode == http.StatusInternalServerError {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	var limitErr *store.FlashcardLimitError
	if errors.As(err, &limitErr) {
		opts = append(opts, shared.WithDetails(map[string]interface{}{
			"current_count": limitErr.CurrentCount,
			"limit":         limitErr.Limit,
		}))
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, message, err, opts...)
}

// SanitizeValidationError converts a request validation failure into a
// user-friendly message naming the first offending field, without echoing
// the submitted values back.
func SanitizeValidationError(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
