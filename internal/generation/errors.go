package generation

import "errors"

// Common errors returned by card generators
var (
	// ErrEmptyInput is returned when the input text is empty or whitespace
	ErrEmptyInput = errors.New("input text cannot be empty")

	// ErrRateLimited is returned when the model provider rejects the call
	// because of quota or rate limits
	ErrRateLimited = errors.New("generation rate limited by model provider")

	// ErrUnavailable is returned when the model provider cannot be reached
	// or keeps failing transiently
	ErrUnavailable = errors.New("generation service unavailable")

	// ErrInvalidModelOutput is returned when the model response cannot be
	// parsed into usable candidates
	ErrInvalidModelOutput = errors.New("invalid output from language model")

	// ErrContentBlocked is returned when the model blocks the content due to
	// safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
