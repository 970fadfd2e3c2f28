package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Text bounds for flashcard fields, measured in Unicode code points after
// trimming surrounding whitespace.
const (
	FrontTextMinLen = 10
	FrontTextMaxLen = 500
	BackTextMinLen  = 10
	BackTextMaxLen  = 1000
)

// MaxFlashcardsPerUser is the capacity ceiling: the total number of flashcards
// a single owner may hold at any time. Enforced at every insertion point.
const MaxFlashcardsPerUser = 500

// Flashcard-specific validation errors
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is empty or nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrFlashcardUserIDEmpty is returned when a flashcard's user ID is empty or nil.
	ErrFlashcardUserIDEmpty = errors.New("flashcard user ID cannot be empty")

	// ErrFrontTextLength is returned when the front text is outside the
	// 10-500 character bounds after trimming.
	ErrFrontTextLength = errors.New("front text must be between 10 and 500 characters")

	// ErrBackTextLength is returned when the back text is outside the
	// 10-1000 character bounds after trimming.
	ErrBackTextLength = errors.New("back text must be between 10 and 1000 characters")
)

// Flashcard represents a single front/back study card owned by exactly one
// user. Cards are created manually or by accepting/editing candidates from a
// generation batch; deletion is permanent (no soft delete).
type Flashcard struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	FrontText     string     `json:"front_text"`
	BackText      string     `json:"back_text"`
	IsAIGenerated bool       `json:"is_ai_generated"`
	WasEdited     bool       `json:"was_edited"`
	// GenerationBatchID references the batch that produced the card.
	// Nil for manually created cards.
	GenerationBatchID *uuid.UUID `json:"generation_batch_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewFlashcard creates a manually authored Flashcard for the given owner.
// Text fields are trimmed before validation. IsAIGenerated is false and can
// never change afterwards.
func NewFlashcard(userID uuid.UUID, frontText, backText string) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:        uuid.New(),
		UserID:    userID,
		FrontText: strings.TrimSpace(frontText),
		BackText:  strings.TrimSpace(backText),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// NewGeneratedFlashcard creates a Flashcard from a reviewed generation
// candidate. IsAIGenerated is always true; wasEdited records whether the
// reviewer changed the candidate text before accepting it.
func NewGeneratedFlashcard(
	userID, batchID uuid.UUID,
	frontText, backText string,
	wasEdited bool,
) (*Flashcard, error) {
	if batchID == uuid.Nil {
		return nil, ErrBatchIDEmpty
	}

	now := time.Now().UTC()
	card := &Flashcard{
		ID:                uuid.New(),
		UserID:            userID,
		FrontText:         strings.TrimSpace(frontText),
		BackText:          strings.TrimSpace(backText),
		IsAIGenerated:     true,
		WasEdited:         wasEdited,
		GenerationBatchID: &batchID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (f *Flashcard) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if f.UserID == uuid.Nil {
		return ErrFlashcardUserIDEmpty
	}

	if err := ValidateFrontText(f.FrontText); err != nil {
		return err
	}

	return ValidateBackText(f.BackText)
}

// UpdateText applies a partial text update. A nil pointer leaves that side of
// the card untouched. Any change trims the new text, re-validates the card,
// marks it edited, and refreshes UpdatedAt. On validation failure the card is
// left exactly as it was.
func (f *Flashcard) UpdateText(frontText, backText *string) error {
	origFront, origBack := f.FrontText, f.BackText

	if frontText != nil {
		f.FrontText = strings.TrimSpace(*frontText)
	}
	if backText != nil {
		f.BackText = strings.TrimSpace(*backText)
	}

	if err := f.Validate(); err != nil {
		f.FrontText, f.BackText = origFront, origBack
		return err
	}

	f.WasEdited = true
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidateFrontText checks front text against the 10-500 code point bounds.
// Callers trim surrounding whitespace before validating.
func ValidateFrontText(text string) error {
	if n := utf8.RuneCountInString(text); n < FrontTextMinLen || n > FrontTextMaxLen {
		return ErrFrontTextLength
	}
	return nil
}

// ValidateBackText checks back text against the 10-1000 code point bounds.
// Callers trim surrounding whitespace before validating.
func ValidateBackText(text string) error {
	if n := utf8.RuneCountInString(text); n < BackTextMinLen || n > BackTextMaxLen {
		return ErrBackTextLength
	}
	return nil
}
