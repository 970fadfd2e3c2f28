package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/api/shared"
	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/platform/logger"
	"github.com/fiszkit/fiszkit-api/internal/redact"
	"github.com/fiszkit/fiszkit-api/internal/service"
)

// List pagination bounds for flashcard queries.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// FlashcardHandler handles manual flashcard CRUD API requests.
type FlashcardHandler struct {
	flashcardService service.FlashcardService
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler with the given dependencies.
func NewFlashcardHandler(
	flashcardService service.FlashcardService,
	logger *slog.Logger,
) *FlashcardHandler {
	return &FlashcardHandler{
		flashcardService: flashcardService,
		validator:        validator.New(),
		logger:           logger.With(slog.String("component", "flashcard_handler")),
	}
}

// CreateFlashcardRequest represents the request body for creating a flashcard.
// Text bounds are checked by the flashcard service after trimming, so the only
// tags here are presence.
type CreateFlashcardRequest struct {
	FrontText string `json:"front_text" validate:"required"`
	BackText  string `json:"back_text"  validate:"required"`
}

// UpdateFlashcardRequest represents the request body for updating a flashcard.
// Pointer fields distinguish an omitted side from an empty one; the service
// requires at least one side to be present.
type UpdateFlashcardRequest struct {
	FrontText *string `json:"front_text"`
	BackText  *string `json:"back_text"`
}

// FlashcardResponse is the wire shape of a flashcard. The owner is implied by
// the authenticated request and never serialized.
type FlashcardResponse struct {
	ID                uuid.UUID  `json:"id"`
	FrontText         string     `json:"front_text"`
	BackText          string     `json:"back_text"`
	IsAIGenerated     bool       `json:"is_ai_generated"`
	WasEdited         bool       `json:"was_edited"`
	GenerationBatchID *uuid.UUID `json:"generation_batch_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ListFlashcardsResponse is the paged list envelope. Limit and offset echo
// the effective values after defaulting.
type ListFlashcardsResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
	Count      int                 `json:"count"`
}

// DeleteFlashcardResponse echoes the ID of the deleted flashcard.
type DeleteFlashcardResponse struct {
	DeletedID uuid.UUID `json:"deleted_id"`
}

// BulkDeleteFlashcardsResponse echoes which of the requested flashcards were
// actually deleted. Requested IDs the caller does not own are skipped rather
// than reported as errors.
type BulkDeleteFlashcardsResponse struct {
	DeletedIDs   []uuid.UUID `json:"deleted_ids"`
	DeletedCount int         `json:"deleted_count"`
}

// CreateFlashcard handles POST /api/flashcards requests.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.flashcardService.CreateFlashcard(r.Context(), userID, req.FrontText, req.BackText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard")
		return
	}

	log.Debug("flashcard created",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, flashcardToResponse(card))
}

// GetFlashcard handles GET /api/flashcards/{id} requests.
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.flashcardService.GetFlashcard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// ListFlashcards handles GET /api/flashcards requests.
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.flashcardService.ListFlashcards(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	responses := make([]FlashcardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, flashcardToResponse(card))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListFlashcardsResponse{
		Flashcards: responses,
		Limit:      limit,
		Offset:     offset,
		Count:      len(responses),
	})
}

// UpdateFlashcard handles PUT /api/flashcards/{id} requests.
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	card, err := h.flashcardService.UpdateFlashcard(r.Context(), userID, cardID, req.FrontText, req.BackText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard")
		return
	}

	log.Debug("flashcard updated",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// DeleteFlashcard handles DELETE /api/flashcards/{id} requests.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.flashcardService.DeleteFlashcard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard")
		return
	}

	log.Debug("flashcard deleted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteFlashcardResponse{DeletedID: cardID})
}

// BulkDeleteFlashcards handles DELETE /api/flashcards?ids=a,b,c requests.
func (h *FlashcardHandler) BulkDeleteFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	cardIDs, err := parseBulkDeleteIDs(r)
	if err != nil {
		log.Warn("invalid bulk delete ids",
			slog.String("user_id", userID.String()),
			slog.String("value", r.URL.Query().Get("ids")))
		HandleAPIError(w, r, err, "")
		return
	}

	deletedIDs, err := h.flashcardService.DeleteFlashcards(r.Context(), userID, cardIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcards")
		return
	}

	if deletedIDs == nil {
		deletedIDs = []uuid.UUID{}
	}

	log.Debug("flashcards bulk deleted",
		slog.String("user_id", userID.String()),
		slog.Int("requested", len(cardIDs)),
		slog.Int("deleted", len(deletedIDs)))
	shared.RespondWithJSON(w, r, http.StatusOK, BulkDeleteFlashcardsResponse{
		DeletedIDs:   deletedIDs,
		DeletedCount: len(deletedIDs),
	})
}

// parsePagination reads the limit and offset query parameters, applying
// defaults when absent.
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			return 0, 0, domain.NewValidationError(
				"limit",
				"must be an integer between 1 and "+strconv.Itoa(maxListLimit),
				domain.ErrValidation,
			)
		}
	}

	offset = 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, domain.NewValidationError(
				"offset",
				"must be a non-negative integer",
				domain.ErrValidation,
			)
		}
	}

	return limit, offset, nil
}

// parseBulkDeleteIDs reads the comma-separated ids query parameter.
func parseBulkDeleteIDs(r *http.Request) ([]uuid.UUID, error) {
	rawIDs := r.URL.Query().Get("ids")
	if rawIDs == "" {
		return nil, domain.NewValidationError("ids", "is required", domain.ErrValidation)
	}

	parts := strings.Split(rawIDs, ",")
	cardIDs := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := uuid.Parse(part)
		if err != nil {
			return nil, domain.NewValidationError("ids", "contains an invalid UUID", domain.ErrInvalidID)
		}
		cardIDs = append(cardIDs, id)
	}

	if len(cardIDs) == 0 {
		return nil, domain.NewValidationError("ids", "must contain at least one flashcard ID", domain.ErrValidation)
	}

	return cardIDs, nil
}

// flashcardToResponse converts a domain.Flashcard to a FlashcardResponse.
func flashcardToResponse(card *domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:                card.ID,
		FrontText:         card.FrontText,
		BackText:          card.BackText,
		IsAIGenerated:     card.IsAIGenerated,
		WasEdited:         card.WasEdited,
		GenerationBatchID: card.GenerationBatchID,
		CreatedAt:         card.CreatedAt,
		UpdatedAt:         card.UpdatedAt,
	}
}
