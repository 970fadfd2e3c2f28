package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fiszkit/fiszkit-api/internal/api/shared"
	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/platform/logger"
	"github.com/fiszkit/fiszkit-api/internal/redact"
	"github.com/fiszkit/fiszkit-api/internal/service"
	"github.com/fiszkit/fiszkit-api/internal/service/review"
)

// GenerationHandler handles AI generation and batch review API requests.
type GenerationHandler struct {
	generationService service.GenerationService
	reviewService     review.BatchReviewService
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler with the given dependencies.
func NewGenerationHandler(
	generationService service.GenerationService,
	reviewService review.BatchReviewService,
	logger *slog.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		reviewService:     reviewService,
		validator:         validator.New(),
		logger:            logger.With(slog.String("component", "generation_handler")),
	}
}

// GenerateCardsRequest represents the request body for generating flashcards.
// Character bounds are checked by the generation service after trimming, so
// the only tag here is presence.
type GenerateCardsRequest struct {
	InputText string `json:"input_text" validate:"required"`
}

// GeneratedCardResponse is one ephemeral candidate in a generation response.
// Candidates exist only in this response; until reviewed, they are not
// persisted anywhere.
type GeneratedCardResponse struct {
	Index     int    `json:"index"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

// GenerationResponse represents the response body for a completed generation.
type GenerationResponse struct {
	BatchID             uuid.UUID               `json:"batch_id"`
	GeneratedAt         time.Time               `json:"generated_at"`
	InputTextLength     int                     `json:"input_text_length"`
	GeneratedCards      []GeneratedCardResponse `json:"generated_cards"`
	TotalCardsGenerated int                     `json:"total_cards_generated"`
	TimeTakenMs         int64                   `json:"time_taken_ms"`
	ModelUsed           string                  `json:"model_used"`
}

// BatchDetailResponse represents the response body for a batch lookup.
// It carries provenance and counters only; the generated candidates are
// ephemeral and never re-served.
type BatchDetailResponse struct {
	BatchID             uuid.UUID `json:"batch_id"`
	Status              string    `json:"status"`
	InputTextLength     int       `json:"input_text_length"`
	TotalCardsGenerated int       `json:"total_cards_generated"`
	CardsAccepted       int       `json:"cards_accepted"`
	CardsRejected       int       `json:"cards_rejected"`
	CardsEdited         int       `json:"cards_edited"`
	ModelUsed           string    `json:"model_used"`
	TimeTakenMs         int64     `json:"time_taken_ms"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// ReviewDecisionRequest is one per-candidate verdict in a review submission.
type ReviewDecisionRequest struct {
	Index     int    `json:"index"`
	Action    string `json:"action"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

// ReviewBatchRequest represents the request body for reviewing a batch.
type ReviewBatchRequest struct {
	Decisions []ReviewDecisionRequest `json:"decisions"`
}

// ReviewBatchResponse represents the response body for a completed review.
type ReviewBatchResponse struct {
	BatchID           uuid.UUID           `json:"batch_id"`
	CardsAccepted     int                 `json:"cards_accepted"`
	CardsRejected     int                 `json:"cards_rejected"`
	CardsEdited       int                 `json:"cards_edited"`
	CreatedFlashcards []FlashcardResponse `json:"created_flashcards"`
}

// GenerateCards handles POST /api/generations requests.
// It runs generation synchronously in the request and responds with the
// pending batch plus its candidates.
func (h *GenerationHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateCardsRequest
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

	outcome, err := h.generationService.GenerateCards(r.Context(), userID, req.InputText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate flashcards")
		return
	}

	log.Debug("generation batch created",
		slog.String("user_id", userID.String()),
		slog.String("batch_id", outcome.Batch.ID.String()),
		slog.Int("total_cards_generated", outcome.Batch.TotalCardsGenerated))
	shared.RespondWithJSON(w, r, http.StatusCreated, generationToResponse(outcome))
}

// GetBatch handles GET /api/generations/{id} requests.
func (h *GenerationHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, batchID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	batch, err := h.generationService.GetBatch(r.Context(), userID, batchID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get generation batch")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, batchToResponse(batch))
}

// ReviewBatch handles POST /api/generations/{id}/review requests.
func (h *GenerationHandler) ReviewBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, batchID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewBatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("batch_id", batchID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// No field validation here. The review service checks the decision list
	// against the batch, so an unknown batch outranks a malformed list.
	decisions := make([]domain.ReviewDecision, len(req.Decisions))
	for i, d := range req.Decisions {
		decisions[i] = domain.ReviewDecision{
			Index:     d.Index,
			Action:    domain.ReviewAction(d.Action),
			FrontText: d.FrontText,
			BackText:  d.BackText,
		}
	}

	result, err := h.reviewService.ReviewBatch(r.Context(), userID, batchID, decisions)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to review generation batch")
		return
	}

	log.Debug("generation batch reviewed",
		slog.String("user_id", userID.String()),
		slog.String("batch_id", batchID.String()),
		slog.Int("cards_accepted", result.CardsAccepted),
		slog.Int("cards_rejected", result.CardsRejected),
		slog.Int("cards_edited", result.CardsEdited))
	shared.RespondWithJSON(w, r, http.StatusOK, reviewToResponse(result))
}

// generationToResponse converts a service.GenerationOutcome to a GenerationResponse.
func generationToResponse(outcome *service.GenerationOutcome) GenerationResponse {
	cards := make([]GeneratedCardResponse, len(outcome.Candidates))
	for i, c := range outcome.Candidates {
		cards[i] = GeneratedCardResponse{
			Index:     c.Index,
			FrontText: c.FrontText,
			BackText:  c.BackText,
		}
	}

	return GenerationResponse{
		BatchID:             outcome.Batch.ID,
		GeneratedAt:         outcome.Batch.GeneratedAt,
		InputTextLength:     outcome.Batch.InputTextLength,
		GeneratedCards:      cards,
		TotalCardsGenerated: outcome.Batch.TotalCardsGenerated,
		TimeTakenMs:         outcome.Batch.TimeTakenMs,
		ModelUsed:           outcome.Batch.ModelUsed,
	}
}

// batchToResponse converts a domain.GenerationBatch to a BatchDetailResponse.
func batchToResponse(batch *domain.GenerationBatch) BatchDetailResponse {
	return BatchDetailResponse{
		BatchID:             batch.ID,
		Status:              string(batch.Status),
		InputTextLength:     batch.InputTextLength,
		TotalCardsGenerated: batch.TotalCardsGenerated,
		CardsAccepted:       batch.CardsAccepted,
		CardsRejected:       batch.CardsRejected,
		CardsEdited:         batch.CardsEdited,
		ModelUsed:           batch.ModelUsed,
		TimeTakenMs:         batch.TimeTakenMs,
		GeneratedAt:         batch.GeneratedAt,
	}
}

// reviewToResponse converts a review.ReviewResult to a ReviewBatchResponse.
// CreatedFlashcards serializes as an empty array, not null, when the review
// rejected everything.
func reviewToResponse(result *review.ReviewResult) ReviewBatchResponse {
	cards := make([]FlashcardResponse, 0, len(result.CreatedFlashcards))
	for _, card := range result.CreatedFlashcards {
		cards = append(cards, flashcardToResponse(card))
	}

	return ReviewBatchResponse{
		BatchID:           result.BatchID,
		CardsAccepted:     result.CardsAccepted,
		CardsRejected:     result.CardsRejected,
		CardsEdited:       result.CardsEdited,
		CreatedFlashcards: cards,
	}
}
