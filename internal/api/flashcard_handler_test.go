package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiszkit/fiszkit-api/internal/api/shared"
	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/mocks"
	"github.com/fiszkit/fiszkit-api/internal/service"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// sampleFlashcard builds a manually authored flashcard for the given owner.
func sampleFlashcard(userID uuid.UUID) *domain.Flashcard {
	return &domain.Flashcard{
		ID:        uuid.New(),
		UserID:    userID,
		FrontText: "What is the capital of France?",
		BackText:  "Paris is the capital of France.",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCreateFlashcard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name         string
		userIDInCtx  uuid.UUID
		body         string
		serviceCard  *domain.Flashcard
		serviceError error
		wantStatus   int
		wantErrorMsg string
	}{
		{
			name:        "success",
			userIDInCtx: userID,
			body:        `{"front_text":"What is the capital of France?","back_text":"Paris is the capital of France."}`,
			serviceCard: sampleFlashcard(userID),
			wantStatus:  http.StatusCreated,
		},
		{
			name:         "missing user ID",
			userIDInCtx:  uuid.Nil,
			body:         `{"front_text":"Front text here","back_text":"Back text here"}`,
			wantStatus:   http.StatusUnauthorized,
			wantErrorMsg: "User ID not found or invalid",
		},
		{
			name:         "malformed JSON",
			userIDInCtx:  userID,
			body:         `{"front_text": `,
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "Invalid request format",
		},
		{
			name:         "missing front text",
			userIDInCtx:  userID,
			body:         `{"back_text":"Back text here"}`,
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "Invalid FrontText: required field",
		},
		{
			name:         "text outside accepted bounds",
			userIDInCtx:  userID,
			body:         `{"front_text":"short","back_text":"Back text long enough here"}`,
			serviceError: fmt.Errorf("%w: %v", service.ErrInvalidFlashcard, domain.ErrFrontTextLength),
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "front text must be between 10 and 500 characters",
		},
		{
			name:         "flashcard limit reached",
			userIDInCtx:  userID,
			body:         `{"front_text":"Front text here","back_text":"Back text here"}`,
			serviceError: store.NewFlashcardLimitError(500),
			wantStatus:   http.StatusForbidden,
			wantErrorMsg: "Flashcard limit exceeded",
		},
		{
			name:         "unexpected service failure",
			userIDInCtx:  userID,
			body:         `{"front_text":"Front text here","back_text":"Back text here"}`,
			serviceError: errors.New("pq: connection refused"),
			wantStatus:   http.StatusInternalServerError,
			wantErrorMsg: "Failed to create flashcard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flashcardService := &mocks.MockFlashcardService{
				CreateFlashcardFn: func(ctx context.Context, uid uuid.UUID, frontText, backText string) (*domain.Flashcard, error) {
					assert.Equal(t, tt.userIDInCtx, uid)
					return tt.serviceCard, tt.serviceError
				},
			}
			handler := NewFlashcardHandler(flashcardService, newTestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/flashcards", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.userIDInCtx != uuid.Nil {
				req = withUserID(req, tt.userIDInCtx)
			}
			recorder := httptest.NewRecorder()

			handler.CreateFlashcard(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp FlashcardResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, tt.serviceCard.ID, resp.ID)
				assert.Equal(t, tt.serviceCard.FrontText, resp.FrontText)
				assert.Equal(t, tt.serviceCard.BackText, resp.BackText)
				assert.False(t, resp.IsAIGenerated)
				assert.Nil(t, resp.GenerationBatchID)
			} else {
				var errorResp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
				assert.Contains(t, errorResp.Error, tt.wantErrorMsg)

				if tt.wantStatus == http.StatusForbidden {
					assert.Equal(t, float64(500), errorResp.Details["current_count"])
					assert.Equal(t, float64(500), errorResp.Details["limit"])
				}
			}
		})
	}
}

func TestGetFlashcard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	batchID := uuid.New()
	card := &domain.Flashcard{
		ID:                uuid.New(),
		UserID:            userID,
		FrontText:         "What is active recall?",
		BackText:          "Retrieving information from memory rather than re-reading it.",
		IsAIGenerated:     true,
		WasEdited:         true,
		GenerationBatchID: &batchID,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}

	tests := []struct {
		name         string
		userIDInCtx  uuid.UUID
		pathID       string
		serviceCard  *domain.Flashcard
		serviceError error
		wantStatus   int
		wantErrorMsg string
	}{
		{
			name:        "success",
			userIDInCtx: userID,
			pathID:      card.ID.String(),
			serviceCard: card,
			wantStatus:  http.StatusOK,
		},
		{
			name:         "malformed card ID",
			userIDInCtx:  userID,
			pathID:       "not-a-uuid",
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "id has invalid format",
		},
		{
			name:         "card not found",
			userIDInCtx:  userID,
			pathID:       uuid.New().String(),
			serviceError: service.ErrFlashcardNotFound,
			wantStatus:   http.StatusNotFound,
			wantErrorMsg: "Flashcard not found",
		},
		{
			name:         "unexpected service failure",
			userIDInCtx:  userID,
			pathID:       uuid.New().String(),
			serviceError: errors.New("pq: connection refused"),
			wantStatus:   http.StatusInternalServerError,
			wantErrorMsg: "Failed to get flashcard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flashcardService := &mocks.MockFlashcardService{
				GetFlashcardFn: func(ctx context.Context, uid, cid uuid.UUID) (*domain.Flashcard, error) {
					assert.Equal(t, tt.userIDInCtx, uid)
					return tt.serviceCard, tt.serviceError
				},
			}
			handler := NewFlashcardHandler(flashcardService, newTestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/flashcards/"+tt.pathID, nil)
			req = withRouteParam(req, "id", tt.pathID)
			if tt.userIDInCtx != uuid.Nil {
				req = withUserID(req, tt.userIDInCtx)
			}
			recorder := httptest.NewRecorder()

			handler.GetFlashcard(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp FlashcardResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, card.ID, resp.ID)
				assert.True(t, resp.IsAIGenerated)
				assert.True(t, resp.WasEdited)
				require.NotNil(t, resp.GenerationBatchID)
				assert.Equal(t, batchID, *resp.GenerationBatchID)
			} else {
				var errorResp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
				assert.Contains(t, errorResp.Error, tt.wantErrorMsg)
			}
		})
	}
}

func TestListFlashcards(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("defaults applied when no parameters given", func(t *testing.T) {
		var gotLimit, gotOffset int
		flashcardService := &mocks.MockFlashcardService{
			ListFlashcardsFn: func(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*domain.Flashcard, error) {
				gotLimit, gotOffset = limit, offset
				return []*domain.Flashcard{sampleFlashcard(uid)}, nil
			},
		}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/flashcards", nil), userID)
		recorder := httptest.NewRecorder()

		handler.ListFlashcards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, defaultListLimit, gotLimit)
		assert.Equal(t, 0, gotOffset)

		var resp ListFlashcardsResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, defaultListLimit, resp.Limit)
		assert.Equal(t, 0, resp.Offset)
		assert.Equal(t, 1, resp.Count)
		assert.Len(t, resp.Flashcards, 1)
	})

	t.Run("explicit parameters echoed back", func(t *testing.T) {
		flashcardService := &mocks.MockFlashcardService{
			ListFlashcardsFn: func(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*domain.Flashcard, error) {
				assert.Equal(t, 50, limit)
				assert.Equal(t, 100, offset)
				return nil, nil
			},
		}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/flashcards?limit=50&offset=100", nil), userID)
		recorder := httptest.NewRecorder()

		handler.ListFlashcards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp ListFlashcardsResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, 50, resp.Limit)
		assert.Equal(t, 100, resp.Offset)
		assert.Equal(t, 0, resp.Count)
	})

	t.Run("empty result serializes as an array", func(t *testing.T) {
		handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/flashcards", nil), userID)
		recorder := httptest.NewRecorder()

		handler.ListFlashcards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"flashcards":[]`)
	})

	t.Run("invalid pagination parameters rejected", func(t *testing.T) {
		tests := []struct {
			name         string
			query        string
			wantErrorMsg string
		}{
			{
				name:         "limit not a number",
				query:        "?limit=abc",
				wantErrorMsg: "limit must be an integer between 1 and 100",
			},
			{
				name:         "limit zero",
				query:        "?limit=0",
				wantErrorMsg: "limit must be an integer between 1 and 100",
			},
			{
				name:         "limit above the cap",
				query:        "?limit=101",
				wantErrorMsg: "limit must be an integer between 1 and 100",
			},
			{
				name:         "offset negative",
				query:        "?offset=-1",
				wantErrorMsg: "offset must be a non-negative integer",
			},
			{
				name:         "offset not a number",
				query:        "?offset=ten",
				wantErrorMsg: "offset must be a non-negative integer",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

				req := withUserID(httptest.NewRequest(http.MethodGet, "/api/flashcards"+tt.query, nil), userID)
				recorder := httptest.NewRecorder()

				handler.ListFlashcards(recorder, req)

				assert.Equal(t, http.StatusBadRequest, recorder.Code)

				var errorResp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
				assert.Equal(t, tt.wantErrorMsg, errorResp.Error)
			})
		}
	})

	t.Run("missing user ID yields 401", func(t *testing.T) {
		handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
		recorder := httptest.NewRecorder()

		handler.ListFlashcards(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestUpdateFlashcard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()

	t.Run("front text only", func(t *testing.T) {
		updated := sampleFlashcard(userID)
		updated.ID = cardID
		updated.FrontText = "Updated front text for this card"
		updated.WasEdited = true

		flashcardService := &mocks.MockFlashcardService{
			UpdateFlashcardFn: func(ctx context.Context, uid, cid uuid.UUID, frontText, backText *string) (*domain.Flashcard, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, cardID, cid)
				require.NotNil(t, frontText)
				assert.Equal(t, "Updated front text for this card", *frontText)
				assert.Nil(t, backText, "an omitted side must arrive as nil")
				return updated, nil
			},
		}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		req := httptest.NewRequest(
			http.MethodPut,
			"/api/flashcards/"+cardID.String(),
			bytes.NewBufferString(`{"front_text":"Updated front text for this card"}`),
		)
		req.Header.Set("Content-Type", "application/json")
		req = withRouteParam(req, "id", cardID.String())
		req = withUserID(req, userID)
		recorder := httptest.NewRecorder()

		handler.UpdateFlashcard(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp FlashcardResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, cardID, resp.ID)
		assert.Equal(t, "Updated front text for this card", resp.FrontText)
		assert.True(t, resp.WasEdited)
	})

	t.Run("no fields provided", func(t *testing.T) {
		flashcardService := &mocks.MockFlashcardService{Err: service.ErrNoUpdateFields}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		req := httptest.NewRequest(
			http.MethodPut,
			"/api/flashcards/"+cardID.String(),
			bytes.NewBufferString(`{}`),
		)
		req.Header.Set("Content-Type", "application/json")
		req = withRouteParam(req, "id", cardID.String())
		req = withUserID(req, userID)
		recorder := httptest.NewRecorder()

		handler.UpdateFlashcard(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var errorResp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
		assert.Equal(t, "at least one of front text or back text is required", errorResp.Error)
	})

	t.Run("card not found", func(t *testing.T) {
		flashcardService := &mocks.MockFlashcardService{Err: service.ErrFlashcardNotFound}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		req := httptest.NewRequest(
			http.MethodPut,
			"/api/flashcards/"+cardID.String(),
			bytes.NewBufferString(`{"front_text":"Updated front text for this card"}`),
		)
		req.Header.Set("Content-Type", "application/json")
		req = withRouteParam(req, "id", cardID.String())
		req = withUserID(req, userID)
		recorder := httptest.NewRecorder()

		handler.UpdateFlashcard(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

		req := httptest.NewRequest(
			http.MethodPut,
			"/api/flashcards/"+cardID.String(),
			bytes.NewBufferString(`{"front_text": `),
		)
		req.Header.Set("Content-Type", "application/json")
		req = withRouteParam(req, "id", cardID.String())
		req = withUserID(req, userID)
		recorder := httptest.NewRecorder()

		handler.UpdateFlashcard(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestDeleteFlashcard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()

	tests := []struct {
		name         string
		serviceError error
		wantStatus   int
		wantErrorMsg string
	}{
		{
			name:       "success",
			wantStatus: http.StatusOK,
		},
		{
			name:         "card not found",
			serviceError: service.ErrFlashcardNotFound,
			wantStatus:   http.StatusNotFound,
			wantErrorMsg: "Flashcard not found",
		},
		{
			name:         "unexpected service failure",
			serviceError: errors.New("pq: connection refused"),
			wantStatus:   http.StatusInternalServerError,
			wantErrorMsg: "Failed to delete flashcard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flashcardService := &mocks.MockFlashcardService{
				DeleteFlashcardFn: func(ctx context.Context, uid, cid uuid.UUID) error {
					assert.Equal(t, userID, uid)
					assert.Equal(t, cardID, cid)
					return tt.serviceError
				},
			}
			handler := NewFlashcardHandler(flashcardService, newTestLogger())

			req := httptest.NewRequest(http.MethodDelete, "/api/flashcards/"+cardID.String(), nil)
			req = withRouteParam(req, "id", cardID.String())
			req = withUserID(req, userID)
			recorder := httptest.NewRecorder()

			handler.DeleteFlashcard(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp DeleteFlashcardResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, cardID, resp.DeletedID)
			} else {
				var errorResp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
				assert.Contains(t, errorResp.Error, tt.wantErrorMsg)
			}
		})
	}
}

func TestBulkDeleteFlashcards(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ownedID := uuid.New()
	foreignID := uuid.New()

	t.Run("deletes owned cards and skips foreign ones", func(t *testing.T) {
		flashcardService := &mocks.MockFlashcardService{
			DeleteFlashcardsFn: func(ctx context.Context, uid uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, []uuid.UUID{ownedID, foreignID}, cardIDs)
				// Only the owned card is deleted.
				return []uuid.UUID{ownedID}, nil
			},
		}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		url := "/api/flashcards?ids=" + ownedID.String() + "," + foreignID.String()
		req := withUserID(httptest.NewRequest(http.MethodDelete, url, nil), userID)
		recorder := httptest.NewRecorder()

		handler.BulkDeleteFlashcards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp BulkDeleteFlashcardsResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, []uuid.UUID{ownedID}, resp.DeletedIDs)
		assert.Equal(t, 1, resp.DeletedCount)
	})

	t.Run("whitespace and empty segments tolerated", func(t *testing.T) {
		flashcardService := &mocks.MockFlashcardService{
			DeleteFlashcardsFn: func(ctx context.Context, uid uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error) {
				assert.Equal(t, []uuid.UUID{ownedID}, cardIDs)
				return cardIDs, nil
			},
		}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		url := "/api/flashcards?ids=" + ownedID.String() + ",%20,"
		req := withUserID(httptest.NewRequest(http.MethodDelete, url, nil), userID)
		recorder := httptest.NewRecorder()

		handler.BulkDeleteFlashcards(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("nothing deleted serializes as an array", func(t *testing.T) {
		flashcardService := &mocks.MockFlashcardService{
			DeleteFlashcardsFn: func(ctx context.Context, uid uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error) {
				return nil, nil
			},
		}
		handler := NewFlashcardHandler(flashcardService, newTestLogger())

		url := "/api/flashcards?ids=" + foreignID.String()
		req := withUserID(httptest.NewRequest(http.MethodDelete, url, nil), userID)
		recorder := httptest.NewRecorder()

		handler.BulkDeleteFlashcards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"deleted_ids":[]`)
		assert.Contains(t, recorder.Body.String(), `"deleted_count":0`)
	})

	t.Run("missing ids parameter", func(t *testing.T) {
		handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

		req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/flashcards", nil), userID)
		recorder := httptest.NewRecorder()

		handler.BulkDeleteFlashcards(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var errorResp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
		assert.Equal(t, "ids is required", errorResp.Error)
	})

	t.Run("invalid UUID in the list", func(t *testing.T) {
		handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

		url := "/api/flashcards?ids=" + ownedID.String() + ",not-a-uuid"
		req := withUserID(httptest.NewRequest(http.MethodDelete, url, nil), userID)
		recorder := httptest.NewRecorder()

		handler.BulkDeleteFlashcards(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var errorResp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
		assert.Equal(t, "ids contains an invalid UUID", errorResp.Error)
	})

	t.Run("only empty segments", func(t *testing.T) {
		handler := NewFlashcardHandler(&mocks.MockFlashcardService{}, newTestLogger())

		req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/flashcards?ids=,%20,", nil), userID)
		recorder := httptest.NewRecorder()

		handler.BulkDeleteFlashcards(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var errorResp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errorResp))
		assert.Equal(t, "ids must contain at least one flashcard ID", errorResp.Error)
	})
}
