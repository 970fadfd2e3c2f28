package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiszkit/fiszkit-api/internal/config"
	"github.com/fiszkit/fiszkit-api/internal/domain"
	"github.com/fiszkit/fiszkit-api/internal/mocks"
	"github.com/fiszkit/fiszkit-api/internal/service/auth"
)

// testAccessToken is the only bearer token the mocked JWT service accepts.
const testAccessToken = "valid-access-token"

// newTestApplication assembles an application backed entirely by mocks and
// returns it along with the user ID testAccessToken authenticates as. Tests
// may swap individual services before calling setupRouter.
func newTestApplication(t *testing.T) (*application, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			if tokenString != testAccessToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, TokenType: "access"}, nil
		},
	}

	app := &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
			Auth: config.AuthConfig{
				JWTSecret:                   "0123456789abcdef0123456789abcdef",
				TokenLifetimeMinutes:        60,
				RefreshTokenLifetimeMinutes: 10080,
				BcryptCost:                  10,
			},
		},
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		userStore:         mocks.NewMockUserStore(),
		jwtService:        jwtService,
		passwordVerifier:  &mocks.MockPasswordVerifier{},
		generationService: &mocks.MockGenerationService{},
		flashcardService:  &mocks.MockFlashcardService{},
		reviewService:     &mocks.MockBatchReviewService{},
	}
	return app, userID
}

// errorBody decodes the JSON error envelope handlers write on failure.
func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()
	id := uuid.New().String()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/generations"},
		{http.MethodGet, "/api/generations/" + id},
		{http.MethodPost, "/api/generations/" + id + "/review"},
		{http.MethodPost, "/api/flashcards"},
		{http.MethodGet, "/api/flashcards"},
		{http.MethodGet, "/api/flashcards/" + id},
		{http.MethodPut, "/api/flashcards/" + id},
		{http.MethodDelete, "/api/flashcards/" + id},
		{http.MethodDelete, "/api/flashcards"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Authorization header required", errorBody(t, rec))
		})
	}
}

func TestMalformedAuthorizationHeaders(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	tests := []struct {
		name         string
		header       string
		wantErrorMsg string
	}{
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErrorMsg: "Invalid authorization format"},
		{name: "missing token part", header: "Bearer", wantErrorMsg: "Invalid authorization format"},
		{name: "rejected token", header: "Bearer expired-or-forged", wantErrorMsg: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantErrorMsg, errorBody(t, rec))
		})
	}
}

func TestAuthenticatedRequestReachesHandler(t *testing.T) {
	app, userID := newTestApplication(t)

	var gotUserID uuid.UUID
	app.flashcardService = &mocks.MockFlashcardService{
		ListFlashcardsFn: func(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error) {
			gotUserID = ownerID
			return nil, nil
		},
	}
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
	req.Header.Set("Authorization", "Bearer "+testAccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUserID, "the handler must see the user from the token claims")
	assert.Contains(t, rec.Body.String(), `"flashcards":[]`)
}

func TestFlashcardDeleteRoutes(t *testing.T) {
	t.Run("path ID routes to single delete", func(t *testing.T) {
		app, _ := newTestApplication(t)
		router := app.setupRouter()
		cardID := uuid.New()

		req := httptest.NewRequest(http.MethodDelete, "/api/flashcards/"+cardID.String(), nil)
		req.Header.Set("Authorization", "Bearer "+testAccessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"deleted_id":"`+cardID.String()+`"`)
	})

	t.Run("bare collection path routes to bulk delete", func(t *testing.T) {
		app, _ := newTestApplication(t)
		router := app.setupRouter()

		req := httptest.NewRequest(http.MethodDelete, "/api/flashcards?ids="+uuid.New().String(), nil)
		req.Header.Set("Authorization", "Bearer "+testAccessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"deleted_count":0`)
	})
}

func TestPublicAuthRoutesSkipAuthentication(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	paths := []string{
		"/api/auth/register",
		"/api/auth/login",
		"/api/auth/refresh",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{not json"))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// A 400 from the handler's body decode means routing skipped the
			// auth middleware; a 401 would mean it ran.
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid request format", errorBody(t, rec))
		})
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/decks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSConfiguration(t *testing.T) {
	const origin = "https://studio.fiszkit.dev"

	t.Run("allowed origin is echoed", func(t *testing.T) {
		app, _ := newTestApplication(t)
		app.config.Server.CORSAllowedOrigins = []string{origin}
		router := app.setupRouter()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered before routing", func(t *testing.T) {
		app, _ := newTestApplication(t)
		app.config.Server.CORSAllowedOrigins = []string{origin}
		router := app.setupRouter()

		req := httptest.NewRequest(http.MethodOptions, "/api/flashcards", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
	})

	t.Run("disabled when no origins are configured", func(t *testing.T) {
		app, _ := newTestApplication(t)
		router := app.setupRouter()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
