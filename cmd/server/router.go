package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/fiszkit/fiszkit-api/internal/api"
	apimiddleware "github.com/fiszkit/fiszkit-api/internal/api/middleware"
)

// setupRouter builds the route table with all handlers and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.NewTraceMiddleware(app.logger))

	if len(app.config.Server.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: app.config.Server.CORSAllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}).Handler)
	}

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		&app.config.Auth,
	)
	generationHandler := api.NewGenerationHandler(app.generationService, app.reviewService, app.logger)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Generation endpoints
			r.Post("/generations", generationHandler.GenerateCards)
			r.Get("/generations/{id}", generationHandler.GetBatch)
			r.Post("/generations/{id}/review", generationHandler.ReviewBatch)

			// Flashcard endpoints; bulk delete is the bare collection path
			// with an ids query parameter
			r.Post("/flashcards", flashcardHandler.CreateFlashcard)
			r.Get("/flashcards", flashcardHandler.ListFlashcards)
			r.Get("/flashcards/{id}", flashcardHandler.GetFlashcard)
			r.Put("/flashcards/{id}", flashcardHandler.UpdateFlashcard)
			r.Delete("/flashcards/{id}", flashcardHandler.DeleteFlashcard)
			r.Delete("/flashcards", flashcardHandler.BulkDeleteFlashcards)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
