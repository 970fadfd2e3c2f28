package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fiszkit/fiszkit-api/internal/config"
	"github.com/fiszkit/fiszkit-api/internal/generation"
	"github.com/fiszkit/fiszkit-api/internal/platform/gemini"
	"github.com/fiszkit/fiszkit-api/internal/platform/postgres"
	"github.com/fiszkit/fiszkit-api/internal/service"
	"github.com/fiszkit/fiszkit-api/internal/service/auth"
	"github.com/fiszkit/fiszkit-api/internal/service/review"
	"github.com/fiszkit/fiszkit-api/internal/store"
)

// application holds the shared application dependencies so that wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (interfaces so tests can substitute implementations)
	userStore      store.UserStore
	batchStore     store.GenerationBatchStore
	flashcardStore store.FlashcardStore

	// Services
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	generator         generation.CardGenerator
	generationService service.GenerationService
	flashcardService  service.FlashcardService
	reviewService     review.BatchReviewService
}

// newApplication creates an application instance with all dependencies
// initialized. The context is used only for generator client setup.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.batchStore = postgres.NewPostgresGenerationBatchStore(db, logger)
	app.flashcardStore = postgres.NewPostgresFlashcardStore(db, logger)

	app.generator, err = setupGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize card generator: %w", err)
	}
	logger.Info("card generator initialized", "provider", cfg.LLM.Provider)

	app.generationService, err = service.NewGenerationService(db, app.batchStore, app.generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.flashcardService, err = service.NewFlashcardService(db, app.flashcardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	app.reviewService = review.NewBatchReviewService(db, app.batchStore, app.flashcardStore, logger)

	logger.Info("application initialized")
	return app, nil
}

// setupGenerator selects the card generator backend from configuration:
// "static" keeps development and tests off the network, "gemini" calls the
// real API.
func setupGenerator(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (generation.CardGenerator, error) {
	switch cfg.LLM.Provider {
	case "static":
		return generation.NewStaticGenerator(logger), nil
	case "gemini":
		return gemini.NewGeminiGenerator(ctx, logger.With("component", "gemini_generator"), cfg.LLM)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
