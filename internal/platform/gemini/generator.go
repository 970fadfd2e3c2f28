package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/fiszkit/fiszkit-api/internal/config"
	"github.com/fiszkit/fiszkit-api/internal/generation"
)

// promptTemplateText is the fixed prompt shipped with the binary. It is a
// text template, not html; the prompt goes to an LLM, not a browser.
//
//go:embed prompt.tmpl
var promptTemplateText string

// GeminiGenerator implements the generation.CardGenerator interface using
// Google's Gemini API to produce flashcard candidates from input text.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Verify GeminiGenerator implements generation.CardGenerator
var _ generation.CardGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new GeminiGenerator with the provided
// configuration. The context is used for client initialization only;
// generation calls carry their own contexts.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Validate configuration
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("flashcard").Parse(promptTemplateText)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateCards implements generation.CardGenerator.GenerateCards
// It builds the prompt, calls the Gemini API with retry for transient
// failures, and parses the JSON response into ordered candidates.
func (g *GeminiGenerator) GenerateCards(
	ctx context.Context,
	inputText string,
) (*generation.GenerationResult, error) {
	start := time.Now()

	inputText = strings.TrimSpace(inputText)
	if inputText == "" {
		return nil, generation.ErrEmptyInput
	}

	prompt, err := g.buildPrompt(ctx, inputText)
	if err != nil {
		return nil, err
	}

	parsed, err := g.callModelWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	candidates, err := g.toCandidates(ctx, parsed)
	if err != nil {
		return nil, err
	}

	return &generation.GenerationResult{
		Candidates: candidates,
		ModelUsed:  g.model,
		TimeTaken:  time.Since(start),
	}, nil
}

// buildPrompt renders the prompt template with the input text.
func (g *GeminiGenerator) buildPrompt(ctx context.Context, inputText string) (string, error) {
	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, promptData{InputText: inputText}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "prompt built",
		"input_length", len(inputText),
		"prompt_length", promptBuffer.Len())

	return promptBuffer.String(), nil
}

// callModelWithRetry calls the Gemini API with exponential backoff retry.
//
// Transient failures (rate limits, provider 5xx, network errors) are retried
// up to config.MaxRetries additional attempts with jittered exponential
// backoff. Permanent failures (safety blocks, malformed output) return
// immediately. The last transient error is returned once retries run out, so
// callers still see ErrRateLimited vs ErrUnavailable.
func (g *GeminiGenerator) callModelWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Guard against misconfigured retry settings
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1 // 1-based for logging
		g.logger.InfoContext(ctx, "calling Gemini API",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"model", g.model)

		parsed, transient, err := g.callModel(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return parsed, nil
		}
		lastErr = err

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			g.logger.WarnContext(ctx, "permanent error, not retrying", "error", err)
			return nil, err
		}
		if attempt == maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * rand(0.5, 1.0)
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "generation cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", generation.ErrUnavailable, ctx.Err())
		}
	}

	g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
	return nil, lastErr
}

// callModel makes a single GenerateContent call and parses the response.
// The returned bool reports whether a failure is transient and worth
// retrying.
func (g *GeminiGenerator) callModel(ctx context.Context, prompt string) (*responseSchema, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.2),
		})
	if err != nil {
		mapped, transient := classifyCallError(err)
		return nil, transient, mapped
	}

	if resp == nil {
		return nil, false, fmt.Errorf("%w: nil response", generation.ErrInvalidModelOutput)
	}

	// A blocked prompt arrives as feedback with no candidates
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, false, fmt.Errorf("%w: prompt blocked (%s)",
			generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidModelOutput)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: generation stopped by safety filters",
			generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, false, fmt.Errorf("%w: empty content in response",
			generation.ErrInvalidModelOutput)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text.String()), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidModelOutput, err)
	}

	return &parsed, false, nil
}

// classifyCallError maps a client error to a generation sentinel and reports
// whether it is transient. Rate limits and provider 5xx are transient; other
// API errors (bad key, bad model) are permanent but still read as the
// service being unavailable from the caller's side. Anything that is not an
// API error is treated as a network failure.
func classifyCallError(err error) (error, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", generation.ErrRateLimited, err), true
		case apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", generation.ErrUnavailable, err), true
		default:
			return fmt.Errorf("%w: %v", generation.ErrUnavailable, err), false
		}
	}
	return fmt.Errorf("%w: %v", generation.ErrUnavailable, err), true
}

// toCandidates converts a parsed model response into ordered candidates,
// trimming surrounding whitespace and rejecting cards with a missing side.
func (g *GeminiGenerator) toCandidates(
	ctx context.Context,
	response *responseSchema,
) ([]generation.Candidate, error) {
	if response == nil || len(response.Cards) == 0 {
		return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidModelOutput)
	}

	candidates := make([]generation.Candidate, 0, len(response.Cards))
	for i, card := range response.Cards {
		front := strings.TrimSpace(card.Front)
		back := strings.TrimSpace(card.Back)

		if front == "" {
			return nil, fmt.Errorf("%w: card %d missing front side",
				generation.ErrInvalidModelOutput, i)
		}
		if back == "" {
			return nil, fmt.Errorf("%w: card %d missing back side",
				generation.ErrInvalidModelOutput, i)
		}

		candidates = append(candidates, generation.Candidate{
			Index:     i,
			FrontText: front,
			BackText:  back,
		})
	}

	g.logger.InfoContext(ctx, "parsed model response",
		"candidate_count", len(candidates))

	return candidates, nil
}
