package generation

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// staticModelName is the provenance label recorded for stub generations.
	staticModelName = "static-v1"

	// maxStaticCandidates caps how many candidates one call derives.
	maxStaticCandidates = 10

	// minStaticSentenceLen filters out fragments too short to make a card.
	minStaticSentenceLen = 20

	// maxStaticBackLen truncates overlong sentences so candidates stay
	// acceptable as flashcard backs.
	maxStaticBackLen = 400
)

// StaticGenerator is a deterministic CardGenerator for development and tests.
// It derives one candidate per sentence of the input, needing no network and
// producing the same output for the same input every time.
type StaticGenerator struct {
	logger *slog.Logger
}

// Verify StaticGenerator implements CardGenerator
var _ CardGenerator = (*StaticGenerator)(nil)

// NewStaticGenerator creates a new StaticGenerator.
func NewStaticGenerator(logger *slog.Logger) *StaticGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticGenerator{
		logger: logger.With(slog.String("component", "static_generator")),
	}
}

// GenerateCards implements CardGenerator.GenerateCards
// Each sufficiently long sentence becomes one candidate whose front asks to
// complete the sentence's opening words and whose back is the sentence itself.
func (g *StaticGenerator) GenerateCards(ctx context.Context, inputText string) (*GenerationResult, error) {
	start := time.Now()

	inputText = strings.TrimSpace(inputText)
	if inputText == "" {
		return nil, ErrEmptyInput
	}

	candidates := make([]Candidate, 0, maxStaticCandidates)
	for _, sentence := range splitSentences(inputText) {
		if len(candidates) == maxStaticCandidates {
			break
		}
		if utf8.RuneCountInString(sentence) < minStaticSentenceLen {
			continue
		}

		back := sentence
		if utf8.RuneCountInString(back) > maxStaticBackLen {
			back = string([]rune(back)[:maxStaticBackLen])
		}

		candidates = append(candidates, Candidate{
			Index:     len(candidates),
			FrontText: "Complete the statement: " + firstWords(sentence, 6) + " ...",
			BackText:  back,
		})
	}

	if len(candidates) == 0 {
		return nil, ErrInvalidModelOutput
	}

	g.logger.DebugContext(ctx, "static generation complete",
		slog.Int("candidate_count", len(candidates)),
		slog.Int("input_length", utf8.RuneCountInString(inputText)))

	return &GenerationResult{
		Candidates: candidates,
		ModelUsed:  staticModelName,
		TimeTaken:  time.Since(start),
	}, nil
}

// splitSentences breaks text on sentence-ending punctuation and newlines,
// dropping empty fragments.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// firstWords returns up to n leading words of the sentence.
func firstWords(sentence string, n int) string {
	words := strings.Fields(sentence)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
