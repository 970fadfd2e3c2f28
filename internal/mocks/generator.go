package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fiszkit/fiszkit-api/internal/generation"
)

// MockCardGenerator implements generation.CardGenerator for testing
type MockCardGenerator struct {
	// GenerateCardsFn allows test cases to mock the GenerateCards behavior
	GenerateCardsFn func(ctx context.Context, inputText string) (*generation.GenerationResult, error)

	// Default response values
	Result *generation.GenerationResult
	Err    error

	// Call tracking for verification
	GenerateCardsCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times GenerateCards was called
		Count int

		// InputTexts contains all input texts passed to GenerateCards calls
		InputTexts []string
	}
}

// GenerateCards implements the generation.CardGenerator interface
func (m *MockCardGenerator) GenerateCards(
	ctx context.Context,
	inputText string,
) (*generation.GenerationResult, error) {
	m.GenerateCardsCalls.mu.Lock()
	m.GenerateCardsCalls.Count++
	m.GenerateCardsCalls.InputTexts = append(m.GenerateCardsCalls.InputTexts, inputText)
	m.GenerateCardsCalls.mu.Unlock()

	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, inputText)
	}

	return m.Result, m.Err
}

// Reset resets the call tracking state
func (m *MockCardGenerator) Reset() {
	m.GenerateCardsCalls.mu.Lock()
	defer m.GenerateCardsCalls.mu.Unlock()

	m.GenerateCardsCalls.Count = 0
	m.GenerateCardsCalls.InputTexts = nil
}

// NewMockCardGeneratorWithCandidates creates a MockCardGenerator returning the
// given number of deterministic candidates.
func NewMockCardGeneratorWithCandidates(count int) *MockCardGenerator {
	candidates := make([]generation.Candidate, 0, count)
	for i := 0; i < count; i++ {
		candidates = append(candidates, generation.Candidate{
			Index:     i,
			FrontText: fmt.Sprintf("What does generated question %d ask about?", i),
			BackText:  fmt.Sprintf("It asks about the answer to generated question %d.", i),
		})
	}

	return &MockCardGenerator{
		Result: &generation.GenerationResult{
			Candidates: candidates,
			ModelUsed:  "mock-model",
			TimeTaken:  250 * time.Millisecond,
		},
	}
}

// NewMockCardGeneratorWithError creates a MockCardGenerator that returns the
// specified error
func NewMockCardGeneratorWithError(err error) *MockCardGenerator {
	return &MockCardGenerator{
		Err: err,
	}
}

// MockCardGeneratorRateLimited creates a MockCardGenerator simulating a
// provider rate limit
func MockCardGeneratorRateLimited() *MockCardGenerator {
	return &MockCardGenerator{
		Err: generation.ErrRateLimited,
	}
}

// MockCardGeneratorUnavailable creates a MockCardGenerator simulating an
// unreachable provider
func MockCardGeneratorUnavailable() *MockCardGenerator {
	return &MockCardGenerator{
		Err: generation.ErrUnavailable,
	}
}

// MockCardGeneratorContentBlocked creates a MockCardGenerator simulating the
// provider's safety filters blocking the input
func MockCardGeneratorContentBlocked() *MockCardGenerator {
	return &MockCardGenerator{
		Err: generation.ErrContentBlocked,
	}
}
