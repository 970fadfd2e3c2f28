// Package generation defines the card generator boundary for producing
// flashcard candidates from source text. It abstracts the details of LLM API
// integration (Gemini), so the application can generate candidates without
// coupling to a specific external service, and ships a deterministic
// StaticGenerator for development and tests.
package generation
