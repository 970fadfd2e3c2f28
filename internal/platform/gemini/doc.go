// Package gemini implements the generation.CardGenerator interface against
// Google's Gemini API.
//
// This package is an infrastructure adapter: it translates between the
// application's candidate model and the Gemini API without exposing the
// external service to the core application.
//
// Key behaviors:
//
//  1. Prompt construction from a fixed embedded template.
//  2. One GenerateContent call per generation request, asking for a JSON
//     response and parsing it into ordered candidates.
//  3. Retry with exponential backoff and jitter for transient failures
//     (rate limits, provider 5xx, network errors), honoring context
//     cancellation. Permanent failures such as safety blocks and malformed
//     output are never retried.
//  4. Translation of API failures into the generation package's sentinel
//     errors so the transport layer can map them to status codes.
package gemini
