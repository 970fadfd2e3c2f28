// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, flashcards, generation batches and
// review decisions. It is independent of any specific infrastructure or
// delivery mechanism.
package domain
