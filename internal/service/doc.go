// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. Service Interfaces:
//   - GenerationService turns pasted study text into flashcard candidates and
//     records each attempt as a generation batch
//   - FlashcardService covers manual flashcard management, from creation
//     through bulk deletion
//   - The auth subpackage handles password hashing and JWT issuance; the
//     review subpackage finalizes a batch of candidate decisions
//
// 2. Use Case Implementations:
//   - Coordinate between stores and domain entities
//   - Apply transactional boundaries when an operation must write atomically
//   - Enforce application-level rules such as the per-owner flashcard ceiling
//
// 3. Error Handling:
//   - Expected conditions surface as sentinel errors callers check with
//     errors.Is; unexpected failures are wrapped in service-specific error
//     types carrying the failed operation
//   - The API layer maps both forms onto HTTP status codes
//
// The service layer depends on domain entities and store interfaces, never on
// specific infrastructure implementations.
package service
