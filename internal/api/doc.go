// Package api handles incoming HTTP requests, request validation, and
// response formatting for the auth, generation, and flashcard endpoints.
// It acts as an adapter between external clients and the internal services,
// translating HTTP concerns to business operations and service errors back
// to the wire contract.
package api
