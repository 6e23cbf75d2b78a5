// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Contract errors. A contract violation means the LLM or upstream wiring
// broke a structural guarantee the pipeline depends on; continuing would
// corrupt the back-uniqueness invariant, so the batch aborts.
var (
	// ErrContractViolation indicates the tie-breaker response violated the
	// allowed-backs contract (hallucinated front, disallowed back, reused
	// back, or a front left without a decision).
	ErrContractViolation = errors.New("llm contract violation")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnparsableResponse indicates a response stayed unparsable after the
	// strip-and-reparse recovery attempt.
	ErrUnparsableResponse = errors.New("unparsable response")
)

// Client and availability errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Validation errors.
var (
	// ErrNotSquare indicates the assignment solver was given an uneven
	// front/back split.
	ErrNotSquare = errors.New("assignment requires equal front and back counts")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
