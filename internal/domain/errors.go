package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Input validation errors
	ErrEmptyTranscript   = errors.New("transcript is empty")
	ErrTranscriptTooLong = errors.New("transcript exceeds maximum length")

	// Transient AI service errors (retried with backoff)
	ErrRateLimited        = errors.New("rate limited by AI service")
	ErrServiceUnavailable = errors.New("AI service unavailable")
	ErrRequestTimeout     = errors.New("AI request timed out")

	// Non-retryable AI service errors
	ErrUnauthorized = errors.New("AI service rejected credentials")
	ErrBadRequest   = errors.New("AI service rejected request")

	// Configuration errors
	ErrMissingAPIKey = errors.New("API key not configured")

	// Export errors
	ErrExport = errors.New("export failed")
)

// ParseError describes an AI response that violated the structured
// output contract.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed AI response: %s", e.Reason)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrRequestTimeout)
}

// ClassifyFailure maps an error from the per-row pipeline to the
// FailureKind recorded in the export.
func ClassifyFailure(err error) FailureKind {
	var parseErr *ParseError
	switch {
	case errors.Is(err, ErrEmptyTranscript), errors.Is(err, ErrTranscriptTooLong):
		return FailValidation
	case errors.As(err, &parseErr):
		return FailParse
	case errors.Is(err, context.Canceled):
		return FailCancelled
	case IsTransient(err):
		return FailTransient
	default:
		return FailNonRetryable
	}
}
