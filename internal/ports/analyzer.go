package ports

import (
	"context"

	"github.com/devbush/call2insights/internal/domain"
)

// Analyzer is the boundary to the external AI completion service.
// Implementations send a rendered prompt, enforce per-call timeouts and
// retry policy, and return the strictly-parsed completion. Analyzer
// implementations hold no per-call state and are safe to invoke
// concurrently.
type Analyzer interface {
	// Analyze sends the prompt and returns the structured completion.
	// Errors are classified with the domain sentinels so callers can
	// distinguish transient, non-retryable, and parse failures.
	Analyze(ctx context.Context, prompt string) (*domain.Completion, error)
}
