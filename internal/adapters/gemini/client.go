package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/devbush/call2insights/internal/domain"
	"github.com/devbush/call2insights/internal/ports"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 60 * time.Second
	// Low temperature keeps the structured output stable across calls.
	temperature = float32(0.3)
)

// Config holds the Gemini connection and retry parameters.
type Config struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// generateFunc performs one raw model call. Swappable in tests.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Client talks to the Gemini API and enforces the structured response
// contract: exactly root_cause, reasoning and empathy_score.
type Client struct {
	cfg      Config
	logger   *zap.Logger
	generate generateFunc
}

var _ ports.Analyzer = (*Client)(nil)

// New builds a Client backed by the real Gemini API.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	c := newClient(cfg, logger)
	model := c.cfg.Model
	c.generate = func(ctx context.Context, prompt string) (string, error) {
		result, err := api.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr(temperature),
		})
		if err != nil {
			return "", err
		}
		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return "", &domain.ParseError{Reason: "empty response from model"}
		}
		var sb strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() == 0 {
			return "", &domain.ParseError{Reason: "response contained no text parts"}
		}
		return sb.String(), nil
	}
	return c, nil
}

func newClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, logger: logger}
}

// Analyze sends one prompt and returns the parsed completion. Transient
// failures (rate limits, 5xx, per-call timeouts) are retried with
// exponential backoff and jitter up to MaxRetries; contract violations
// and auth/request errors fail immediately.
func (c *Client) Analyze(ctx context.Context, prompt string) (*domain.Completion, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debug("retrying analysis call",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		raw, err := c.generate(callCtx, prompt)
		cancel()

		if err != nil {
			var parseErr *domain.ParseError
			if errors.As(err, &parseErr) {
				return nil, err
			}
			err = c.classify(ctx, err)
			if !domain.IsTransient(err) {
				return nil, err
			}
			c.logger.Warn("transient analysis failure",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		completion, err := parseCompletion(raw)
		if err != nil {
			// A response that violates the contract will not improve
			// on retry; surface it as a ParseError immediately.
			return nil, err
		}
		return completion, nil
	}

	return nil, lastErr
}

// classify maps a raw transport error onto the domain error taxonomy.
// The Gemini SDK exposes status codes only through error text, so this
// is string matching on the canonical code names.
func (c *Client) classify(parent context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrRequestTimeout, err)
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "429", "quota", "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case containsAny(msg, "401", "403", "API key", "PERMISSION_DENIED", "UNAUTHENTICATED"):
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	case containsAny(msg, "400", "INVALID_ARGUMENT"):
		return fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	case containsAny(msg, "500", "502", "503", "UNAVAILABLE", "INTERNAL"):
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	default:
		// Unrecognized transport errors (connection resets, DNS) are
		// treated as transient.
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.RetryBaseDelay << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	return delay + jitter
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// completionPayload mirrors the JSON object the prompt instructs the
// model to emit. Unknown fields are rejected at decode time.
type completionPayload struct {
	RootCause    string      `json:"root_cause"`
	Reasoning    string      `json:"reasoning"`
	EmpathyScore json.Number `json:"empathy_score"`
}

// parseCompletion decodes a raw model response into a Completion,
// stripping markdown fences the model sometimes wraps around JSON.
func parseCompletion(raw string) (*domain.Completion, error) {
	text := stripFences(raw)

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var payload completionPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, &domain.ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return nil, &domain.ParseError{Reason: "trailing content after JSON object"}
	}

	cause, err := domain.ParseRootCause(payload.RootCause)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Reasoning) == "" {
		return nil, &domain.ParseError{Reason: "reasoning is missing or empty"}
	}
	if payload.EmpathyScore == "" {
		return nil, &domain.ParseError{Reason: "empathy_score is missing"}
	}
	score, err := strconv.Atoi(payload.EmpathyScore.String())
	if err != nil {
		return nil, &domain.ParseError{Reason: fmt.Sprintf("empathy_score %q is not an integer", payload.EmpathyScore.String())}
	}
	if score < 0 || score > 100 {
		return nil, &domain.ParseError{Reason: fmt.Sprintf("empathy_score %d outside [0,100]", score)}
	}

	return &domain.Completion{
		RootCause:    cause,
		Reasoning:    payload.Reasoning,
		EmpathyScore: score,
	}, nil
}

// stripFences removes a surrounding markdown code fence, with or
// without the json language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
