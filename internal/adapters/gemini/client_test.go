package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/devbush/call2insights/internal/domain"
)

func testClient(t *testing.T, cfg Config, generate generateFunc) *Client {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = time.Millisecond
	}
	c := newClient(cfg, nil)
	c.generate = generate
	return c
}

const validResponse = `{"root_cause": "Knowledge Gap", "reasoning": "Agent did not know the coverage rule.", "empathy_score": 72}`

func TestAnalyze_Success(t *testing.T) {
	calls := 0
	c := testClient(t, Config{}, func(ctx context.Context, prompt string) (string, error) {
		calls++
		return validResponse, nil
	})

	got, err := c.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.RootCause != domain.RootCauseKnowledgeGap {
		t.Errorf("RootCause = %q", got.RootCause)
	}
	if got.EmpathyScore != 72 {
		t.Errorf("EmpathyScore = %d", got.EmpathyScore)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAnalyze_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	c := testClient(t, Config{MaxRetries: 3}, func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")
		}
		return validResponse, nil
	})

	got, err := c.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got == nil || calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestAnalyze_ExhaustsRetries(t *testing.T) {
	calls := 0
	c := testClient(t, Config{MaxRetries: 2}, func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("503 UNAVAILABLE")
	})

	_, err := c.Analyze(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("Analyze() error = %v, want ErrServiceUnavailable", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestAnalyze_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	c := testClient(t, Config{MaxRetries: 5}, func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("googleapi: Error 403: PERMISSION_DENIED")
	})

	_, err := c.Analyze(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Analyze() error = %v, want ErrUnauthorized", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAnalyze_ParseErrorNotRetried(t *testing.T) {
	calls := 0
	c := testClient(t, Config{MaxRetries: 5}, func(ctx context.Context, prompt string) (string, error) {
		calls++
		return `{"root_cause": "Bad Weather", "reasoning": "x", "empathy_score": 10}`, nil
	})

	_, err := c.Analyze(context.Background(), "prompt")
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Analyze() error = %v, want ParseError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAnalyze_PerCallTimeoutIsTransient(t *testing.T) {
	calls := 0
	c := testClient(t, Config{Timeout: 10 * time.Millisecond, MaxRetries: 1}, func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return validResponse, nil
	})

	got, err := c.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got == nil || calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestAnalyze_ParentCancellationWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := testClient(t, Config{MaxRetries: 3}, func(ctx context.Context, prompt string) (string, error) {
		cancel()
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := c.Analyze(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: "  "}, nil)
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("New() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestClassify(t *testing.T) {
	c := testClient(t, Config{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit code", errors.New("googleapi: Error 429"), domain.ErrRateLimited},
		{"quota text", errors.New("quota exceeded for model"), domain.ErrRateLimited},
		{"server error", errors.New("500 INTERNAL"), domain.ErrServiceUnavailable},
		{"unavailable", errors.New("UNAVAILABLE: try again"), domain.ErrServiceUnavailable},
		{"bad api key", errors.New("API key not valid"), domain.ErrUnauthorized},
		{"unauthenticated", errors.New("UNAUTHENTICATED"), domain.ErrUnauthorized},
		{"bad request", errors.New("400 INVALID_ARGUMENT"), domain.ErrBadRequest},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), domain.ErrRequestTimeout},
		{"unknown treated transient", errors.New("connection reset by peer"), domain.ErrServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.classify(ctx, tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_ParentContextTakesPriority(t *testing.T) {
	c := testClient(t, Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := c.classify(ctx, errors.New("429"))
	if !errors.Is(got, context.Canceled) {
		t.Errorf("classify() = %v, want context.Canceled", got)
	}
}

func TestParseCompletion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name: "plain json",
			raw:  validResponse,
		},
		{
			name: "fenced json",
			raw:  "```json\n" + validResponse + "\n```",
		},
		{
			name: "fenced without language tag",
			raw:  "```\n" + validResponse + "\n```",
		},
		{
			name: "score zero accepted",
			raw:  `{"root_cause": "Time Pressure", "reasoning": "rushed", "empathy_score": 0}`,
		},
		{
			name: "score hundred accepted",
			raw:  `{"root_cause": "Time Pressure", "reasoning": "rushed", "empathy_score": 100}`,
		},
		{
			name:    "unknown root cause",
			raw:     `{"root_cause": "Complex Customer Scenario", "reasoning": "x", "empathy_score": 50}`,
			wantErr: "unknown root cause",
		},
		{
			name:    "extra field rejected",
			raw:     `{"root_cause": "Knowledge Gap", "reasoning": "x", "empathy_score": 50, "confidence": 0.9}`,
			wantErr: "invalid JSON",
		},
		{
			name:    "fractional score rejected",
			raw:     `{"root_cause": "Knowledge Gap", "reasoning": "x", "empathy_score": 85.5}`,
			wantErr: "not an integer",
		},
		{
			name:    "negative score rejected",
			raw:     `{"root_cause": "Knowledge Gap", "reasoning": "x", "empathy_score": -1}`,
			wantErr: "outside [0,100]",
		},
		{
			name:    "score above range rejected",
			raw:     `{"root_cause": "Knowledge Gap", "reasoning": "x", "empathy_score": 101}`,
			wantErr: "outside [0,100]",
		},
		{
			name:    "missing score rejected",
			raw:     `{"root_cause": "Knowledge Gap", "reasoning": "x"}`,
			wantErr: "empathy_score is missing",
		},
		{
			name:    "empty reasoning rejected",
			raw:     `{"root_cause": "Knowledge Gap", "reasoning": "  ", "empathy_score": 50}`,
			wantErr: "reasoning is missing",
		},
		{
			name:    "trailing prose rejected",
			raw:     validResponse + "\nHope this helps!",
			wantErr: "trailing content",
		},
		{
			name:    "not json at all",
			raw:     "The root cause is Knowledge Gap.",
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCompletion(tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("parseCompletion() error = %v", err)
				}
				if got == nil {
					t.Fatal("parseCompletion() returned nil completion")
				}
				return
			}
			var parseErr *domain.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("parseCompletion() error = %v, want ParseError", err)
			}
			if !containsAny(parseErr.Reason, tt.wantErr) {
				t.Errorf("reason = %q, want it to contain %q", parseErr.Reason, tt.wantErr)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	want := `{"a":1}`
	for _, raw := range []string{
		want,
		"```json\n{\"a\":1}\n```",
		"```\n{\"a\":1}\n```",
		"  ```json\n{\"a\":1}\n```  ",
	} {
		if got := stripFences(raw); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", raw, got, want)
		}
	}
}
