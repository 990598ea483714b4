package application

import (
	"errors"
	"strings"
	"testing"

	"github.com/devbush/call2insights/internal/domain"
)

func testRow() domain.TranscriptRow {
	return domain.TranscriptRow{
		ID:             "T001",
		Transcript:     "Agent: Hello, how can I help? Customer: I need to report an accident.",
		AuditorComment: "Agent skipped identity verification.",
		ErrorCode:      "E-204",
	}
}

func TestPromptBuilder_Build(t *testing.T) {
	b := NewPromptBuilder(30000)

	prompt, err := b.Build(testRow())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// The three supplied values appear verbatim.
	for _, want := range []string{
		"Agent: Hello, how can I help? Customer: I need to report an accident.",
		"Agent skipped identity verification.",
		"E-204",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// The closed vocabulary is listed in full.
	for _, rc := range domain.RootCauses {
		if !strings.Contains(prompt, string(rc)) {
			t.Errorf("prompt missing root cause theme %q", rc)
		}
	}

	// The strict output directive is present.
	if !strings.Contains(prompt, "Respond ONLY with a valid JSON object") {
		t.Error("prompt missing output format directive")
	}
	if !strings.Contains(prompt, "no personal identifiers") {
		t.Error("prompt missing personal-identifier exclusion")
	}
}

func TestPromptBuilder_Deterministic(t *testing.T) {
	b := NewPromptBuilder(30000)
	row := testRow()

	first, err := b.Build(row)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := b.Build(row)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if again != first {
			t.Fatalf("Build() not deterministic on iteration %d", i)
		}
	}
}

func TestPromptBuilder_EmptyTranscript(t *testing.T) {
	b := NewPromptBuilder(30000)

	for _, transcript := range []string{"", "   ", "\n\t"} {
		row := testRow()
		row.Transcript = transcript

		_, err := b.Build(row)
		if !errors.Is(err, domain.ErrEmptyTranscript) {
			t.Errorf("Build(transcript=%q) error = %v, want ErrEmptyTranscript", transcript, err)
		}
	}
}

func TestPromptBuilder_TranscriptTooLong(t *testing.T) {
	b := NewPromptBuilder(10)

	row := testRow()
	_, err := b.Build(row)
	if !errors.Is(err, domain.ErrTranscriptTooLong) {
		t.Errorf("Build() error = %v, want ErrTranscriptTooLong", err)
	}

	// Exactly at the bound passes.
	row.Transcript = strings.Repeat("a", 10)
	if _, err := b.Build(row); err != nil {
		t.Errorf("Build() at exact bound error = %v", err)
	}
}

func TestPromptBuilder_NoLimit(t *testing.T) {
	b := NewPromptBuilder(0)

	row := testRow()
	row.Transcript = strings.Repeat("a", 100000)
	if _, err := b.Build(row); err != nil {
		t.Errorf("Build() with disabled limit error = %v", err)
	}
}
