package application

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/devbush/call2insights/internal/domain"
)

const promptText = `You are an expert insurance compliance analyst specializing in FNOL (First Notice of Loss) call quality assessment.

Analyze the following FNOL call transcript between an agent and a policyholder. An auditor has already reviewed this call; their comment and the error code they assigned are provided as context. Your task is to determine the single root cause behind the compliance issue and rate the agent's empathy.

TRANSCRIPT:
{{.Transcript}}

AUDITOR COMMENT:
{{.AuditorComment}}

ERROR CODE:
{{.ErrorCode}}

ROOT CAUSE THEMES (choose exactly one, verbatim):
{{range $i, $t := .Themes}}{{inc $i}}. {{$t}}
{{end}}
EVALUATION CRITERIA:
- The root cause must explain WHY the agent made the flagged mistake, not restate what the mistake was
- The empathy score rates the agent's empathetic communication across the whole call: 0 is no empathy, 100 is exemplary
- The reasoning must justify the chosen root cause in 2-4 sentences and must not contain names, phone numbers, policy numbers, or any other personal identifiers

Respond ONLY with a valid JSON object in this exact format (no additional text, no markdown):
{
  "root_cause": "<one theme from the list above, verbatim>",
  "reasoning": "<2-4 sentence justification, no personal identifiers>",
  "empathy_score": <integer 0-100>
}`

var promptTemplate = template.Must(
	template.New("analysis").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(promptText),
)

// PromptBuilder renders the fixed analysis instructions together with
// per-row values. Rendering is deterministic: identical inputs always
// produce byte-identical prompts.
type PromptBuilder struct {
	maxTranscriptChars int
}

// NewPromptBuilder creates a prompt builder. maxTranscriptChars bounds
// the accepted transcript length; zero or negative disables the bound.
func NewPromptBuilder(maxTranscriptChars int) *PromptBuilder {
	return &PromptBuilder{maxTranscriptChars: maxTranscriptChars}
}

// Build renders the prompt for one row. The transcript, auditor comment
// and error code are embedded verbatim.
func (b *PromptBuilder) Build(row domain.TranscriptRow) (string, error) {
	if !row.HasTranscript() {
		return "", fmt.Errorf("row %s: %w", row.ID, domain.ErrEmptyTranscript)
	}
	if b.maxTranscriptChars > 0 && len(row.Transcript) > b.maxTranscriptChars {
		return "", fmt.Errorf("row %s (%d chars): %w", row.ID, len(row.Transcript), domain.ErrTranscriptTooLong)
	}

	var sb strings.Builder
	err := promptTemplate.Execute(&sb, struct {
		Transcript     string
		AuditorComment string
		ErrorCode      string
		Themes         []domain.RootCause
	}{
		Transcript:     row.Transcript,
		AuditorComment: row.AuditorComment,
		ErrorCode:      row.ErrorCode,
		Themes:         domain.RootCauses,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	return sb.String(), nil
}
