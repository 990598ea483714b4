package domain

import "strings"

// Field is a single named column value from the source file.
type Field struct {
	Name  string
	Value string
}

// TranscriptRow represents one call transcript from the uploaded file.
// ID, Transcript, AuditorComment and ErrorCode are pulled from
// user-selected columns; Fields preserves every source column in its
// original order for export.
type TranscriptRow struct {
	ID             string
	Transcript     string
	AuditorComment string
	ErrorCode      string
	Fields         []Field
}

// HasTranscript reports whether the row carries non-blank transcript text.
func (r TranscriptRow) HasTranscript() bool {
	return strings.TrimSpace(r.Transcript) != ""
}

// Header returns the column names of the row's passthrough fields.
func (r TranscriptRow) Header() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}
