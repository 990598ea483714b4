package ports

import "github.com/devbush/call2insights/internal/domain"

// Columns names the user-selected source columns. ID and Transcript are
// required; AuditorComment and ErrorCode may be empty when the source
// file has no such columns.
type Columns struct {
	ID             string
	Transcript     string
	AuditorComment string
	ErrorCode      string
}

// SourceReader parses an uploaded tabular file into transcript rows.
type SourceReader interface {
	// Header returns the column names of the file, in file order.
	Header(path string) ([]string, error)

	// Read parses the file into rows. Every source column is preserved
	// as a passthrough field; row order matches file order.
	Read(path string, cols Columns) ([]domain.TranscriptRow, error)
}
