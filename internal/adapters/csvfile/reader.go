package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devbush/call2insights/internal/domain"
	"github.com/devbush/call2insights/internal/ports"
)

// Reader parses CSV source files into transcript rows.
type Reader struct {
	// maxBytes caps the source file size. Zero disables the check.
	maxBytes int64
}

var _ ports.SourceReader = (*Reader)(nil)

func NewReader(maxBytes int64) *Reader {
	return &Reader{maxBytes: maxBytes}
}

// Header returns the column names of the file, in file order.
func (r *Reader) Header(path string) ([]string, error) {
	f, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("source file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return header, nil
}

// Read parses the file into transcript rows. The identifier and
// transcript columns are required; auditor-comment and error-code
// columns are used only when named. Every source column is preserved
// as a passthrough field in file order.
func (r *Reader) Read(path string, cols ports.Columns) ([]domain.TranscriptRow, error) {
	if cols.ID == "" || cols.Transcript == "" {
		return nil, errors.New("identifier and transcript columns must be selected")
	}

	f, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("source file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	idIdx, err := requireColumn(index, cols.ID)
	if err != nil {
		return nil, err
	}
	transcriptIdx, err := requireColumn(index, cols.Transcript)
	if err != nil {
		return nil, err
	}
	commentIdx := -1
	if cols.AuditorComment != "" {
		if commentIdx, err = requireColumn(index, cols.AuditorComment); err != nil {
			return nil, err
		}
	}
	errorCodeIdx := -1
	if cols.ErrorCode != "" {
		if errorCodeIdx, err = requireColumn(index, cols.ErrorCode); err != nil {
			return nil, err
		}
	}

	var rows []domain.TranscriptRow
	seen := make(map[string]int)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		fields := make([]domain.Field, len(header))
		for i, name := range header {
			fields[i] = domain.Field{Name: name, Value: record[i]}
		}

		id := strings.TrimSpace(record[idIdx])
		if id == "" {
			// Blank identifier cells get a synthetic positional id so
			// the row still maps to exactly one outcome.
			id = fmt.Sprintf("T%d", len(rows)+1)
			fields[idIdx].Value = id
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate row identifier %q (rows %d and %d)", id, prev, len(rows)+1)
		}
		seen[id] = len(rows) + 1

		row := domain.TranscriptRow{
			ID:         id,
			Transcript: record[transcriptIdx],
			Fields:     fields,
		}
		if commentIdx >= 0 {
			row.AuditorComment = record[commentIdx]
		}
		if errorCodeIdx >= 0 {
			row.ErrorCode = record[errorCodeIdx]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (r *Reader) open(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return nil, fmt.Errorf("source file %s is %d bytes, exceeds the %d byte limit", path, info.Size(), r.maxBytes)
	}
	return os.Open(path)
}

func requireColumn(index map[string]int, name string) (int, error) {
	i, ok := index[name]
	if !ok {
		return 0, fmt.Errorf("column %q not found in source file", name)
	}
	return i, nil
}
