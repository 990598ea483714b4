package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/devbush/call2insights/internal/domain"
	"github.com/devbush/call2insights/internal/ports"
)

// Writer serializes an export table to a CSV file.
type Writer struct{}

var _ ports.Exporter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Write(path string, table *domain.ExportTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrExport, path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(table.Header); err != nil {
		f.Close()
		return fmt.Errorf("%w: write header: %v", domain.ErrExport, err)
	}
	for i, record := range table.Rows {
		if err := cw.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("%w: write row %d: %v", domain.ErrExport, i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("%w: flush %s: %v", domain.ErrExport, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrExport, path, err)
	}
	return nil
}
