package application

import (
	"fmt"
	"strconv"

	"github.com/devbush/call2insights/internal/domain"
)

// Analysis columns appended to the original header on export.
var exportColumns = []string{"root_cause", "reasoning", "empathy_score", "analysis_error"}

// BuildExportTable merges per-row outcomes back onto the original rows.
// Row order matches input order regardless of completion order; failed
// rows carry explicit placeholders instead of being dropped.
func BuildExportTable(rows []domain.TranscriptRow, results []domain.Analysis, failures []domain.Failure) *domain.ExportTable {
	byID := make(map[string]domain.Analysis, len(results))
	for _, res := range results {
		byID[res.RowID] = res
	}
	failedByID := make(map[string]domain.Failure, len(failures))
	for _, f := range failures {
		failedByID[f.RowID] = f
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0].Header()
	}
	header = append(header, exportColumns...)

	table := &domain.ExportTable{
		Header: header,
		Rows:   make([][]string, 0, len(rows)),
	}

	for _, row := range rows {
		record := make([]string, 0, len(header))
		for _, f := range row.Fields {
			record = append(record, f.Value)
		}

		if res, ok := byID[row.ID]; ok {
			record = append(record,
				string(res.RootCause),
				res.Reasoning,
				strconv.Itoa(res.EmpathyScore),
				"",
			)
		} else if f, ok := failedByID[row.ID]; ok {
			record = append(record,
				fmt.Sprintf("ANALYSIS_FAILED (%s)", f.Kind),
				"",
				"",
				f.Message,
			)
		} else {
			// No outcome recorded for this row; surface it rather than
			// silently exporting a bare row.
			record = append(record,
				fmt.Sprintf("ANALYSIS_FAILED (%s)", domain.FailCancelled),
				"",
				"",
				"no outcome recorded",
			)
		}

		table.Rows = append(table.Rows, record)
	}

	return table
}
