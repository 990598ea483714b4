package domain

// ExportTable is the final merged output: one row per input row, in
// input order, original columns plus the analysis columns. Immutable
// once built.
type ExportTable struct {
	Header []string
	Rows   [][]string
}
