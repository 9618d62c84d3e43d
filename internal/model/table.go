// Package model defines the core domain models used throughout the application.
package model

import "sort"

// TableType identifies the kind of extracted table.
type TableType string

// Table type constants.
const (
	TableTypeCommission TableType = "commission_table"
	TableTypeSummary    TableType = "summary_table"
	TableTypeUnknown    TableType = "unknown"
)

// Table is a single table extracted from a commission statement.
// Rows hold raw cell text; SummaryRowIndices marks rows that are
// totals, subtotals, or agent/group labels rather than data.
type Table struct {
	SummaryRowIndices map[int]bool
	Type              TableType
	Headers           []string
	Rows              [][]string
}

// NewTable creates a table with the given headers and rows.
func NewTable(headers []string, rows [][]string) *Table {
	return &Table{
		Headers:           headers,
		Rows:              rows,
		SummaryRowIndices: make(map[int]bool),
		Type:              TableTypeUnknown,
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	clone := &Table{
		Headers:           append([]string(nil), t.Headers...),
		Rows:              make([][]string, len(t.Rows)),
		SummaryRowIndices: make(map[int]bool, len(t.SummaryRowIndices)),
		Type:              t.Type,
	}
	for i, row := range t.Rows {
		clone.Rows[i] = append([]string(nil), row...)
	}
	for idx, v := range t.SummaryRowIndices {
		clone.SummaryRowIndices[idx] = v
	}
	return clone
}

// MarkSummaryRow records a row index as a summary row.
func (t *Table) MarkSummaryRow(idx int) {
	if t.SummaryRowIndices == nil {
		t.SummaryRowIndices = make(map[int]bool)
	}
	if idx >= 0 && idx < len(t.Rows) {
		t.SummaryRowIndices[idx] = true
	}
}

// IsSummaryRow reports whether the row at idx is marked as a summary row.
func (t *Table) IsSummaryRow(idx int) bool {
	return t.SummaryRowIndices[idx]
}

// SummaryRows returns the marked summary row indices in ascending order.
func (t *Table) SummaryRows() []int {
	indices := make([]int, 0, len(t.SummaryRowIndices))
	for idx := range t.SummaryRowIndices {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// Normalize pads or truncates every row to the header length so that
// downstream consumers can index cells by column position.
func (t *Table) Normalize() {
	want := len(t.Headers)
	for i, row := range t.Rows {
		switch {
		case len(row) < want:
			padded := make([]string, want)
			copy(padded, row)
			t.Rows[i] = padded
		case len(row) > want:
			t.Rows[i] = row[:want]
		}
	}
}
