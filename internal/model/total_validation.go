package model

import "github.com/shopspring/decimal"

// TotalValidation is the result of reconciling the AI-extracted document
// total against the total calculated from classified data rows.
type TotalValidation struct {
	ExtractedTotal    decimal.Decimal `json:"extracted_total"`
	CalculatedTotal   decimal.Decimal `json:"calculated_total"`
	Difference        decimal.Decimal `json:"difference"`
	Note              string          `json:"note,omitempty"`
	DifferencePercent float64         `json:"difference_percent"`
	SkippedCells      int             `json:"skipped_cells,omitempty"`
	Matches           bool            `json:"matches"`
	NeedsReview       bool            `json:"needs_review"`
	Populated         bool            `json:"populated"`
}
