package reconcile

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// Tolerance is the absolute difference, in currency units, under which
// an extracted and calculated total are considered matching.
var Tolerance = decimal.NewFromFloat(0.01)

// primaryCommissionField wins outright when present in the mapping.
const primaryCommissionField = "commission earned"

// alternateCommissionFields are accepted when no primary field resolves.
var alternateCommissionFields = map[string]bool{
	"paid amount":       true,
	"commission amount": true,
	"earned commission": true,
}

// excludedCommissionFields are rate-like columns that must never be
// summed even when they resemble an alternate field.
var excludedCommissionFields = map[string]bool{
	"commission rate":       true,
	"rate":                  true,
	"percentage":            true,
	"agent rate":            true,
	"agent %":               true,
	"agent percent":         true,
	"total commission paid": true,
}

// Reconciler validates calculated commission totals against the document
// total the extractor reported.
type Reconciler struct{}

// NewReconciler creates a total reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile sums the commission column across all data rows, compares it
// to the AI-extracted total, and applies the four-way validation policy.
// A nil extractedTotal means the extractor reported no document total.
func (r *Reconciler) Reconcile(tables []*model.Table, fieldMapping map[string]string, extractedTotal *decimal.Decimal) model.TotalValidation {
	calculated, skipped, fieldFound := r.calculateTotal(tables, fieldMapping)

	extracted := decimal.Zero
	if extractedTotal != nil {
		extracted = *extractedTotal
	}

	hasExtracted := extracted.GreaterThan(decimal.Zero)
	hasCalculated := calculated.GreaterThan(decimal.Zero)

	validation := model.TotalValidation{
		ExtractedTotal:  extracted,
		CalculatedTotal: calculated,
		SkippedCells:    skipped,
	}

	switch {
	case hasExtracted && hasCalculated:
		validation.Populated = true
		validation.Difference = extracted.Sub(calculated).Abs()
		validation.Matches = validation.Difference.LessThan(Tolerance)
		validation.NeedsReview = !validation.Matches
		if !extracted.IsZero() {
			percent, _ := validation.Difference.Div(extracted).Mul(decimal.NewFromInt(100)).Float64()
			validation.DifferencePercent = percent
		}
		if !validation.Matches {
			validation.Note = "calculated total does not match extracted document total"
		}

	case hasExtracted && !hasCalculated:
		// The document total stands on its own when no table-derived
		// comparison is possible.
		validation.Populated = true
		validation.Matches = true
		validation.NeedsReview = false
		if fieldFound {
			validation.Note = "no rows produced a calculated total; trusting extracted document total"
		} else {
			validation.Note = "no commission field identified; trusting extracted document total"
		}

	case !hasExtracted && hasCalculated:
		// A table-derived total alone cannot self-confirm.
		validation.Populated = true
		validation.Matches = false
		validation.NeedsReview = true
		validation.Note = "no extracted document total to corroborate calculated total"

	default:
		validation.Matches = false
		validation.NeedsReview = true
	}

	if skipped > 0 {
		slog.Warn("skipped unparseable monetary cells during reconciliation", "count", skipped)
	}
	return validation
}

// calculateTotal sums the commission column over every non-summary row
// of every table. Unparseable cells are skipped and counted, never
// treated as zero silently.
func (r *Reconciler) calculateTotal(tables []*model.Table, fieldMapping map[string]string) (decimal.Decimal, int, bool) {
	total := decimal.Zero
	skipped := 0
	fieldFound := false

	for _, table := range tables {
		column := r.commissionColumn(table.Headers, fieldMapping)
		if column < 0 {
			continue
		}
		fieldFound = true

		for i, row := range table.Rows {
			if table.IsSummaryRow(i) {
				continue
			}
			if column >= len(row) {
				continue
			}
			cell := row[column]
			if strings.TrimSpace(cell) == "" {
				continue
			}
			value, err := ParseAmount(cell)
			if err != nil {
				skipped++
				slog.Debug("skipping unparseable cell", "row", i, "cell", cell)
				continue
			}
			total = total.Add(value)
		}
	}

	if !fieldFound {
		slog.Warn("no commission field identified in field mapping; calculated total is zero")
	}
	return total, skipped, fieldFound
}

// commissionColumn resolves the column index to sum, in deterministic
// priority order over the mapped display names: an exact "commission
// earned" match first, then the first alternate field that is not an
// excluded rate-like column.
func (r *Reconciler) commissionColumn(headers []string, fieldMapping map[string]string) int {
	fallback := -1
	for i, header := range headers {
		mapped, ok := fieldMapping[header]
		if !ok {
			mapped = header
		}
		name := normalizeFieldName(mapped)

		if name == primaryCommissionField {
			return i
		}
		if fallback < 0 && alternateCommissionFields[name] && !excludedCommissionFields[name] {
			fallback = i
		}
	}
	return fallback
}

// normalizeFieldName lowercases and collapses whitespace in a display name.
func normalizeFieldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
