package format

import (
	"log/slog"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/classify"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// Applier reapplies a learned format to freshly extracted tables:
// header remapping, column padding, deleted-row restoration, and
// summary-row marking.
type Applier struct {
	classifier *classify.Classifier
}

// NewApplier creates an applier that uses the given classifier to
// independently verify summary rows.
func NewApplier(classifier *classify.Classifier) *Applier {
	return &Applier{classifier: classifier}
}

// ApplyToTables drops tables the human deleted, then applies the learned
// format to each remaining table. The input slice is not mutated.
func (a *Applier) ApplyToTables(tables []*model.Table, learned *model.LearnedFormat, matchScore float64) []*model.Table {
	if learned == nil {
		return tables
	}

	deleted := make(map[int]bool, len(learned.EditorSettings.DeletedTables))
	for _, idx := range learned.EditorSettings.DeletedTables {
		deleted[idx] = true
	}

	result := make([]*model.Table, 0, len(tables))
	for i, table := range tables {
		if deleted[i] {
			slog.Debug("skipping deleted table", "table_index", i)
			continue
		}
		result = append(result, a.Apply(table, learned, matchScore))
	}
	return result
}

// Apply returns a new table with the learned format applied. The input
// table is never mutated. A structurally incompatible format (no learned
// headers) makes Apply a no-op so the caller can fall back to the raw
// extraction.
func (a *Applier) Apply(table *model.Table, learned *model.LearnedFormat, matchScore float64) *model.Table {
	if learned == nil || len(learned.Headers) == 0 {
		slog.Warn("learned format is structurally incompatible, skipping apply")
		return table
	}

	applied := table.Clone()

	a.removeDeletedRows(applied, learned.EditorSettings.DeletedRows)
	a.reconcileHeaders(applied, learned, matchScore)
	a.restoreSummaryRows(applied, learned.EditorSettings.SummaryRows)

	if HasFinancialHeaders(applied.Headers) {
		applied.Type = model.TableTypeCommission
	}
	return applied
}

// removeDeletedRows excludes rows the human previously deleted, then
// renumbers the surviving summary indices.
func (a *Applier) removeDeletedRows(table *model.Table, deletedRows []int) {
	if len(deletedRows) == 0 {
		return
	}

	deleted := make(map[int]bool, len(deletedRows))
	for _, idx := range deletedRows {
		deleted[idx] = true
	}

	kept := make([][]string, 0, len(table.Rows))
	remapped := make(map[int]bool)
	for i, row := range table.Rows {
		if deleted[i] {
			continue
		}
		if table.SummaryRowIndices[i] {
			remapped[len(kept)] = true
		}
		kept = append(kept, row)
	}
	table.Rows = kept
	table.SummaryRowIndices = remapped
}

// reconcileHeaders replaces the extracted headers with the learned ones.
// When the column counts disagree, trust direction depends on context:
// a high-confidence match on a financial layout trusts the human-verified
// learned headers and adjusts the rows, because AI extractors frequently
// mis-split financial columns. Otherwise the learned headers are padded
// or truncated to the extracted column count.
func (a *Applier) reconcileHeaders(table *model.Table, learned *model.LearnedFormat, matchScore float64) {
	if len(learned.Headers) == len(table.Headers) {
		table.Headers = append([]string(nil), learned.Headers...)
		return
	}

	if HasFinancialHeaders(learned.Headers) && matchScore >= HighMatchScore {
		slog.Debug("adjusting row columns to learned financial layout",
			"extracted_columns", len(table.Headers),
			"learned_columns", len(learned.Headers))
		table.Headers = append([]string(nil), learned.Headers...)
		table.Normalize()
		return
	}

	adjusted := make([]string, len(table.Headers))
	copied := copy(adjusted, learned.Headers)
	for i := copied; i < len(adjusted); i++ {
		adjusted[i] = table.Headers[i]
	}
	table.Headers = adjusted
}

// restoreSummaryRows unions the previously confirmed summary rows with
// whatever the classifier independently flags. A human-confirmed summary
// row is never dropped.
func (a *Applier) restoreSummaryRows(table *model.Table, confirmed []int) {
	for _, idx := range confirmed {
		table.MarkSummaryRow(idx)
	}

	if a.classifier == nil {
		return
	}
	for _, result := range a.classifier.Classify(table) {
		if result.IsSummary {
			table.MarkSummaryRow(result.RowIndex)
		}
	}
}
