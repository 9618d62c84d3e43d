package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/classify"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

func TestApplier_ReplacesHeadersSameLength(t *testing.T) {
	table := model.NewTable(
		[]string{"col_1", "col_2", "col_3"},
		[][]string{{"L100001", "Acme", "$100.00"}},
	)
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company", "Commission Earned"},
	}

	applied := NewApplier(nil).Apply(table, learned, 1.0)

	assert.Equal(t, []string{"Group No", "Company", "Commission Earned"}, applied.Headers)
	assert.Equal(t, []string{"col_1", "col_2", "col_3"}, table.Headers, "input table must not be mutated")
}

func TestApplier_FinancialHighScoreTrustsLearnedLayout(t *testing.T) {
	// A trusted financial layout wins over the extracted column count:
	// rows are padded out to the learned headers.
	table := model.NewTable(
		[]string{"Group No", "Company", "Commission Earned"},
		[][]string{{"L100001", "Acme", "$100.00"}},
	)
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company", "Premium", "Commission Earned"},
	}

	applied := NewApplier(nil).Apply(table, learned, 0.9)

	assert.Equal(t, learned.Headers, applied.Headers)
	require.Len(t, applied.Rows[0], 4)
}

func TestApplier_LowScoreKeepsExtractedColumnCount(t *testing.T) {
	table := model.NewTable(
		[]string{"Group No", "Company", "Commission Earned"},
		[][]string{{"L100001", "Acme", "$100.00"}},
	)
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company", "Premium", "Commission Earned"},
	}

	applied := NewApplier(nil).Apply(table, learned, 0.6)

	// Learned headers truncated to the extracted width.
	assert.Equal(t, []string{"Group No", "Company", "Premium"}, applied.Headers)
	require.Len(t, applied.Rows[0], 3)
}

func TestApplier_ShortLearnedHeadersPadded(t *testing.T) {
	table := model.NewTable(
		[]string{"col_1", "col_2", "Notes"},
		[][]string{{"L100001", "Acme", "called client"}},
	)
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company"},
	}

	applied := NewApplier(nil).Apply(table, learned, 0.6)

	assert.Equal(t, []string{"Group No", "Company", "Notes"}, applied.Headers)
}

func TestApplier_RemovesDeletedRowsAndRemaps(t *testing.T) {
	table := model.NewTable(
		[]string{"Group No", "Company", "Commission Earned"},
		[][]string{
			{"L100001", "Acme", "$100.00"},
			{"junk row", "", ""},
			{"L100002", "Beta", "$50.00"},
			{"", "", "Total for Group: $150.00"},
		},
	)
	table.MarkSummaryRow(3)

	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company", "Commission Earned"},
		EditorSettings: model.TableEditorSettings{
			DeletedRows: []int{1},
		},
	}

	applied := NewApplier(nil).Apply(table, learned, 1.0)

	require.Len(t, applied.Rows, 3)
	assert.True(t, applied.IsSummaryRow(2), "summary index must follow the row after deletion")
	assert.False(t, applied.IsSummaryRow(3))
}

func TestApplier_RestoresConfirmedSummaryRows(t *testing.T) {
	table := model.NewTable(
		[]string{"Group No", "Company", "Commission Earned"},
		[][]string{
			{"L100001", "Acme", "$100.00"},
			{"L100002", "Beta", "$50.00"},
			{"", "", "Total for Group: $150.00"},
		},
	)
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company", "Commission Earned"},
		EditorSettings: model.TableEditorSettings{
			SummaryRows: []int{0},
		},
	}

	applied := NewApplier(classify.New()).Apply(table, learned, 1.0)

	// The human-confirmed row and the independently classified total row
	// are both marked.
	assert.True(t, applied.IsSummaryRow(0))
	assert.True(t, applied.IsSummaryRow(2))
}

func TestApplier_IncompatibleFormatIsNoOp(t *testing.T) {
	table := model.NewTable(
		[]string{"Group No", "Company"},
		[][]string{{"L100001", "Acme"}},
	)

	applier := NewApplier(nil)
	assert.Same(t, table, applier.Apply(table, nil, 1.0))
	assert.Same(t, table, applier.Apply(table, &model.LearnedFormat{}, 1.0))
}

func TestApplier_MarksFinancialTablesAsCommission(t *testing.T) {
	table := model.NewTable(
		[]string{"col_1", "col_2"},
		[][]string{{"L100001", "$100.00"}},
	)
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Commission Earned"},
	}

	applied := NewApplier(nil).Apply(table, learned, 1.0)
	assert.Equal(t, model.TableTypeCommission, applied.Type)
}

func TestApplier_ApplyToTables(t *testing.T) {
	tables := []*model.Table{
		model.NewTable([]string{"Group No", "Company"}, [][]string{{"L100001", "Acme"}}),
		model.NewTable([]string{"Disclaimer"}, [][]string{{"legal boilerplate"}}),
		model.NewTable([]string{"Group No", "Company"}, [][]string{{"L100002", "Beta"}}),
	}
	learned := &model.LearnedFormat{
		Headers: []string{"Group No", "Company"},
		EditorSettings: model.TableEditorSettings{
			DeletedTables: []int{1},
		},
	}

	applied := NewApplier(nil).ApplyToTables(tables, learned, 1.0)

	require.Len(t, applied, 2)
	assert.Equal(t, "L100001", applied[0].Rows[0][0])
	assert.Equal(t, "L100002", applied[1].Rows[0][0])
	assert.Len(t, tables, 3, "input slice must not be mutated")
}

func TestApplier_ApplyToTablesNilFormat(t *testing.T) {
	tables := []*model.Table{
		model.NewTable([]string{"Group No"}, [][]string{{"L100001"}}),
	}
	applied := NewApplier(nil).ApplyToTables(tables, nil, 0)
	assert.Equal(t, tables, applied)
}
