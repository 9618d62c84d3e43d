package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

func commissionTable(t *testing.T, rows [][]string, summaryIndices ...int) *model.Table {
	t.Helper()
	table := model.NewTable([]string{"Group No", "Company", "Commission Earned"}, rows)
	for _, idx := range summaryIndices {
		table.MarkSummaryRow(idx)
	}
	return table
}

func amount(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func TestReconciler_MatchingTotals(t *testing.T) {
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$100.00"},
		{"L100002", "Beta", "$50.00"},
		{"", "", "Total for Group: $150.00"},
	}, 2)

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "150.00"))

	assert.True(t, validation.Populated)
	assert.True(t, validation.Matches)
	assert.False(t, validation.NeedsReview)
	assert.True(t, validation.CalculatedTotal.Equal(decimal.NewFromInt(150)))
	assert.Zero(t, validation.SkippedCells)
}

func TestReconciler_WithinTolerance(t *testing.T) {
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$500.005"},
	})

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "500.00"))

	assert.True(t, validation.Matches, "a difference under 0.01 must match")
	assert.False(t, validation.NeedsReview)
}

func TestReconciler_OutsideTolerance(t *testing.T) {
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$100.02"},
	})

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "100.00"))

	assert.False(t, validation.Matches)
	assert.True(t, validation.NeedsReview)
	assert.True(t, validation.Difference.Equal(decimal.NewFromFloat(0.02)))
	assert.InDelta(t, 0.02, validation.DifferencePercent, 0.001)
	assert.NotEmpty(t, validation.Note)
}

func TestReconciler_ExtractedOnlyTrusted(t *testing.T) {
	// No commission column resolves, so no calculated total exists. The
	// extracted document total stands on its own.
	table := model.NewTable(
		[]string{"Name", "Address"},
		[][]string{{"Acme", "1 Main St"}},
	)

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "150.00"))

	assert.True(t, validation.Populated)
	assert.True(t, validation.Matches)
	assert.False(t, validation.NeedsReview)
	assert.NotEmpty(t, validation.Note)
}

func TestReconciler_CalculatedOnlyNeedsReview(t *testing.T) {
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$100.00"},
	})

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, nil)

	assert.True(t, validation.Populated)
	assert.False(t, validation.Matches, "a calculated total cannot self-confirm")
	assert.True(t, validation.NeedsReview)
}

func TestReconciler_NeitherTotal(t *testing.T) {
	table := model.NewTable(
		[]string{"Name", "Address"},
		[][]string{{"Acme", "1 Main St"}},
	)

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, nil)

	assert.False(t, validation.Populated)
	assert.False(t, validation.Matches)
	assert.True(t, validation.NeedsReview)
}

func TestReconciler_SummaryRowsExcluded(t *testing.T) {
	// The group total row must not be double-counted into the sum.
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$100.00"},
		{"L100002", "Beta", "$50.00"},
		{"", "", "$150.00"},
	}, 2)

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "150.00"))

	assert.True(t, validation.CalculatedTotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, validation.Matches)
}

func TestReconciler_NegativeAdjustments(t *testing.T) {
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$200.00"},
		{"L100002", "Beta", "($50.00)"},
	})

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "150.00"))

	assert.True(t, validation.CalculatedTotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, validation.Matches)
}

func TestReconciler_UnparseableCellsCounted(t *testing.T) {
	table := commissionTable(t, [][]string{
		{"L100001", "Acme", "$100.00"},
		{"L100002", "Beta", "pending"},
		{"L100003", "Gamma", "$50.00"},
	})

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "150.00"))

	assert.Equal(t, 1, validation.SkippedCells)
	assert.True(t, validation.CalculatedTotal.Equal(decimal.NewFromInt(150)))
}

func TestReconciler_FieldMappingResolution(t *testing.T) {
	tests := []struct {
		name         string
		headers      []string
		fieldMapping map[string]string
		wantTotal    string
	}{
		{
			name:      "primary field from header",
			headers:   []string{"Group No", "Commission Earned", "Commission Rate"},
			wantTotal: "100",
		},
		{
			name:    "primary field via mapping",
			headers: []string{"Group No", "col_b", "col_c"},
			fieldMapping: map[string]string{
				"col_b": "Commission Earned",
				"col_c": "Commission Rate",
			},
			wantTotal: "100",
		},
		{
			name:      "alternate field when no primary",
			headers:   []string{"Group No", "Paid Amount", "Rate"},
			wantTotal: "100",
		},
		{
			name:      "excluded rate column never summed",
			headers:   []string{"Group No", "Commission Rate", "Paid Amount"},
			wantTotal: "55",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := model.NewTable(tt.headers, [][]string{
				{"L100001", "$100.00", "$55.00"},
			})

			validation := NewReconciler().Reconcile([]*model.Table{table}, tt.fieldMapping, amount(t, tt.wantTotal))

			want, err := decimal.NewFromString(tt.wantTotal)
			require.NoError(t, err)
			assert.True(t, validation.CalculatedTotal.Equal(want),
				"got %s, want %s", validation.CalculatedTotal, want)
		})
	}
}

func TestReconciler_PrimaryBeatsAlternate(t *testing.T) {
	table := model.NewTable(
		[]string{"Paid Amount", "Commission Earned"},
		[][]string{{"$999.00", "$100.00"}},
	)

	validation := NewReconciler().Reconcile([]*model.Table{table}, nil, amount(t, "100.00"))
	assert.True(t, validation.CalculatedTotal.Equal(decimal.NewFromInt(100)))
}

func TestReconciler_MultipleTables(t *testing.T) {
	first := commissionTable(t, [][]string{
		{"L100001", "Acme", "$100.00"},
	})
	second := commissionTable(t, [][]string{
		{"L100002", "Beta", "$50.00"},
	})

	validation := NewReconciler().Reconcile([]*model.Table{first, second}, nil, amount(t, "150.00"))
	assert.True(t, validation.CalculatedTotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, validation.Matches)
}
