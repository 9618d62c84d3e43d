package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Clone(t *testing.T) {
	original := NewTable(
		[]string{"Group No", "Company"},
		[][]string{{"L100001", "Acme"}},
	)
	original.MarkSummaryRow(0)

	clone := original.Clone()
	clone.Headers[0] = "changed"
	clone.Rows[0][0] = "changed"
	clone.SummaryRowIndices[0] = false

	assert.Equal(t, "Group No", original.Headers[0])
	assert.Equal(t, "L100001", original.Rows[0][0])
	assert.True(t, original.IsSummaryRow(0))
}

func TestTable_MarkSummaryRow(t *testing.T) {
	table := NewTable([]string{"A"}, [][]string{{"1"}, {"2"}})

	table.MarkSummaryRow(1)
	table.MarkSummaryRow(-1)
	table.MarkSummaryRow(5)

	assert.Equal(t, []int{1}, table.SummaryRows())
	assert.False(t, table.IsSummaryRow(0))
}

func TestTable_MarkSummaryRowNilMap(t *testing.T) {
	table := &Table{Rows: [][]string{{"1"}}}
	table.MarkSummaryRow(0)
	assert.True(t, table.IsSummaryRow(0))
}

func TestTable_SummaryRowsSorted(t *testing.T) {
	table := NewTable([]string{"A"}, [][]string{{"1"}, {"2"}, {"3"}, {"4"}})
	table.MarkSummaryRow(3)
	table.MarkSummaryRow(0)
	table.MarkSummaryRow(2)

	assert.Equal(t, []int{0, 2, 3}, table.SummaryRows())
}

func TestTable_Normalize(t *testing.T) {
	table := NewTable(
		[]string{"A", "B", "C"},
		[][]string{
			{"1"},
			{"1", "2", "3"},
			{"1", "2", "3", "4"},
		},
	)

	table.Normalize()

	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1])
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[2])
}
