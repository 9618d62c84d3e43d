package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/service"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "statement.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelExtractor_Extract(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Commissions": {
			{"Acme Insurance"},
			{"Statement Date: 2024-03-31"},
			{"Total Amount: $150.00"},
			{"Group No", "Company", "Commission Earned"},
			{"L100001", "Acme", "$100.00"},
			{"L100002", "Beta", "$50.00"},
		},
	})

	extraction, err := NewExcelExtractor().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, extraction.Tables, 1)

	table := extraction.Tables[0]
	assert.Equal(t, []string{"Group No", "Company", "Commission Earned"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"L100001", "Acme", "$100.00"}, table.Rows[0])

	assert.Equal(t, "Acme Insurance", extraction.Metadata.CarrierName)
	assert.Equal(t, "2024-03-31", extraction.Metadata.StatementDate)
	require.NotNil(t, extraction.Metadata.TotalAmount)
	assert.True(t, extraction.Metadata.TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.InDelta(t, 0.9, extraction.Metadata.TotalAmountConfidence, 0.001)
}

func TestExcelExtractor_NoTabularData(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Notes": {
			{"This workbook is intentionally left blank."},
		},
	})

	_, err := NewExcelExtractor().Extract(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrNoTables)
}

func TestExcelExtractor_MissingFile(t *testing.T) {
	_, err := NewExcelExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestExcelExtractor_CancelledContext(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Commissions": {
			{"Group No", "Company"},
			{"L100001", "Acme"},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExcelExtractor().Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSheetToTable_RaggedRowsNormalized(t *testing.T) {
	var metadata service.DocumentMetadata
	table := (&ExcelExtractor{}).sheetToTable([][]string{
		{"Group No", "Company", "Commission Earned"},
		{"L100001", "Acme"},
		{"L100002", "Beta", "$50.00", "spillover"},
	}, &metadata)

	require.NotNil(t, table)
	for i, row := range table.Rows {
		assert.Len(t, row, 3, "row %d", i)
	}
}

func TestSheetToTable_HeaderOnlySheetSkipped(t *testing.T) {
	var metadata service.DocumentMetadata
	table := (&ExcelExtractor{}).sheetToTable([][]string{
		{"Group No", "Company", "Commission Earned"},
	}, &metadata)
	assert.Nil(t, table)
}
