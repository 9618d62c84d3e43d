// Package ingest reads commission statement spreadsheets into tables,
// implementing the DocumentExtractor contract for Excel workbooks.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/reconcile"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/service"
)

// totalLabels mark preamble cells that carry the document total.
var totalLabels = []string{
	"total amount", "total commission", "statement total", "grand total", "total due",
}

// dateLabels mark preamble cells that carry the statement date.
var dateLabels = []string{
	"statement date", "date", "period ending", "statement period",
}

// ExcelExtractor extracts tables and document metadata from an Excel
// workbook. One sheet produces at most one table.
type ExcelExtractor struct{}

// NewExcelExtractor creates an Excel document extractor.
func NewExcelExtractor() *ExcelExtractor {
	return &ExcelExtractor{}
}

// Extract implements service.DocumentExtractor.
func (x *ExcelExtractor) Extract(ctx context.Context, path string) (*service.Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close workbook", "error", err)
		}
	}()

	extraction := &service.Extraction{}

	for _, sheet := range f.GetSheetList() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		table := x.sheetToTable(rows, &extraction.Metadata)
		if table == nil {
			slog.Debug("skipping sheet without tabular data", "sheet", sheet)
			continue
		}
		extraction.Tables = append(extraction.Tables, table)
	}

	if len(extraction.Tables) == 0 {
		return nil, common.ErrNoTables
	}

	slog.Info("extracted workbook",
		"file", path,
		"tables", len(extraction.Tables),
		"has_document_total", extraction.Metadata.TotalAmount != nil)
	return extraction, nil
}

// sheetToTable converts raw sheet rows into a table, harvesting document
// metadata from any preamble rows above the header.
func (x *ExcelExtractor) sheetToTable(rows [][]string, metadata *service.DocumentMetadata) *model.Table {
	headerIdx := -1
	for i, row := range rows {
		if countNonEmpty(row) >= 2 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx == len(rows)-1 {
		return nil
	}

	x.harvestMetadata(rows[:headerIdx], metadata)

	table := model.NewTable(rows[headerIdx], rows[headerIdx+1:])
	table.Normalize()
	return table
}

// harvestMetadata scans preamble rows for carrier name, statement date,
// and a labeled document total. First findings win; later sheets do not
// overwrite them.
func (x *ExcelExtractor) harvestMetadata(preamble [][]string, metadata *service.DocumentMetadata) {
	for _, row := range preamble {
		for i, cell := range row {
			trimmed := strings.TrimSpace(cell)
			if trimmed == "" {
				continue
			}
			lower := strings.ToLower(trimmed)

			if metadata.CarrierName == "" && !matchesAnyLabel(lower, totalLabels) && !matchesAnyLabel(lower, dateLabels) {
				metadata.CarrierName = trimmed
				continue
			}

			if metadata.StatementDate == "" && matchesAnyLabel(lower, dateLabels) {
				if value := nextNonEmpty(row, i); value != "" {
					metadata.StatementDate = value
				}
				continue
			}

			if metadata.TotalAmount == nil && matchesAnyLabel(lower, totalLabels) {
				if value := nextNonEmpty(row, i); value != "" {
					if amount, err := reconcile.ParseAmount(value); err == nil {
						metadata.TotalAmount = &amount
						metadata.TotalAmountConfidence = 0.9
					}
				}
			}
		}
	}
}

// matchesAnyLabel reports whether the cell starts with any known label.
func matchesAnyLabel(cell string, labels []string) bool {
	for _, label := range labels {
		if strings.HasPrefix(cell, label) {
			return true
		}
	}
	return false
}

// nextNonEmpty returns the first non-empty cell after position i, or the
// suffix of the labeled cell itself when the value shares the cell
// (e.g. "Total Amount: $1,234.56").
func nextNonEmpty(row []string, i int) string {
	if idx := strings.IndexByte(row[i], ':'); idx >= 0 {
		if value := strings.TrimSpace(row[i][idx+1:]); value != "" {
			return value
		}
	}
	for j := i + 1; j < len(row); j++ {
		if value := strings.TrimSpace(row[j]); value != "" {
			return value
		}
	}
	return ""
}

// countNonEmpty counts cells with content.
func countNonEmpty(row []string) int {
	count := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	return count
}
