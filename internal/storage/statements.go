package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// SaveCompany upserts a carrier record.
func (s *SQLiteStorage) SaveCompany(ctx context.Context, company *model.Company) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCompany(company); err != nil {
		return err
	}

	query := `
		INSERT INTO companies (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`

	if _, err := s.db.ExecContext(ctx, query, company.ID, company.Name); err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

// GetCompanyByID retrieves a carrier by ID. Returns common.ErrNotFound
// when no record exists.
func (s *SQLiteStorage) GetCompanyByID(ctx context.Context, id string) (*model.Company, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	company := &model.Company{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM companies WHERE id = ?`, id).
		Scan(&company.ID, &company.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: company %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query company: %w", err)
	}
	return company, nil
}

// SaveStatementUpload upserts a statement upload with its totals and
// validation verdict.
func (s *SQLiteStorage) SaveStatementUpload(ctx context.Context, upload *model.StatementUpload) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUpload(upload); err != nil {
		return err
	}

	var matchJSON sql.NullString
	if upload.TotalMatch != nil {
		data, err := json.Marshal(upload.TotalMatch)
		if err != nil {
			return fmt.Errorf("failed to marshal total validation: %w", err)
		}
		matchJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO statement_uploads (
			id, carrier_id, file_name, status, statement_date,
			extracted_total, calculated_total, total_match, automated_approval
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			statement_date = excluded.statement_date,
			extracted_total = excluded.extracted_total,
			calculated_total = excluded.calculated_total,
			total_match = excluded.total_match,
			automated_approval = excluded.automated_approval,
			updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.ExecContext(ctx, query,
		upload.ID, upload.CarrierID, upload.FileName, string(upload.Status),
		upload.StatementDate, upload.ExtractedTotal.String(),
		upload.CalculatedTotal.String(), matchJSON, upload.AutomatedApproval,
	)
	if err != nil {
		return fmt.Errorf("failed to save statement upload: %w", err)
	}

	slog.Info("saved statement upload",
		"upload_id", upload.ID,
		"status", upload.Status,
		"automated_approval", upload.AutomatedApproval)
	return nil
}

// GetStatementUpload retrieves a statement upload by ID.
func (s *SQLiteStorage) GetStatementUpload(ctx context.Context, id string) (*model.StatementUpload, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, carrier_id, file_name, status, statement_date,
			extracted_total, calculated_total, total_match, automated_approval,
			created_at, updated_at
		FROM statement_uploads
		WHERE id = ?`

	upload, err := scanStatementUpload(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: statement upload %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query statement upload: %w", err)
	}
	return upload, nil
}

// ListStatementUploads returns all uploads for a carrier, newest first.
func (s *SQLiteStorage) ListStatementUploads(ctx context.Context, carrierID string) ([]model.StatementUpload, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(carrierID, "carrierID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, carrier_id, file_name, status, statement_date,
			extracted_total, calculated_total, total_match, automated_approval,
			created_at, updated_at
		FROM statement_uploads
		WHERE carrier_id = ?
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, carrierID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement uploads: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var uploads []model.StatementUpload
	for rows.Next() {
		upload, scanErr := scanStatementUpload(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan statement upload: %w", scanErr)
		}
		uploads = append(uploads, *upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement uploads: %w", err)
	}
	return uploads, nil
}

// SaveStatementTables replaces the persisted tables for an upload.
func (s *SQLiteStorage) SaveStatementTables(ctx context.Context, uploadID string, tables []*model.Table) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(uploadID, "uploadID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM statement_tables WHERE upload_id = ?`, uploadID); err != nil {
		return fmt.Errorf("failed to clear statement tables: %w", err)
	}

	query := `
		INSERT INTO statement_tables (
			upload_id, table_index, headers, rows, summary_rows, table_type
		) VALUES (?, ?, ?, ?, ?, ?)`

	for i, table := range tables {
		headersJSON, marshalErr := json.Marshal(table.Headers)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal headers: %w", marshalErr)
		}
		rowsJSON, marshalErr := json.Marshal(table.Rows)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal rows: %w", marshalErr)
		}
		summaryJSON, marshalErr := json.Marshal(table.SummaryRows())
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal summary rows: %w", marshalErr)
		}

		if _, err := tx.ExecContext(ctx, query,
			uploadID, i, string(headersJSON), string(rowsJSON),
			string(summaryJSON), string(table.Type),
		); err != nil {
			return fmt.Errorf("failed to save table %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit statement tables: %w", err)
	}

	slog.Debug("saved statement tables", "upload_id", uploadID, "count", len(tables))
	return nil
}

// GetStatementTables retrieves the persisted tables for an upload in order.
func (s *SQLiteStorage) GetStatementTables(ctx context.Context, uploadID string) ([]*model.Table, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(uploadID, "uploadID"); err != nil {
		return nil, err
	}

	query := `
		SELECT headers, rows, summary_rows, table_type
		FROM statement_tables
		WHERE upload_id = ?
		ORDER BY table_index`

	rows, err := s.db.QueryContext(ctx, query, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement tables: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var tables []*model.Table
	for rows.Next() {
		var headersJSON, rowsJSON string
		var summaryJSON, tableType sql.NullString

		if err := rows.Scan(&headersJSON, &rowsJSON, &summaryJSON, &tableType); err != nil {
			return nil, fmt.Errorf("failed to scan statement table: %w", err)
		}

		var headers []string
		if err := json.Unmarshal([]byte(headersJSON), &headers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
		}
		var tableRows [][]string
		if err := json.Unmarshal([]byte(rowsJSON), &tableRows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
		}

		table := model.NewTable(headers, tableRows)
		if tableType.Valid && tableType.String != "" {
			table.Type = model.TableType(tableType.String)
		}
		if summaryJSON.Valid && summaryJSON.String != "" {
			var indices []int
			if err := json.Unmarshal([]byte(summaryJSON.String), &indices); err != nil {
				return nil, fmt.Errorf("failed to unmarshal summary rows: %w", err)
			}
			for _, idx := range indices {
				table.MarkSummaryRow(idx)
			}
		}
		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement tables: %w", err)
	}
	return tables, nil
}

// scanStatementUpload reads one statement upload row.
func scanStatementUpload(row rowScanner) (*model.StatementUpload, error) {
	upload := &model.StatementUpload{}
	var status string
	var fileName, statementDate, extractedTotal, calculatedTotal, matchJSON sql.NullString

	if err := row.Scan(
		&upload.ID, &upload.CarrierID, &fileName, &status, &statementDate,
		&extractedTotal, &calculatedTotal, &matchJSON, &upload.AutomatedApproval,
		&upload.CreatedAt, &upload.UpdatedAt,
	); err != nil {
		return nil, err
	}

	upload.Status = model.StatementStatus(status)
	upload.FileName = fileName.String
	upload.StatementDate = statementDate.String

	var err error
	if upload.ExtractedTotal, err = parseStoredDecimal(extractedTotal); err != nil {
		return nil, fmt.Errorf("failed to parse extracted total: %w", err)
	}
	if upload.CalculatedTotal, err = parseStoredDecimal(calculatedTotal); err != nil {
		return nil, fmt.Errorf("failed to parse calculated total: %w", err)
	}

	if matchJSON.Valid && matchJSON.String != "" {
		var validation model.TotalValidation
		if err := json.Unmarshal([]byte(matchJSON.String), &validation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal total validation: %w", err)
		}
		upload.TotalMatch = &validation
	}
	return upload, nil
}

// parseStoredDecimal converts a stored decimal string, treating NULL and
// empty as zero.
func parseStoredDecimal(value sql.NullString) (decimal.Decimal, error) {
	if !value.Valid || value.String == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value.String)
}
