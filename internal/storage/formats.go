package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// SaveLearnedFormat upserts a learned format. Concurrent saves for the
// same (carrier, signature) are safe: the merge happens inside a single
// ON CONFLICT statement, so usage counts never lose increments and a
// non-empty field mapping is never replaced by an empty one.
func (s *SQLiteStorage) SaveLearnedFormat(ctx context.Context, format *model.LearnedFormat) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLearnedFormat(format); err != nil {
		return err
	}

	headersJSON, err := json.Marshal(format.Headers)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}
	mappingJSON, err := json.Marshal(format.FieldMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal field mapping: %w", err)
	}
	settingsJSON, err := json.Marshal(format.EditorSettings)
	if err != nil {
		return fmt.Errorf("failed to marshal editor settings: %w", err)
	}

	query := `
		INSERT INTO learned_formats (
			carrier_id, signature, headers, field_mapping, editor_settings,
			confidence_score, usage_count, auto_approved_count, last_used
		) VALUES (?, ?, ?, ?, ?, ?, 1, 0, CURRENT_TIMESTAMP)
		ON CONFLICT(carrier_id, signature) DO UPDATE SET
			headers = excluded.headers,
			field_mapping = CASE
				WHEN excluded.field_mapping IS NULL
					OR excluded.field_mapping IN ('', 'null', '{}')
				THEN learned_formats.field_mapping
				ELSE excluded.field_mapping
			END,
			editor_settings = excluded.editor_settings,
			confidence_score = MAX(learned_formats.confidence_score, excluded.confidence_score),
			usage_count = learned_formats.usage_count + 1,
			last_used = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP`

	_, err = s.db.ExecContext(ctx, query,
		format.CarrierID, format.Signature, string(headersJSON),
		string(mappingJSON), string(settingsJSON), format.ConfidenceScore,
	)
	if err != nil {
		return fmt.Errorf("failed to save learned format: %w", err)
	}

	slog.Info("saved learned format",
		"carrier_id", format.CarrierID,
		"signature", format.Signature,
		"mapped_fields", len(format.FieldMapping))
	return nil
}

// GetLearnedFormat retrieves the format for an exact (carrier, signature)
// pair. Returns common.ErrNotFound when no record exists.
func (s *SQLiteStorage) GetLearnedFormat(ctx context.Context, carrierID, signature string) (*model.LearnedFormat, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(carrierID, "carrierID"); err != nil {
		return nil, err
	}
	if err := validateString(signature, "signature"); err != nil {
		return nil, err
	}

	query := `
		SELECT carrier_id, signature, headers, field_mapping, editor_settings,
			confidence_score, usage_count, auto_approved_count,
			last_used, created_at, updated_at
		FROM learned_formats
		WHERE carrier_id = ? AND signature = ?`

	format, err := scanLearnedFormat(s.db.QueryRowContext(ctx, query, carrierID, signature))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: learned format for carrier %s", common.ErrNotFound, carrierID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query learned format: %w", err)
	}
	return format, nil
}

// ListLearnedFormats returns all formats for a carrier ordered by usage
// count descending, so fuzzy fallback checks the most-used formats first.
func (s *SQLiteStorage) ListLearnedFormats(ctx context.Context, carrierID string) ([]model.LearnedFormat, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(carrierID, "carrierID"); err != nil {
		return nil, err
	}

	query := `
		SELECT carrier_id, signature, headers, field_mapping, editor_settings,
			confidence_score, usage_count, auto_approved_count,
			last_used, created_at, updated_at
		FROM learned_formats
		WHERE carrier_id = ?
		ORDER BY usage_count DESC, last_used DESC`

	rows, err := s.db.QueryContext(ctx, query, carrierID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned formats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var formats []model.LearnedFormat
	for rows.Next() {
		format, scanErr := scanLearnedFormat(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan learned format: %w", scanErr)
		}
		formats = append(formats, *format)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating learned formats: %w", err)
	}

	slog.Debug("retrieved learned formats", "carrier_id", carrierID, "count", len(formats))
	return formats, nil
}

// RecordFormatUsage atomically bumps the usage counters after a format
// was successfully auto-applied. Confidence is nudged up, capped, and
// never decreased.
func (s *SQLiteStorage) RecordFormatUsage(ctx context.Context, carrierID, signature string, autoApproved bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(carrierID, "carrierID"); err != nil {
		return err
	}
	if err := validateString(signature, "signature"); err != nil {
		return err
	}

	query := `
		UPDATE learned_formats SET
			usage_count = usage_count + 1,
			auto_approved_count = auto_approved_count + CASE WHEN ? THEN 1 ELSE 0 END,
			confidence_score = MIN(confidence_score + 1, ?),
			last_used = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE carrier_id = ? AND signature = ?`

	result, err := s.db.ExecContext(ctx, query, autoApproved, model.MaxFormatConfidence, carrierID, signature)
	if err != nil {
		return fmt.Errorf("failed to record format usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: learned format for carrier %s", common.ErrNotFound, carrierID)
	}

	slog.Debug("recorded format usage",
		"carrier_id", carrierID,
		"signature", signature,
		"auto_approved", autoApproved)
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLearnedFormat reads one learned format row.
func scanLearnedFormat(row rowScanner) (*model.LearnedFormat, error) {
	format := &model.LearnedFormat{}
	var headersJSON string
	var mappingJSON, settingsJSON sql.NullString

	if err := row.Scan(
		&format.CarrierID, &format.Signature, &headersJSON,
		&mappingJSON, &settingsJSON,
		&format.ConfidenceScore, &format.UsageCount, &format.AutoApprovedCount,
		&format.LastUsed, &format.CreatedAt, &format.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(headersJSON), &format.Headers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
	}
	if mappingJSON.Valid && mappingJSON.String != "" {
		if err := json.Unmarshal([]byte(mappingJSON.String), &format.FieldMapping); err != nil {
			return nil, fmt.Errorf("failed to unmarshal field mapping: %w", err)
		}
	}
	if settingsJSON.Valid && settingsJSON.String != "" {
		if err := json.Unmarshal([]byte(settingsJSON.String), &format.EditorSettings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal editor settings: %w", err)
		}
	}
	return format, nil
}
