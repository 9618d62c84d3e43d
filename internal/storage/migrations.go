package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS companies (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS learned_formats (
					carrier_id TEXT NOT NULL,
					signature TEXT NOT NULL,
					headers TEXT NOT NULL,
					field_mapping TEXT,
					editor_settings TEXT,
					confidence_score INTEGER NOT NULL DEFAULT 90,
					usage_count INTEGER NOT NULL DEFAULT 0,
					last_used DATETIME DEFAULT CURRENT_TIMESTAMP,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (carrier_id, signature),
					FOREIGN KEY (carrier_id) REFERENCES companies(id)
				)`,
				`CREATE INDEX idx_learned_formats_carrier ON learned_formats(carrier_id)`,

				`CREATE TABLE IF NOT EXISTS statement_uploads (
					id TEXT PRIMARY KEY,
					carrier_id TEXT NOT NULL,
					file_name TEXT,
					status TEXT NOT NULL,
					statement_date TEXT,
					extracted_total TEXT,
					calculated_total TEXT,
					total_match TEXT,
					automated_approval BOOLEAN DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (carrier_id) REFERENCES companies(id)
				)`,
				`CREATE INDEX idx_statement_uploads_carrier ON statement_uploads(carrier_id)`,

				`CREATE TABLE IF NOT EXISTS statement_tables (
					upload_id TEXT NOT NULL,
					table_index INTEGER NOT NULL,
					headers TEXT NOT NULL,
					rows TEXT NOT NULL,
					summary_rows TEXT,
					table_type TEXT,
					PRIMARY KEY (upload_id, table_index),
					FOREIGN KEY (upload_id) REFERENCES statement_uploads(id)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Track auto-approvals per learned format",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				ALTER TABLE learned_formats
				ADD COLUMN auto_approved_count INTEGER NOT NULL DEFAULT 0
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Index statement uploads by status for review queues",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_statement_uploads_status
				ON statement_uploads(carrier_id, status)
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
