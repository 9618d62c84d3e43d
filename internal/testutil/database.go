// Package testutil provides test helpers for packages that need a real
// storage backend.
package testutil

import (
	"context"
	"testing"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/storage"
)

// SetupTestDB creates an in-memory SQLite database with migrations
// applied. Cleanup is registered automatically.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedCarrier registers a carrier for tests that process statements.
func SeedCarrier(t *testing.T, store *storage.SQLiteStorage, id, name string) {
	t.Helper()

	company := &model.Company{ID: id, Name: name}
	if err := store.SaveCompany(context.Background(), company); err != nil {
		t.Fatalf("failed to seed carrier %s: %v", id, err)
	}
}
