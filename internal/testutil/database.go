// Package testutil provides test utilities for the caixa project: migrated
// throwaway databases and seeded categories.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/caixa/internal/service"
	"github.com/Veraticus/caixa/internal/storage"
	"github.com/Veraticus/caixa/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories categories.Categories
}

// SetupTestDB creates a migrated SQLite database in a temporary directory.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithBuilder(t, nil)
}

// SetupTestDBWithBuilder creates a test database seeded through a category builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithCategory(categories.CategoryPix)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "caixa.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	var cats categories.Categories
	if configure != nil {
		cats, err = configure(categories.NewBuilder(t)).Build(ctx, store)
		if err != nil {
			t.Fatalf("failed to build categories: %v", err)
		}
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// MustGetCategory returns the ID of the seeded category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name categories.CategoryName) int64 {
	db.t.Helper()
	return db.Categories.MustFind(db.t, name).ID
}

// WithTransaction executes the given function within a database transaction.
// The transaction is always rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
