package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/intern-ledger/internal/persistence/file"
	"github.com/example/intern-ledger/internal/persistence/sqlite"
)

// NewSQLiteStore opens a migrated SQLite store in a temporary directory. The
// store is closed when the test finishes.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "ledger.db")
	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewFileStore returns a JSON file store in a temporary directory.
func NewFileStore(tb testing.TB) *file.Store {
	tb.Helper()

	store, err := file.New(filepath.Join(tb.TempDir(), "ledger.json"))
	if err != nil {
		tb.Fatalf("failed to create file store: %v", err)
	}
	return store
}
