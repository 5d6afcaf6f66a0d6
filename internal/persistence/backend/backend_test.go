package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/intern-ledger/internal/config"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
	"github.com/example/intern-ledger/internal/persistence/file"
	"github.com/example/intern-ledger/internal/persistence/memory"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		handle, err := Open(ctx, config.Config{Storage: config.StorageMemory}, nil)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer handle.Close()
		if _, ok := handle.Store.(*memory.Store); !ok {
			t.Fatalf("store = %T, want *memory.Store", handle.Store)
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "data", "ledger.json")
		handle, err := Open(ctx, config.Config{Storage: config.StorageFile, DataFile: path}, nil)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer handle.Close()
		store, ok := handle.Store.(*file.Store)
		if !ok || store.Path() != path {
			t.Fatalf("store = %#v", handle.Store)
		}
		if _, err := store.Load(ctx); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db")
		handle, err := Open(ctx, config.Config{Storage: config.StorageSQLite, SQLiteDSN: dsn}, nil)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer handle.Close()

		doc := domain.Document{Version: domain.DocumentVersion, Policy: domain.GlobalPolicy{BlockWindowDays: 3}}
		if err := handle.Store.Save(ctx, doc); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		loaded, err := handle.Store.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.Policy.BlockWindowDays != 3 {
			t.Fatalf("loaded policy = %+v", loaded.Policy)
		}
	})

	t.Run("unknown storage", func(t *testing.T) {
		t.Parallel()
		if _, err := Open(ctx, config.Config{Storage: "redis"}, nil); err == nil {
			t.Fatal("expected error for unknown storage")
		}
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Parallel()
		if _, err := Open(ctx, config.Config{Storage: config.StoragePostgres}, nil); err == nil {
			t.Fatal("expected error for missing dsn")
		}
	})
}
