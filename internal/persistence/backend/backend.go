// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/intern-ledger/internal/config"
	"github.com/example/intern-ledger/internal/persistence"
	"github.com/example/intern-ledger/internal/persistence/file"
	"github.com/example/intern-ledger/internal/persistence/memory"
	"github.com/example/intern-ledger/internal/persistence/postgres"
	"github.com/example/intern-ledger/internal/persistence/sqlite"
)

// Handle is an opened store together with the function releasing it.
type Handle struct {
	Store persistence.Store
	Close func() error
}

// Open resolves cfg.Storage to a store. SQL backends create their schema
// while opening.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	switch cfg.Storage {
	case config.StorageMemory:
		logger.WarnContext(ctx, "using in-memory storage, data is lost on exit")
		return Handle{Store: memory.New(), Close: noop}, nil
	case config.StorageFile, "":
		store, err := file.New(cfg.DataFile)
		if err != nil {
			return Handle{}, err
		}
		logger.InfoContext(ctx, "using file storage", "path", store.Path())
		return Handle{Store: store, Close: noop}, nil
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN))
		if err != nil {
			return Handle{}, err
		}
		logger.InfoContext(ctx, "using sqlite storage")
		return Handle{Store: store, Close: store.Close}, nil
	case config.StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return Handle{}, err
		}
		logger.InfoContext(ctx, "using postgres storage")
		return Handle{Store: store, Close: store.Close}, nil
	default:
		return Handle{}, fmt.Errorf("backend: unknown storage %q", cfg.Storage)
	}
}
