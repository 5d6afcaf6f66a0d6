package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/example/intern-ledger/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = store.db.ExecContext(context.Background(), `DELETE FROM ledger_documents WHERE id = $1`, documentRowID)
		_ = store.Close()
	})

	doc := domain.Document{
		Version: domain.DocumentVersion,
		Policy:  domain.GlobalPolicy{BlockWindowDays: 2},
		Persons: []domain.Person{{ID: "intern-1", Name: "Ana"}},
	}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Policy.BlockWindowDays != 2 || len(loaded.Persons) != 1 || loaded.Persons[0].Name != "Ana" {
		t.Fatalf("unexpected document %+v", loaded)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
