package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New()

	if _, err := store.Load(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	doc := domain.Document{Persons: []domain.Person{{ID: "intern-1", Name: "Ana"}}}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	doc.Persons[0].Name = "changed after save"

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Persons[0].Name != "Ana" {
		t.Fatalf("store must keep its own copy, got %q", loaded.Persons[0].Name)
	}

	loaded.Persons[0].Name = "changed after load"
	again, _ := store.Load(ctx)
	if again.Persons[0].Name != "Ana" {
		t.Fatalf("Load must return a copy, got %q", again.Persons[0].Name)
	}
	if store.Saves() != 1 {
		t.Fatalf("expected one save, got %d", store.Saves())
	}
}

func TestStoreSaveHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := New().Save(ctx, domain.Document{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
