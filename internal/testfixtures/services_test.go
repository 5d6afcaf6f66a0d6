package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

func TestServiceFactoryNewServices(t *testing.T) {
	factory := NewServiceFactory()
	doc := NewDocument(WithPersons(NewPerson("intern-1", "Ana")))
	services := factory.NewServices(doc)

	entry, err := services.Ledger.AddEntry(context.Background(), application.AddEntryParams{
		Actor:    SuperActor(),
		PersonID: "intern-1",
		Input:    application.EntryInput{Date: domain.NewDate(2024, time.January, 2), Kind: domain.KindCredit, Hours: 2},
	})
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}

	if entry.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", entry.ID)
	}
	if !entry.CreatedAt.Equal(ReferenceTime()) {
		t.Fatalf("expected CreatedAt to use factory clock, got %v", entry.CreatedAt)
	}

	loaded, err := services.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("store Load failed: %v", err)
	}
	if len(loaded.Persons[0].HoursEntries) != 1 {
		t.Fatalf("expected the mutation to be flushed to the store")
	}
}

func TestServiceFactoryOptions(t *testing.T) {
	clock := NewClock(time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC))
	ids := NewIDGenerator("custom")
	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(ids), WithIDGenerator(nil))

	if factory.Clock != clock {
		t.Fatalf("expected clock override to apply")
	}
	if factory.IDGenerator == nil || factory.IDGenerator.Next() != "id-1" {
		t.Fatalf("nil generator must fall back to the default")
	}
}

func TestFixtures(t *testing.T) {
	person := NewPerson("intern-1", "Ana",
		WithExamDates(domain.NewDate(2024, time.June, 20), domain.NewDate(2024, time.June, 20)),
		WithEntries(Credit("e1", 4), Debit("e2", 3, true)),
	)
	if len(person.ExamDates) != 1 {
		t.Fatalf("exam dates must keep set semantics, got %v", person.ExamDates)
	}
	if person.HoursEntries[1].SignedHours != -3 || person.HoursEntries[1].CompensatedBy == nil {
		t.Fatalf("unexpected debit fixture %+v", person.HoursEntries[1])
	}

	doc := NewDocument(WithPersons(person), WithAccounts(AccountFor(InternActor("intern-1"), "hash")), WithBlockWindow(2))
	if problems := doc.Validate(); len(problems) > 0 {
		t.Fatalf("fixture document must be valid, got %v", problems)
	}
}

func TestServicesSurviveReloadFromDurableStores(t *testing.T) {
	stores := map[string]func(testing.TB) persistence.Store{
		"file":   func(tb testing.TB) persistence.Store { return NewFileStore(tb) },
		"sqlite": func(tb testing.TB) persistence.Store { return NewSQLiteStore(tb) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			doc := NewDocument(WithPersons(NewPerson("intern-1", "Ana")))
			if err := store.Save(ctx, doc); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			factory := NewServiceFactory()
			services := factory.NewServicesWithStore(doc, store)
			for _, input := range []application.EntryInput{
				{Date: domain.NewDate(2024, time.June, 3), Kind: domain.KindCredit, Hours: 4},
				{Date: domain.NewDate(2024, time.June, 4), Kind: domain.KindDebit, Hours: 1.5},
			} {
				if _, err := services.Ledger.AddEntry(ctx, application.AddEntryParams{
					Actor:    SuperActor(),
					PersonID: "intern-1",
					Input:    input,
				}); err != nil {
					t.Fatalf("AddEntry() error = %v", err)
				}
			}

			engine, err := application.LoadEngine(ctx, store, nil, nil)
			if err != nil {
				t.Fatalf("LoadEngine() error = %v", err)
			}
			reloaded := application.NewLedgerService(engine, factory.Clock, nil)
			balance, err := reloaded.NetBalance(ctx, SuperActor(), "intern-1")
			if err != nil {
				t.Fatalf("NetBalance() error = %v", err)
			}
			if balance.Bank != 4 || balance.OutstandingDebit != 1.5 || balance.Net != 2.5 {
				t.Fatalf("balance after reload = %+v", balance)
			}
		})
	}
}
