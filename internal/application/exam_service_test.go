package application_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence/memory"
	"github.com/example/intern-ledger/internal/testfixtures"
)

func TestExamService_AddExamDate_SelfService(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		window  int
		date    domain.Date
		blocked bool
	}{
		{"inside window", 2, june10.AddDays(2), true},
		{"today", 2, june10, true},
		{"past", 2, june10.AddDays(-5), true},
		{"first allowed day", 2, june10.AddDays(3), false},
		{"zero window tomorrow", 0, june10.AddDays(1), false},
		{"zero window today", 0, june10, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			services, _ := newTestServices(t, testfixtures.WithBlockWindow(tc.window))
			store := services.Store.(*memory.Store)
			savesBefore := store.Saves()

			dates, err := services.Exams.AddExamDate(context.Background(), application.ExamDateParams{
				Actor:    testfixtures.InternActor("intern-1"),
				PersonID: "intern-1",
				Date:     tc.date,
			})

			if tc.blocked {
				var blocked *application.BlockedWindowError
				if !errors.As(err, &blocked) {
					t.Fatalf("expected BlockedWindowError, got %v", err)
				}
				if blocked.EarliestAllowed != june10.AddDays(tc.window+1) {
					t.Fatalf("earliest allowed = %s", blocked.EarliestAllowed)
				}
				if store.Saves() != savesBefore {
					t.Fatalf("rejected add must not flush")
				}
				return
			}

			if err != nil {
				t.Fatalf("AddExamDate failed: %v", err)
			}
			if !slices.Equal(dates, []domain.Date{tc.date}) {
				t.Fatalf("dates = %v", dates)
			}
			events, _ := services.Ledger.ListAudit(context.Background(), testfixtures.SuperActor(), "intern-1")
			if len(events) != 0 {
				t.Fatalf("self-service adds are not audited, got %v", events)
			}
		})
	}
}

func TestExamService_AddExamDate_SelfServiceIsIdempotent(t *testing.T) {
	t.Parallel()

	services, _ := newTestServices(t, testfixtures.WithBlockWindow(2))
	store := services.Store.(*memory.Store)
	params := application.ExamDateParams{
		Actor:    testfixtures.InternActor("intern-1"),
		PersonID: "intern-1",
		Date:     june10.AddDays(20),
	}

	if _, err := services.Exams.AddExamDate(context.Background(), params); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	saves := store.Saves()
	dates, err := services.Exams.AddExamDate(context.Background(), params)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("expected set semantics, got %v", dates)
	}
	if store.Saves() != saves {
		t.Fatalf("a no-op add must not flush")
	}
}

func TestExamService_AddExamDate_Manager(t *testing.T) {
	t.Parallel()

	services, clock := newTestServices(t, testfixtures.WithBlockWindow(30))
	manager := testfixtures.AdminActor(domain.CapResetPassword)
	params := application.ExamDateParams{Actor: manager, PersonID: "intern-1", Date: june10}

	if _, err := services.Exams.AddExamDate(context.Background(), params); err != nil {
		t.Fatalf("manager add inside window failed: %v", err)
	}
	clock.Advance(1)
	dates, err := services.Exams.AddExamDate(context.Background(), params)
	if err != nil {
		t.Fatalf("repeat manager add failed: %v", err)
	}
	if !slices.Equal(dates, []domain.Date{june10}) {
		t.Fatalf("dates = %v", dates)
	}

	events, _ := services.Ledger.ListAudit(context.Background(), manager, "intern-1")
	if len(events) != 2 {
		t.Fatalf("every manager add is audited, got %d events", len(events))
	}
	for _, ev := range events {
		if ev.Action != domain.ActionCreateProva || ev.Details != "Criou prova 2024-06-10" || ev.ActorDisplayName != "gestor" {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestExamService_Authorization(t *testing.T) {
	t.Parallel()

	services, _ := newTestServices(t)
	cases := []struct {
		name  string
		actor domain.Actor
	}{
		{"other intern", testfixtures.InternActor("intern-2")},
		{"admin without capabilities", testfixtures.AdminActor()},
	}
	for _, tc := range cases {
		params := application.ExamDateParams{Actor: tc.actor, PersonID: "intern-1", Date: june10.AddDays(40)}
		if _, err := services.Exams.AddExamDate(context.Background(), params); !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("%s add: expected ErrUnauthorized, got %v", tc.name, err)
		}
		if _, err := services.Exams.RemoveExamDate(context.Background(), params); !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("%s remove: expected ErrUnauthorized, got %v", tc.name, err)
		}
	}

	_, err := services.Exams.AddExamDate(context.Background(), application.ExamDateParams{
		Actor: testfixtures.SuperActor(), PersonID: "intern-1",
	})
	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("missing date: expected ValidationError, got %v", err)
	}
}

func TestExamService_RemoveExamDate(t *testing.T) {
	t.Parallel()

	soon := june10.AddDays(1)
	later := june10.AddDays(10)

	t.Run("owner removes inside the window", func(t *testing.T) {
		t.Parallel()

		services, _ := newTestServices(t,
			testfixtures.WithBlockWindow(5),
			testfixtures.WithPersons(testfixtures.NewPerson("intern-3", "Carla", testfixtures.WithExamDates(soon, later))),
		)
		dates, err := services.Exams.RemoveExamDate(context.Background(), application.ExamDateParams{
			Actor: testfixtures.InternActor("intern-3"), PersonID: "intern-3", Date: soon,
		})
		if err != nil {
			t.Fatalf("RemoveExamDate failed: %v", err)
		}
		if !slices.Equal(dates, []domain.Date{later}) {
			t.Fatalf("dates = %v", dates)
		}
		events, _ := services.Ledger.ListAudit(context.Background(), testfixtures.SuperActor(), "intern-3")
		if len(events) != 0 {
			t.Fatalf("self-service removal is not audited")
		}
	})

	t.Run("manager removal is audited", func(t *testing.T) {
		t.Parallel()

		services, _ := newTestServices(t,
			testfixtures.WithPersons(testfixtures.NewPerson("intern-3", "Carla", testfixtures.WithExamDates(later))),
		)
		if _, err := services.Exams.RemoveExamDate(context.Background(), application.ExamDateParams{
			Actor: testfixtures.SuperActor(), PersonID: "intern-3", Date: later,
		}); err != nil {
			t.Fatalf("RemoveExamDate failed: %v", err)
		}
		events, _ := services.Ledger.ListAudit(context.Background(), testfixtures.SuperActor(), "intern-3")
		if len(events) != 1 || events[0].Action != domain.ActionRemoveProva || events[0].Details != "Removeu prova 2024-06-20" {
			t.Fatalf("unexpected audit %+v", events)
		}
	})

	t.Run("absent date is a no-op", func(t *testing.T) {
		t.Parallel()

		services, _ := newTestServices(t)
		store := services.Store.(*memory.Store)
		saves := store.Saves()
		dates, err := services.Exams.RemoveExamDate(context.Background(), application.ExamDateParams{
			Actor: testfixtures.SuperActor(), PersonID: "intern-1", Date: later,
		})
		if err != nil || len(dates) != 0 {
			t.Fatalf("expected empty no-op, got %v %v", dates, err)
		}
		if store.Saves() != saves {
			t.Fatalf("no-op removal must not flush")
		}
		events, _ := services.Ledger.ListAudit(context.Background(), testfixtures.SuperActor(), "intern-1")
		if len(events) != 0 {
			t.Fatalf("no-op removal must not audit")
		}
	})
}

func TestExamService_EarliestSelfServiceDate(t *testing.T) {
	t.Parallel()

	services, clock := newTestServices(t, testfixtures.WithBlockWindow(2))
	if got := services.Exams.EarliestSelfServiceDate(); got != june10.AddDays(3) {
		t.Fatalf("earliest = %s", got)
	}
	clock.SetDate(june10.AddDays(1))
	if got := services.Exams.EarliestSelfServiceDate(); got != june10.AddDays(4) {
		t.Fatalf("earliest after a day = %s", got)
	}
}
