package ledger

import (
	"testing"
	"time"

	"github.com/example/intern-ledger/internal/domain"
)

func entry(hours float64, compensated bool) domain.HourEntry {
	return domain.HourEntry{
		Date:        domain.NewDate(2024, time.June, 10),
		SignedHours: hours,
		Compensated: compensated,
	}
}

func TestNetBalance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		entries []domain.HourEntry
		want    Balance
	}{
		{"empty ledger", nil, Balance{}},
		{"credit only", []domain.HourEntry{entry(8, false)}, Balance{Bank: 8, Net: 8}},
		{"uncompensated debit", []domain.HourEntry{entry(-5, false)}, Balance{OutstandingDebit: 5, Net: -5}},
		{"compensated debit is excluded", []domain.HourEntry{entry(-5, true), entry(2, false)}, Balance{Bank: 2, Net: 2}},
		{"compensated credit still counts", []domain.HourEntry{entry(3, true)}, Balance{Bank: 3, Net: 3}},
		{"mixed", []domain.HourEntry{entry(8, false), entry(-2.5, false), entry(-4, true), entry(1.5, false)}, Balance{Bank: 9.5, OutstandingDebit: 2.5, Net: 7}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NetBalance(tc.entries); got != tc.want {
				t.Fatalf("NetBalance = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSummarizeOrdersAndSkipsZero(t *testing.T) {
	t.Parallel()

	persons := []domain.Person{
		{ID: "a", Name: "A", HoursEntries: []domain.HourEntry{entry(-10, false)}},
		{ID: "b", Name: "B", HoursEntries: []domain.HourEntry{entry(4, false), entry(-4, false)}},
		{ID: "c", Name: "C", HoursEntries: []domain.HourEntry{entry(7, false)}},
		{ID: "d", Name: "D", HoursEntries: []domain.HourEntry{entry(-3, false)}},
		{ID: "e", Name: "E"},
	}

	got := Summarize(persons)

	if len(got.Deficits) != 2 || got.Deficits[0].PersonID != "a" || got.Deficits[0].Hours != 10 || got.Deficits[1].PersonID != "d" || got.Deficits[1].Hours != 3 {
		t.Fatalf("unexpected deficits %+v", got.Deficits)
	}
	if len(got.Surpluses) != 1 || got.Surpluses[0].PersonID != "c" || got.Surpluses[0].Hours != 7 {
		t.Fatalf("unexpected surpluses %+v", got.Surpluses)
	}
	for _, line := range append(got.Deficits, got.Surpluses...) {
		if line.PersonID == "b" || line.PersonID == "e" {
			t.Fatalf("person with zero net must not be listed: %+v", line)
		}
	}
}

func TestSummarizeKeepsInputOrderForTies(t *testing.T) {
	t.Parallel()

	persons := []domain.Person{
		{ID: "x", HoursEntries: []domain.HourEntry{entry(2, false)}},
		{ID: "y", HoursEntries: []domain.HourEntry{entry(2, false)}},
	}
	got := Summarize(persons)
	if got.Surpluses[0].PersonID != "x" || got.Surpluses[1].PersonID != "y" {
		t.Fatalf("expected stable order, got %+v", got.Surpluses)
	}
}
