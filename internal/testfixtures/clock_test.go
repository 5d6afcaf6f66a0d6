package testfixtures

import (
	"testing"
	"time"

	"github.com/example/intern-ledger/internal/domain"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if want := domain.NewDate(2024, time.January, 2); clock.Today() != want {
		t.Fatalf("expected today %s, got %s", want, clock.Today())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockTodayCrossesMidnight(t *testing.T) {
	clock := NewClock(time.Date(2024, time.June, 10, 23, 30, 0, 0, time.UTC))
	clock.Advance(time.Hour)
	if want := domain.NewDate(2024, time.June, 11); clock.Today() != want {
		t.Fatalf("expected %s, got %s", want, clock.Today())
	}
}

func TestClockSetDateKeepsTimeOfDay(t *testing.T) {
	clock := NewClock(time.Date(2024, time.June, 10, 8, 15, 0, 0, time.UTC))
	clock.SetDate(domain.NewDate(2024, time.July, 1))

	got := clock.Now()
	if got.Hour() != 8 || got.Minute() != 15 || clock.Today() != domain.NewDate(2024, time.July, 1) {
		t.Fatalf("unexpected time after SetDate: %v", got)
	}
}

func TestNewClockOn(t *testing.T) {
	day := domain.NewDate(2024, time.June, 10)
	if got := NewClockOn(day).Today(); got != day {
		t.Fatalf("expected %s, got %s", day, got)
	}
}
