package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, err := ParseDate(" 2024-06-10 ")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if got != NewDate(2024, time.June, 10) {
		t.Fatalf("unexpected date %v", got)
	}

	for _, bad := range []string{"", "2024-13-01", "10/06/2024"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateAddDaysCrossesMonthAndYear(t *testing.T) {
	t.Parallel()

	if got := NewDate(2024, time.June, 29).AddDays(3); got.String() != "2024-07-02" {
		t.Fatalf("expected 2024-07-02, got %s", got)
	}
	if got := NewDate(2024, time.December, 31).AddDays(1); got.String() != "2025-01-01" {
		t.Fatalf("expected 2025-01-01, got %s", got)
	}
	if got := NewDate(2024, time.March, 1).AddDays(-1); got.String() != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}
}

func TestDateCompare(t *testing.T) {
	t.Parallel()

	a := NewDate(2024, time.June, 12)
	b := NewDate(2024, time.June, 13)
	if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
		t.Fatalf("unexpected ordering between %s and %s", a, b)
	}
	tests := []struct {
		left, right Date
		want        int
	}{
		{NewDate(2023, time.December, 31), NewDate(2024, time.January, 1), -1},
		{NewDate(2024, time.July, 1), NewDate(2024, time.June, 30), 1},
		{NewDate(2024, time.June, 2), NewDate(2024, time.June, 10), -1},
		{Date{}, NewDate(2024, time.June, 10), -1},
	}
	for _, tc := range tests {
		if got := tc.left.Compare(tc.right); got != tc.want {
			t.Errorf("%s.Compare(%s) = %d, want %d", tc.left, tc.right, got, tc.want)
		}
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BRT", -3*60*60)
	instant := time.Date(2024, time.June, 11, 1, 0, 0, 0, time.UTC)
	if got := DateOf(instant.In(loc)); got.String() != "2024-06-10" {
		t.Fatalf("expected local day 2024-06-10, got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	payload := struct {
		Day  Date `json:"day"`
		None Date `json:"none"`
	}{Day: NewDate(2024, time.June, 13)}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"day":"2024-06-13","none":""}` {
		t.Fatalf("unexpected json %s", raw)
	}

	var decoded struct {
		Day  Date `json:"day"`
		None Date `json:"none"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Day != payload.Day || !decoded.None.IsZero() {
		t.Fatalf("unexpected decoded value %+v", decoded)
	}
}
