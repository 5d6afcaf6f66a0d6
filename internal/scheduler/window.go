// Package scheduler decides whether a self-service exam date falls inside the
// blocked window configured by the managers.
package scheduler

import (
	"fmt"

	"github.com/example/intern-ledger/internal/domain"
)

// EarliestSelfServiceDate returns the first calendar date an intern may add on
// their own. Today and the next blockDays days are locked.
func EarliestSelfServiceDate(today domain.Date, blockDays int) domain.Date {
	if blockDays < 0 {
		blockDays = 0
	}
	return today.AddDays(blockDays + 1)
}

// Blocked reports whether date is inside the locked window.
func Blocked(date, today domain.Date, blockDays int) bool {
	return date.Before(EarliestSelfServiceDate(today, blockDays))
}

// WindowError describes a self-service add rejected by the window.
type WindowError struct {
	Date            domain.Date
	EarliestAllowed domain.Date
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("scheduler: %s is inside the blocked window, earliest allowed date is %s", e.Date, e.EarliestAllowed)
}

// CheckSelfService returns a *WindowError when the person may not add date
// themselves.
func CheckSelfService(date, today domain.Date, blockDays int) error {
	earliest := EarliestSelfServiceDate(today, blockDays)
	if date.Before(earliest) {
		return &WindowError{Date: date, EarliestAllowed: earliest}
	}
	return nil
}
