// Package ledger holds the hour arithmetic shared by the services and the
// reports. Everything here is a pure function of the entries it is given.
package ledger

import (
	"math"

	"github.com/example/intern-ledger/internal/domain"
)

// Balance is the derived position of one person's hours ledger.
type Balance struct {
	// Bank is the sum of all credit entries.
	Bank float64 `json:"bank"`
	// OutstandingDebit is the sum of the magnitudes of uncompensated debits.
	OutstandingDebit float64 `json:"outstanding_debit"`
	// Net is Bank minus OutstandingDebit.
	Net float64 `json:"net"`
}

// NetBalance computes the balance of a ledger. Compensated debits are left out
// of the deficit entirely; the compensated flag on credits has no effect.
func NetBalance(entries []domain.HourEntry) Balance {
	var b Balance
	for _, e := range entries {
		switch {
		case e.SignedHours > 0:
			b.Bank += e.SignedHours
		case e.SignedHours < 0 && !e.Compensated:
			b.OutstandingDebit += math.Abs(e.SignedHours)
		}
	}
	b.Net = b.Bank - b.OutstandingDebit
	return b
}
