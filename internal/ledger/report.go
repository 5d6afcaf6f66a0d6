package ledger

import (
	"cmp"
	"math"
	"slices"

	"github.com/example/intern-ledger/internal/domain"
)

// Line is one person's row in a balance report.
type Line struct {
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Hours    float64 `json:"hours"`
}

// Summary splits persons by the sign of their net balance.
type Summary struct {
	// Deficits holds |net| for persons with a negative net, largest first.
	Deficits []Line `json:"deficits"`
	// Surpluses holds net for persons with a positive net, largest first.
	Surpluses []Line `json:"surpluses"`
}

// Summarize derives the cross-person report. Persons whose net is exactly zero
// appear in neither list; equal magnitudes keep the input order. The result is
// recomputed on every call.
func Summarize(persons []domain.Person) Summary {
	summary := Summary{Deficits: []Line{}, Surpluses: []Line{}}
	for _, p := range persons {
		net := NetBalance(p.HoursEntries).Net
		switch {
		case net < 0:
			summary.Deficits = append(summary.Deficits, Line{PersonID: p.ID, Name: p.Name, Hours: math.Abs(net)})
		case net > 0:
			summary.Surpluses = append(summary.Surpluses, Line{PersonID: p.ID, Name: p.Name, Hours: net})
		}
	}

	byHoursDesc := func(a, b Line) int { return cmp.Compare(b.Hours, a.Hours) }
	slices.SortStableFunc(summary.Deficits, byHoursDesc)
	slices.SortStableFunc(summary.Surpluses, byHoursDesc)
	return summary
}
