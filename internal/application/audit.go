package application

import (
	"fmt"
	"strconv"
	"time"

	"github.com/example/intern-ledger/internal/domain"
)

// record appends an audit event to person. Mutation and audit append always
// happen on the same working copy.
func record(person *domain.Person, id string, actor domain.Actor, action domain.Action, at time.Time, details string) {
	person.AppendAudit(domain.AuditEvent{
		ID:               id,
		Action:           action,
		ActorID:          actor.ID,
		ActorDisplayName: actor.DisplayName,
		At:               at,
		Details:          details,
	})
}

func lookupPerson(doc *domain.Document, personID string) (*domain.Person, error) {
	person, ok := doc.Person(personID)
	if !ok {
		return nil, ErrNotFound
	}
	return person, nil
}

func formatHours(signed float64) string {
	return strconv.FormatFloat(signed, 'f', -1, 64) + "h"
}

func kindLabel(kind domain.EntryKind) string {
	if kind == domain.KindDebit {
		return "negativa"
	}
	return "banco"
}

func describeEntry(entry domain.HourEntry) string {
	return fmt.Sprintf("%s (%s %s)", entry.ID, formatHours(entry.SignedHours), kindLabel(entry.Kind()))
}
