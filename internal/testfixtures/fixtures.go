package testfixtures

import (
	"time"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Actor fixtures -----------------------------

// SuperActor returns a role super actor with an empty stored capability set.
func SuperActor() domain.Actor {
	return domain.Actor{ID: "acc-super", DisplayName: "admin", Role: domain.RoleSuper, Capabilities: domain.CapabilitySet{}}
}

// AdminActor returns an admin holding exactly caps.
func AdminActor(caps ...domain.Capability) domain.Actor {
	return domain.Actor{ID: "acc-admin", DisplayName: "gestor", Role: domain.RoleAdmin, Capabilities: domain.NewCapabilitySet(caps...)}
}

// FullAdminActor returns an admin with the default admin capabilities.
func FullAdminActor() domain.Actor {
	return domain.Actor{ID: "acc-admin", DisplayName: "gestor", Role: domain.RoleAdmin, Capabilities: access.DefaultCapabilities(domain.RoleAdmin)}
}

// InternActor returns the self-service actor of personID.
func InternActor(personID string) domain.Actor {
	return domain.Actor{ID: "acc-" + personID, DisplayName: personID, Role: domain.RoleIntern, Capabilities: domain.CapabilitySet{}, PersonID: personID}
}

// AccountFor materialises the account behind an actor fixture.
func AccountFor(actor domain.Actor, passwordHash string) domain.Account {
	return domain.Account{
		ID:                 actor.ID,
		Username:           actor.DisplayName,
		PasswordHash:       passwordHash,
		Role:               actor.Role,
		Capabilities:       actor.Capabilities.Clone(),
		PersonID:           actor.PersonID,
		SelfPasswordChange: true,
		CreatedAt:          referenceTime,
	}
}

// ----------------------------- Person fixtures -----------------------------

// PersonOption configures the generated person fixture.
type PersonOption func(*domain.Person)

// NewPerson returns a person with empty collections and optional overrides.
func NewPerson(id, name string, opts ...PersonOption) domain.Person {
	person := domain.Person{
		ID:           id,
		Name:         name,
		ExamDates:    []domain.Date{},
		HoursEntries: []domain.HourEntry{},
		AuditLog:     []domain.AuditEvent{},
	}
	for _, opt := range opts {
		opt(&person)
	}
	return person
}

// WithExamDates adds exam dates with set semantics.
func WithExamDates(days ...domain.Date) PersonOption {
	return func(p *domain.Person) {
		for _, day := range days {
			p.AddExamDate(day)
		}
	}
}

// WithEntries appends hour entries in order.
func WithEntries(entries ...domain.HourEntry) PersonOption {
	return func(p *domain.Person) {
		p.HoursEntries = append(p.HoursEntries, entries...)
	}
}

// Credit returns a positive entry dated on the reference day.
func Credit(id string, hours float64) domain.HourEntry {
	return entryFixture(id, hours, false)
}

// Debit returns a negative entry of magnitude hours.
func Debit(id string, hours float64, compensated bool) domain.HourEntry {
	return entryFixture(id, -hours, compensated)
}

func entryFixture(id string, signed float64, compensated bool) domain.HourEntry {
	entry := domain.HourEntry{
		ID:          id,
		Date:        domain.DateOf(referenceTime),
		SignedHours: signed,
		Compensated: compensated,
		CreatedBy:   domain.ActorRef{ID: "acc-super", Name: "admin"},
		CreatedAt:   referenceTime,
	}
	if compensated {
		by := entry.CreatedBy
		at := referenceTime
		entry.CompensatedBy = &by
		entry.CompensatedAt = &at
	}
	return entry
}

// ----------------------------- Document fixtures -----------------------------

// DocumentOption configures the generated document fixture.
type DocumentOption func(*domain.Document)

// NewDocument returns a normalised document with optional overrides.
func NewDocument(opts ...DocumentOption) domain.Document {
	doc := domain.Document{Version: domain.DocumentVersion, CreatedAt: referenceTime}
	for _, opt := range opts {
		opt(&doc)
	}
	doc.Normalize()
	return doc
}

// WithPersons appends persons.
func WithPersons(persons ...domain.Person) DocumentOption {
	return func(d *domain.Document) {
		d.Persons = append(d.Persons, persons...)
	}
}

// WithAccounts appends accounts.
func WithAccounts(accounts ...domain.Account) DocumentOption {
	return func(d *domain.Document) {
		d.Accounts = append(d.Accounts, accounts...)
	}
}

// WithBlockWindow sets the policy block window.
func WithBlockWindow(days int) DocumentOption {
	return func(d *domain.Document) {
		d.Policy.BlockWindowDays = days
	}
}
