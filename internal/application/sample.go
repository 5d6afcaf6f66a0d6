package application

import (
	"fmt"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
)

// Sample credentials provisioned by SampleDocument.
const (
	SampleAdminUsername  = "admin"
	SampleAdminPassword  = "admin123"
	SampleInternPassword = "senha123"
	sampleInternCount    = 10
)

// SampleDocument builds a demo document: one super account and ten interns
// (persons intern-1..intern-10, logins est1..est10) with a zero blocked window.
func SampleDocument(clock Clock, idGenerator func() string, hasher PasswordHasher) (domain.Document, error) {
	clock = defaultClock(clock)
	idGenerator = defaultIDGenerator(idGenerator)
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultArgon2idParams)
	}

	now := clock.Now()
	doc := domain.Document{
		Version:   domain.DocumentVersion,
		CreatedAt: now,
		Policy:    domain.GlobalPolicy{BlockWindowDays: 0},
	}

	adminHash, err := hasher(SampleAdminPassword)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Accounts = append(doc.Accounts, domain.Account{
		ID:                 idGenerator(),
		Username:           SampleAdminUsername,
		PasswordHash:       adminHash,
		Role:               domain.RoleSuper,
		Capabilities:       access.DefaultCapabilities(domain.RoleSuper),
		SelfPasswordChange: true,
		CreatedAt:          now,
	})

	internHash, err := hasher(SampleInternPassword)
	if err != nil {
		return domain.Document{}, err
	}
	for i := 1; i <= sampleInternCount; i++ {
		person := domain.Person{
			ID:           fmt.Sprintf("intern-%d", i),
			Name:         fmt.Sprintf("Estagiário %d", i),
			ExamDates:    []domain.Date{},
			HoursEntries: []domain.HourEntry{},
			AuditLog:     []domain.AuditEvent{},
		}
		doc.Persons = append(doc.Persons, person)
		doc.Accounts = append(doc.Accounts, domain.Account{
			ID:                 idGenerator(),
			Username:           fmt.Sprintf("est%d", i),
			PasswordHash:       internHash,
			Role:               domain.RoleIntern,
			Capabilities:       domain.CapabilitySet{},
			PersonID:           person.ID,
			SelfPasswordChange: true,
			CreatedAt:          now,
		})
	}

	doc.Normalize()
	return doc, nil
}
