package domain

import (
	"slices"
	"strings"
	"time"
)

// DocumentVersion is the current serialisation version of Document.
const DocumentVersion = 1

// Document is the whole persisted aggregate: every tracked person, the
// accounts that act on them and the process-wide policy. It is the unit of
// import, export and flush; it never carries derived values such as balances.
type Document struct {
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Policy    GlobalPolicy `json:"policy"`
	Persons   []Person     `json:"persons"`
	Accounts  []Account    `json:"accounts"`
}

// GlobalPolicy holds settings shared by every person.
type GlobalPolicy struct {
	// BlockWindowDays is the number of days after today during which a person
	// may not self-register an exam date.
	BlockWindowDays int `json:"block_window_days"`
}

// Person is a tracked intern together with their exam dates, hour ledger and
// audit trail.
type Person struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExamDates    []Date       `json:"exam_dates"`
	HoursEntries []HourEntry  `json:"hours_entries"`
	AuditLog     []AuditEvent `json:"audit_log"`
}

// EntryKind selects the sign of an hour adjustment.
type EntryKind string

const (
	// KindCredit adds hours to the bank.
	KindCredit EntryKind = "credit"
	// KindDebit records missing hours.
	KindDebit EntryKind = "debit"
)

// ParseEntryKind accepts "credit"/"debit" and the legacy "bank"/"negative".
func ParseEntryKind(value string) (EntryKind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "credit", "bank":
		return KindCredit, true
	case "debit", "negative":
		return KindDebit, true
	default:
		return "", false
	}
}

// Sign returns +1 for credits and -1 for debits.
func (k EntryKind) Sign() float64 {
	if k == KindDebit {
		return -1
	}
	return 1
}

// HourEntry is one signed adjustment in a person's hours ledger.
type HourEntry struct {
	ID             string     `json:"id"`
	Date           Date       `json:"date"`
	SignedHours    float64    `json:"signed_hours"`
	Reason         string     `json:"reason"`
	Compensated    bool       `json:"compensated"`
	CreatedBy      ActorRef   `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	LastModifiedBy *ActorRef  `json:"last_modified_by,omitempty"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	CompensatedBy  *ActorRef  `json:"compensated_by,omitempty"`
	CompensatedAt  *time.Time `json:"compensated_at,omitempty"`
}

// Kind derives the entry kind from the sign of SignedHours.
func (e HourEntry) Kind() EntryKind {
	if e.SignedHours < 0 {
		return KindDebit
	}
	return KindCredit
}

// IsDebit reports whether the entry subtracts hours.
func (e HourEntry) IsDebit() bool {
	return e.SignedHours < 0
}

// Action tags an audit event.
type Action string

const (
	ActionCreateEntry   Action = "create_entry"
	ActionEditEntry     Action = "edit_entry"
	ActionDeleteEntry   Action = "delete_entry"
	ActionCompensated   Action = "compensated"
	ActionUncompensated Action = "uncompensated"
	ActionCreateProva   Action = "create_prova"
	ActionRemoveProva   Action = "remove_prova"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreateEntry, ActionEditEntry, ActionDeleteEntry,
		ActionCompensated, ActionUncompensated,
		ActionCreateProva, ActionRemoveProva:
		return true
	default:
		return false
	}
}

// AuditEvent records one administrative action against a person.
type AuditEvent struct {
	ID               string    `json:"id"`
	Action           Action    `json:"action"`
	ActorID          string    `json:"actor_id"`
	ActorDisplayName string    `json:"actor_display_name"`
	At               time.Time `json:"at"`
	Details          string    `json:"details"`
}

// Account is a login identity. Intern accounts point at the person they are.
type Account struct {
	ID                 string        `json:"id"`
	Username           string        `json:"username"`
	PasswordHash       string        `json:"password_hash"`
	Role               Role          `json:"role"`
	Capabilities       CapabilitySet `json:"capabilities"`
	PersonID           string        `json:"person_id,omitempty"`
	SelfPasswordChange bool          `json:"self_password_change"`
	CreatedAt          time.Time     `json:"created_at"`
}

// Actor returns the acting identity for the account.
func (a Account) Actor() Actor {
	return Actor{
		ID:           a.ID,
		DisplayName:  a.Username,
		Role:         a.Role,
		Capabilities: a.Capabilities.Clone(),
		PersonID:     a.PersonID,
	}
}

// Person returns a pointer to the person with the given id.
func (d *Document) Person(id string) (*Person, bool) {
	for i := range d.Persons {
		if d.Persons[i].ID == id {
			return &d.Persons[i], true
		}
	}
	return nil, false
}

// RemovePerson deletes the person with the given id together with its entries,
// exam dates and audit log.
func (d *Document) RemovePerson(id string) bool {
	idx := slices.IndexFunc(d.Persons, func(p Person) bool { return p.ID == id })
	if idx < 0 {
		return false
	}
	d.Persons = slices.Delete(d.Persons, idx, idx+1)
	return true
}

// Account returns a pointer to the account with the given id.
func (d *Document) Account(id string) (*Account, bool) {
	for i := range d.Accounts {
		if d.Accounts[i].ID == id {
			return &d.Accounts[i], true
		}
	}
	return nil, false
}

// AccountByUsername finds an account by case-insensitive username.
func (d *Document) AccountByUsername(username string) (*Account, bool) {
	for i := range d.Accounts {
		if strings.EqualFold(d.Accounts[i].Username, strings.TrimSpace(username)) {
			return &d.Accounts[i], true
		}
	}
	return nil, false
}

// AccountForPerson finds the intern account linked to a person.
func (d *Document) AccountForPerson(personID string) (*Account, bool) {
	for i := range d.Accounts {
		if d.Accounts[i].PersonID == personID {
			return &d.Accounts[i], true
		}
	}
	return nil, false
}

// RemoveAccount deletes the account with the given id.
func (d *Document) RemoveAccount(id string) bool {
	idx := slices.IndexFunc(d.Accounts, func(a Account) bool { return a.ID == id })
	if idx < 0 {
		return false
	}
	d.Accounts = slices.Delete(d.Accounts, idx, idx+1)
	return true
}

// Normalize replaces nil collections with empty ones and stamps the version so
// an exported document always has the same shape.
func (d *Document) Normalize() {
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	if d.Persons == nil {
		d.Persons = []Person{}
	}
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	for i := range d.Persons {
		p := &d.Persons[i]
		if p.ExamDates == nil {
			p.ExamDates = []Date{}
		}
		if p.HoursEntries == nil {
			p.HoursEntries = []HourEntry{}
		}
		if p.AuditLog == nil {
			p.AuditLog = []AuditEvent{}
		}
	}
	for i := range d.Accounts {
		if d.Accounts[i].Capabilities == nil {
			d.Accounts[i].Capabilities = CapabilitySet{}
		}
	}
}
