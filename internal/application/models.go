package application

import (
	"time"

	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/ledger"
)

// EntryInput captures caller provided hour entry fields.
type EntryInput struct {
	Date   domain.Date
	Kind   domain.EntryKind
	Hours  float64
	Reason string
}

// AddEntryParams wraps the data required to add an hour entry.
type AddEntryParams struct {
	Actor    domain.Actor
	PersonID string
	Input    EntryInput
}

// EditEntryParams wraps the data required to overwrite an hour entry.
type EditEntryParams struct {
	Actor       domain.Actor
	PersonID    string
	EntryID     string
	Input       EntryInput
	Compensated bool
}

// DeleteEntryParams identifies the entry to remove.
type DeleteEntryParams struct {
	Actor    domain.Actor
	PersonID string
	EntryID  string
}

// SetCompensatedParams wraps a compensation toggle.
type SetCompensatedParams struct {
	Actor       domain.Actor
	PersonID    string
	EntryID     string
	Compensated bool
}

// ExamDateParams identifies one exam date of a person.
type ExamDateParams struct {
	Actor    domain.Actor
	PersonID string
	Date     domain.Date
}

// PersonSummary is the list view of a tracked person.
type PersonSummary struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ExamDates []domain.Date  `json:"exam_dates"`
	Balance   ledger.Balance `json:"balance"`
}

// AccountView is an account without its password hash.
type AccountView struct {
	ID                 string               `json:"id"`
	Username           string               `json:"username"`
	Role               domain.Role          `json:"role"`
	Capabilities       domain.CapabilitySet `json:"capabilities"`
	PersonID           string               `json:"person_id,omitempty"`
	PersonName         string               `json:"person_name,omitempty"`
	SelfPasswordChange bool                 `json:"self_password_change"`
	CreatedAt          time.Time            `json:"created_at"`
}

// PersonExport is the self-service export of one person.
type PersonExport struct {
	ExportedAt time.Time     `json:"exported_at"`
	Person     domain.Person `json:"person"`
	Account    *AccountView  `json:"account,omitempty"`
}

// CreateInternParams wraps the data required to provision an intern.
type CreateInternParams struct {
	Actor              domain.Actor
	Username           string
	Password           string
	Name               string
	SelfPasswordChange bool
}

// CreateAdminParams wraps the data required to provision an administrator.
type CreateAdminParams struct {
	Actor              domain.Actor
	Username           string
	Password           string
	Capabilities       domain.CapabilitySet
	SelfPasswordChange bool
}

// UpdateAccountParams wraps an account edit. Nil fields are left unchanged.
type UpdateAccountParams struct {
	Actor              domain.Actor
	AccountID          string
	Username           *string
	PersonName         *string
	SelfPasswordChange *bool
}

// ResetPasswordParams wraps a password reset performed by a manager.
type ResetPasswordParams struct {
	Actor       domain.Actor
	AccountID   string
	NewPassword string
}

// ChangeOwnPasswordParams wraps a self-service password change.
type ChangeOwnPasswordParams struct {
	Actor           domain.Actor
	CurrentPassword string
	NewPassword     string
}

// ListAccountsParams filters the account listing.
type ListAccountsParams struct {
	Actor domain.Actor
	Query string
}

// Session is an issued login token.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginParams captures the data required to authenticate.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	Session Session
	Actor   domain.Actor
}
