package application

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
)

// AccountService provisions login accounts and resolves them to actors.
type AccountService struct {
	engine      *Engine
	clock       Clock
	idGenerator func() string
	hash        PasswordHasher
	verify      PasswordVerifier
	logger      *slog.Logger
}

// NewAccountService constructs an account service with the provided dependencies.
func NewAccountService(engine *Engine, clock Clock, idGenerator func() string, hasher PasswordHasher) *AccountService {
	return NewAccountServiceWithLogger(engine, clock, idGenerator, hasher, nil)
}

// NewAccountServiceWithLogger constructs an account service with a specified logger.
func NewAccountServiceWithLogger(engine *Engine, clock Clock, idGenerator func() string, hasher PasswordHasher, logger *slog.Logger) *AccountService {
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultArgon2idParams)
	}
	return &AccountService{
		engine:      engine,
		clock:       defaultClock(clock),
		idGenerator: defaultIDGenerator(idGenerator),
		hash:        hasher,
		verify:      VerifyPassword,
		logger:      defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// ResolveActor returns the actor for an account id.
func (s *AccountService) ResolveActor(_ context.Context, accountID string) (domain.Actor, error) {
	if s == nil || s.engine == nil {
		return domain.Actor{}, fmt.Errorf("AccountService is nil")
	}

	var actor domain.Actor
	err := s.engine.read(func(doc *domain.Document) error {
		account, ok := doc.Account(accountID)
		if !ok {
			return ErrNotFound
		}
		actor = account.Actor()
		return nil
	})
	return actor, err
}

// VerifyCredentials checks a username and password and returns the matching
// actor. Unknown usernames and wrong passwords are indistinguishable.
func (s *AccountService) VerifyCredentials(_ context.Context, username, password string) (domain.Actor, error) {
	if s == nil || s.engine == nil {
		return domain.Actor{}, fmt.Errorf("AccountService is nil")
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Actor{}, ErrInvalidCredentials
	}

	var account domain.Account
	err := s.engine.read(func(doc *domain.Document) error {
		found, ok := doc.AccountByUsername(username)
		if !ok {
			return ErrInvalidCredentials
		}
		account = found.Clone()
		return nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	if err := s.verify(account.PasswordHash, password); err != nil {
		return domain.Actor{}, ErrInvalidCredentials
	}
	return account.Actor(), nil
}

// CreateIntern provisions a tracked person together with its login account.
func (s *AccountService) CreateIntern(ctx context.Context, params CreateInternParams) (view AccountView, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateIntern",
		"actor_id", params.Actor.ID,
		"username", params.Username,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create intern", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", view.ID, "person_id", view.PersonID).InfoContext(ctx, "intern created")
	}()

	if !access.CanPerform(params.Actor, domain.CapCreateIntern) {
		err = ErrUnauthorized
		return
	}

	username := strings.TrimSpace(params.Username)
	name := strings.TrimSpace(params.Name)
	vErr := validateCredentials(username, params.Password)
	if name == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	if hash, err = s.hash(params.Password); err != nil {
		return
	}

	err = s.engine.mutate(ctx, "CreateIntern", func(doc *domain.Document) (bool, error) {
		if _, taken := doc.AccountByUsername(username); taken {
			return false, ErrAlreadyExists
		}

		now := s.clock.Now()
		person := domain.Person{
			ID:           s.idGenerator(),
			Name:         name,
			ExamDates:    []domain.Date{},
			HoursEntries: []domain.HourEntry{},
			AuditLog:     []domain.AuditEvent{},
		}
		account := domain.Account{
			ID:                 s.idGenerator(),
			Username:           username,
			PasswordHash:       hash,
			Role:               domain.RoleIntern,
			Capabilities:       domain.CapabilitySet{},
			PersonID:           person.ID,
			SelfPasswordChange: params.SelfPasswordChange,
			CreatedAt:          now,
		}
		doc.Persons = append(doc.Persons, person)
		doc.Accounts = append(doc.Accounts, account)
		view = toAccountView(account, person.Name)
		return true, nil
	})
	return
}

// CreateAdmin provisions an administrator. delegate_admins is dropped from the
// requested capabilities unless the creator is role super.
func (s *AccountService) CreateAdmin(ctx context.Context, params CreateAdminParams) (view AccountView, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateAdmin",
		"actor_id", params.Actor.ID,
		"username", params.Username,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create admin", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", view.ID, "capabilities", view.Capabilities).InfoContext(ctx, "admin created")
	}()

	if !access.CanPerform(params.Actor, domain.CapDelegateAdmins) {
		err = ErrUnauthorized
		return
	}

	username := strings.TrimSpace(params.Username)
	if vErr := validateCredentials(username, params.Password); vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	if hash, err = s.hash(params.Password); err != nil {
		return
	}

	err = s.engine.mutate(ctx, "CreateAdmin", func(doc *domain.Document) (bool, error) {
		if _, taken := doc.AccountByUsername(username); taken {
			return false, ErrAlreadyExists
		}

		account := domain.Account{
			ID:                 s.idGenerator(),
			Username:           username,
			PasswordHash:       hash,
			Role:               domain.RoleAdmin,
			Capabilities:       access.GrantableBy(params.Actor, params.Capabilities),
			SelfPasswordChange: params.SelfPasswordChange,
			CreatedAt:          s.clock.Now(),
		}
		doc.Accounts = append(doc.Accounts, account)
		view = toAccountView(account, "")
		return true, nil
	})
	return
}

// UpdateAccount edits an account. Anyone may rename themselves; editing other
// accounts or the self password change flag requires edit_user.
func (s *AccountService) UpdateAccount(ctx context.Context, params UpdateAccountParams) (view AccountView, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateAccount",
		"actor_id", params.Actor.ID,
		"account_id", params.AccountID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update account", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account updated")
	}()

	canEdit := access.CanPerform(params.Actor, domain.CapEditUser)
	self := params.Actor.ID == params.AccountID
	if !canEdit && (!self || params.SelfPasswordChange != nil) {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	var username, personName string
	if params.Username != nil {
		if username = strings.TrimSpace(*params.Username); !validUsername(username) {
			vErr.add("username", "username is required and must not contain spaces")
		}
	}
	if params.PersonName != nil {
		if personName = strings.TrimSpace(*params.PersonName); personName == "" {
			vErr.add("name", "name is required")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.engine.mutate(ctx, "UpdateAccount", func(doc *domain.Document) (bool, error) {
		account, ok := doc.Account(params.AccountID)
		if !ok {
			return false, ErrNotFound
		}
		if account.Role == domain.RoleSuper && params.Actor.Role != domain.RoleSuper {
			return false, ErrUnauthorized
		}

		if params.Username != nil {
			if other, taken := doc.AccountByUsername(username); taken && other.ID != account.ID {
				return false, ErrAlreadyExists
			}
			account.Username = username
		}
		if params.SelfPasswordChange != nil {
			account.SelfPasswordChange = *params.SelfPasswordChange
		}

		name := ""
		if person, ok := doc.Person(account.PersonID); ok {
			if params.PersonName != nil {
				person.Name = personName
			}
			name = person.Name
		} else if params.PersonName != nil {
			return false, &ValidationError{FieldErrors: map[string]string{"name": "account has no tracked person"}}
		}

		view = toAccountView(*account, name)
		return true, nil
	})
	return
}

// DeleteAccount removes an account. Deleting an intern account also removes
// its person with every entry, exam date and audit event.
func (s *AccountService) DeleteAccount(ctx context.Context, actor domain.Actor, accountID string) (err error) {
	if s == nil || s.engine == nil {
		return fmt.Errorf("AccountService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteAccount",
		"actor_id", actor.ID,
		"account_id", accountID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete account", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account deleted")
	}()

	if !access.CanPerform(actor, domain.CapDeleteUser) {
		return ErrUnauthorized
	}
	if actor.ID == accountID {
		return &ValidationError{FieldErrors: map[string]string{"account_id": "cannot delete your own account"}}
	}

	return s.engine.mutate(ctx, "DeleteAccount", func(doc *domain.Document) (bool, error) {
		account, ok := doc.Account(accountID)
		if !ok {
			return false, ErrNotFound
		}
		if account.Role == domain.RoleSuper && actor.Role != domain.RoleSuper {
			return false, ErrUnauthorized
		}
		personID := account.PersonID
		doc.RemoveAccount(accountID)
		if personID != "" {
			doc.RemovePerson(personID)
		}
		return true, nil
	})
}

// ResetPassword sets a new password on another account.
func (s *AccountService) ResetPassword(ctx context.Context, params ResetPasswordParams) (err error) {
	if s == nil || s.engine == nil {
		return fmt.Errorf("AccountService is nil")
	}

	logger := s.loggerWith(ctx, "ResetPassword",
		"actor_id", params.Actor.ID,
		"account_id", params.AccountID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reset password", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password reset")
	}()

	if !access.CanPerform(params.Actor, domain.CapResetPassword) {
		return ErrUnauthorized
	}
	if params.NewPassword == "" {
		return &ValidationError{FieldErrors: map[string]string{"password": "password is required"}}
	}

	hash, err := s.hash(params.NewPassword)
	if err != nil {
		return err
	}

	return s.engine.mutate(ctx, "ResetPassword", func(doc *domain.Document) (bool, error) {
		account, ok := doc.Account(params.AccountID)
		if !ok {
			return false, ErrNotFound
		}
		if account.Role == domain.RoleSuper && params.Actor.Role != domain.RoleSuper {
			return false, ErrUnauthorized
		}
		account.PasswordHash = hash
		return true, nil
	})
}

// ChangeOwnPassword lets an account holder replace their password when the
// account allows it.
func (s *AccountService) ChangeOwnPassword(ctx context.Context, params ChangeOwnPasswordParams) (err error) {
	if s == nil || s.engine == nil {
		return fmt.Errorf("AccountService is nil")
	}

	logger := s.loggerWith(ctx, "ChangeOwnPassword", "actor_id", params.Actor.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change password", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password changed")
	}()

	if params.NewPassword == "" {
		return &ValidationError{FieldErrors: map[string]string{"new_password": "password is required"}}
	}

	var current domain.Account
	err = s.engine.read(func(doc *domain.Document) error {
		account, ok := doc.Account(params.Actor.ID)
		if !ok {
			return ErrNotFound
		}
		current = account.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	if !current.SelfPasswordChange {
		return ErrUnauthorized
	}
	if s.verify(current.PasswordHash, params.CurrentPassword) != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.hash(params.NewPassword)
	if err != nil {
		return err
	}

	return s.engine.mutate(ctx, "ChangeOwnPassword", func(doc *domain.Document) (bool, error) {
		account, ok := doc.Account(params.Actor.ID)
		if !ok {
			return false, ErrNotFound
		}
		// Reject when the hash moved underneath us, e.g. a concurrent reset.
		if account.PasswordHash != current.PasswordHash {
			return false, ErrInvalidCredentials
		}
		account.PasswordHash = hash
		return true, nil
	})
}

// ListAccounts returns accounts matching query (username, person name or id),
// ordered by role and then username.
func (s *AccountService) ListAccounts(ctx context.Context, params ListAccountsParams) ([]AccountView, error) {
	if s == nil || s.engine == nil {
		return nil, fmt.Errorf("AccountService is nil")
	}
	if !access.IsManager(params.Actor) {
		s.loggerWith(ctx, "ListAccounts", "actor_id", params.Actor.ID).
			WarnContext(ctx, "listing denied", "error_kind", ErrorKind(ErrUnauthorized))
		return nil, ErrUnauthorized
	}

	needle := strings.ToLower(strings.TrimSpace(params.Query))
	views := []AccountView{}
	_ = s.engine.read(func(doc *domain.Document) error {
		for _, account := range doc.Accounts {
			name := ""
			if person, ok := doc.Person(account.PersonID); ok {
				name = person.Name
			}
			if needle != "" &&
				!strings.Contains(strings.ToLower(account.Username), needle) &&
				!strings.Contains(strings.ToLower(name), needle) &&
				!strings.Contains(strings.ToLower(account.ID), needle) {
				continue
			}
			views = append(views, toAccountView(account, name))
		}
		return nil
	})

	slices.SortStableFunc(views, func(a, b AccountView) int {
		return cmp.Or(
			cmp.Compare(roleRank(a.Role), roleRank(b.Role)),
			cmp.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username)),
		)
	})
	return views, nil
}

func roleRank(role domain.Role) int {
	switch role {
	case domain.RoleSuper:
		return 0
	case domain.RoleAdmin:
		return 1
	default:
		return 2
	}
}

func validUsername(username string) bool {
	return username != "" && !strings.ContainsFunc(username, unicode.IsSpace)
}

func validateCredentials(username, password string) *ValidationError {
	vErr := &ValidationError{}
	if !validUsername(username) {
		vErr.add("username", "username is required and must not contain spaces")
	}
	if password == "" {
		vErr.add("password", "password is required")
	}
	return vErr
}
