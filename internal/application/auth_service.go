package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/intern-ledger/internal/domain"
)

// SessionRepository captures the storage of issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// MemorySessions keeps sessions in process memory. Sessions do not survive a
// restart.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemorySessions returns an empty session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]Session)}
}

// CreateSession stores session under its token.
func (m *MemorySessions) CreateSession(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[session.Token]; exists {
		return ErrAlreadyExists
	}
	m.sessions[session.Token] = session
	return nil
}

// GetSession returns the session for token.
func (m *MemorySessions) GetSession(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

// DeleteSession removes the session for token.
func (m *MemorySessions) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

// DeleteExpiredSessions drops every session expired at reference.
func (m *MemorySessions) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, session := range m.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(m.sessions, token)
		}
	}
	return nil
}

// AuthService issues and resolves session tokens.
type AuthService struct {
	accounts       *AccountService
	sessions       SessionRepository
	tokenGenerator func() string
	clock          Clock
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(accounts *AccountService, sessions SessionRepository, tokenGenerator func() string, clock Clock, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(accounts, sessions, tokenGenerator, clock, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(accounts *AccountService, sessions SessionRepository, tokenGenerator func() string, clock Clock, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if sessions == nil {
		sessions = NewMemorySessions()
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &AuthService{
		accounts:       accounts,
		sessions:       sessions,
		tokenGenerator: defaultIDGenerator(tokenGenerator),
		clock:          defaultClock(clock),
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login validates credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil || s.accounts == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", result.Actor.ID).InfoContext(ctx, "authentication succeeded")
	}()

	var actor domain.Actor
	actor, err = s.accounts.VerifyCredentials(ctx, username, params.Password)
	if err != nil {
		return
	}

	now := s.clock.Now()
	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}

	token := s.tokenGenerator()
	if token == "" {
		err = errors.New("application: empty session token")
		return
	}
	session := Session{
		Token:     token,
		AccountID: actor.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err = s.sessions.CreateSession(ctx, session); err != nil {
		return
	}

	result = LoginResult{Session: session, Actor: actor}
	return
}

// Resolve returns the actor behind an active session token.
func (s *AuthService) Resolve(ctx context.Context, token string) (actor domain.Actor, err error) {
	if s == nil || s.accounts == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}
	if !session.ExpiresAt.After(s.clock.Now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		err = ErrSessionExpired
		return
	}

	actor, err = s.accounts.ResolveActor(ctx, session.AccountID)
	if errors.Is(err, ErrNotFound) {
		// The account was deleted after login.
		_ = s.sessions.DeleteSession(ctx, token)
		err = ErrInvalidCredentials
	}
	return
}

// Logout invalidates a session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "Logout")
	if err := s.sessions.DeleteSession(ctx, trimmed); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}
