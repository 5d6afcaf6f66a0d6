package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/testfixtures"
)

type sessionRepositoryStub struct {
	mu          sync.Mutex
	sessions    map[string]application.Session
	deleteCalls []time.Time
	createErr   error
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]application.Session)}
}

func (s *sessionRepositoryStub) CreateSession(_ context.Context, session application.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *sessionRepositoryStub) GetSession(_ context.Context, token string) (application.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return application.ErrNotFound
	}
	delete(s.sessions, token)
	return nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, reference)
	return nil
}

func (s *sessionRepositoryStub) has(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	return ok
}

func newAuthService(t *testing.T, services *testfixtures.Services, repo application.SessionRepository, clock *testfixtures.Clock) *application.AuthService {
	t.Helper()
	tokens := testfixtures.NewIDGenerator("token")
	return application.NewAuthService(services.Accounts, repo, tokens.NextFunc(), clock, time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues sessions for valid credentials", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		clock := testfixtures.NewClockOn(june10)
		repo := newSessionRepositoryStub()
		svc := newAuthService(t, services, repo, clock)

		result, err := svc.Login(context.Background(), application.LoginParams{Username: " gestor ", Password: fixturePassword})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.Session.Token != "token-1" || result.Actor.ID != "acc-admin" {
			t.Fatalf("unexpected result %+v", result)
		}
		if !result.Session.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
			t.Fatalf("unexpected expiry %v", result.Session.ExpiresAt)
		}
		if len(repo.deleteCalls) != 1 || !repo.deleteCalls[0].Equal(clock.Now()) {
			t.Fatalf("expected DeleteExpiredSessions to be called with now, got %#v", repo.deleteCalls)
		}
	})

	t.Run("rejects invalid credentials with sentinel error", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		svc := newAuthService(t, services, newSessionRepositoryStub(), testfixtures.NewClockOn(june10))

		cases := []application.LoginParams{
			{Username: "gestor", Password: "wrong"},
			{Username: "ninguem", Password: fixturePassword},
			{Username: "", Password: fixturePassword},
			{Username: "gestor", Password: ""},
		}
		for _, params := range cases {
			if _, err := svc.Login(context.Background(), params); !errors.Is(err, application.ErrInvalidCredentials) {
				t.Fatalf("%+v: expected ErrInvalidCredentials, got %v", params, err)
			}
		}
	})

	t.Run("propagates session storage failures", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		repo := newSessionRepositoryStub()
		repo.createErr = errors.New("disk full")
		svc := newAuthService(t, services, repo, testfixtures.NewClockOn(june10))

		if _, err := svc.Login(context.Background(), application.LoginParams{Username: "admin", Password: fixturePassword}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestAuthService_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("returns the current actor", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		clock := testfixtures.NewClockOn(june10)
		svc := newAuthService(t, services, application.NewMemorySessions(), clock)
		ctx := context.Background()

		result, err := svc.Login(ctx, application.LoginParams{Username: "intern-1", Password: fixturePassword})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		actor, err := svc.Resolve(ctx, result.Session.Token)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if actor.Role != domain.RoleIntern || actor.PersonID != "intern-1" {
			t.Fatalf("unexpected actor %+v", actor)
		}
	})

	t.Run("expired sessions are removed", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		clock := testfixtures.NewClockOn(june10)
		repo := newSessionRepositoryStub()
		svc := newAuthService(t, services, repo, clock)
		ctx := context.Background()

		result, _ := svc.Login(ctx, application.LoginParams{Username: "admin", Password: fixturePassword})
		clock.Advance(time.Hour)

		if _, err := svc.Resolve(ctx, result.Session.Token); !errors.Is(err, application.ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if repo.has(result.Session.Token) {
			t.Fatalf("expired session must be deleted")
		}
	})

	t.Run("deleted accounts lose their sessions", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		clock := testfixtures.NewClockOn(june10)
		svc := newAuthService(t, services, application.NewMemorySessions(), clock)
		ctx := context.Background()

		result, _ := svc.Login(ctx, application.LoginParams{Username: "intern-1", Password: fixturePassword})
		if err := services.Accounts.DeleteAccount(ctx, testfixtures.SuperActor(), "acc-intern-1"); err != nil {
			t.Fatalf("DeleteAccount failed: %v", err)
		}
		if _, err := svc.Resolve(ctx, result.Session.Token); !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown and blank tokens", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		svc := newAuthService(t, services, nil, testfixtures.NewClockOn(june10))
		for _, token := range []string{"", "  ", "nope"} {
			if _, err := svc.Resolve(context.Background(), token); !errors.Is(err, application.ErrInvalidCredentials) {
				t.Fatalf("%q: expected ErrInvalidCredentials, got %v", token, err)
			}
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	services := newAccountServices(t)
	svc := newAuthService(t, services, application.NewMemorySessions(), testfixtures.NewClockOn(june10))
	ctx := context.Background()

	result, _ := svc.Login(ctx, application.LoginParams{Username: "admin", Password: fixturePassword})
	if err := svc.Logout(ctx, result.Session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Resolve(ctx, result.Session.Token); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("revoked session must not resolve, got %v", err)
	}
	if err := svc.Logout(ctx, result.Session.Token); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("second logout: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMemorySessions_DeleteExpired(t *testing.T) {
	t.Parallel()

	store := application.NewMemorySessions()
	ctx := context.Background()
	now := testfixtures.ReferenceTime()

	_ = store.CreateSession(ctx, application.Session{Token: "old", ExpiresAt: now})
	_ = store.CreateSession(ctx, application.Session{Token: "new", ExpiresAt: now.Add(time.Minute)})
	if err := store.CreateSession(ctx, application.Session{Token: "new"}); !errors.Is(err, application.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if err := store.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if _, err := store.GetSession(ctx, "old"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expired session must be gone, got %v", err)
	}
	if _, err := store.GetSession(ctx, "new"); err != nil {
		t.Fatalf("live session must remain: %v", err)
	}
}
