package application_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/testfixtures"
)

const fixturePassword = "segredo"

// newAccountServices seeds a super, a full admin and one intern account, all
// sharing fixturePassword.
func newAccountServices(t *testing.T) *testfixtures.Services {
	t.Helper()

	hash, err := testfixtures.FastPasswordHasher()(fixturePassword)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	intern := testfixtures.InternActor("intern-1")
	services, _ := newTestServices(t, testfixtures.WithAccounts(
		testfixtures.AccountFor(testfixtures.SuperActor(), hash),
		testfixtures.AccountFor(testfixtures.FullAdminActor(), hash),
		testfixtures.AccountFor(intern, hash),
	))
	return services
}

func TestAccountService_CreateIntern(t *testing.T) {
	t.Parallel()

	t.Run("creates the person and its login", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		ctx := context.Background()

		view, err := services.Accounts.CreateIntern(ctx, application.CreateInternParams{
			Actor:              testfixtures.FullAdminActor(),
			Username:           " dani ",
			Password:           "senha",
			Name:               " Daniela ",
			SelfPasswordChange: true,
		})
		if err != nil {
			t.Fatalf("CreateIntern failed: %v", err)
		}
		if view.Username != "dani" || view.Role != domain.RoleIntern || view.PersonName != "Daniela" || view.PersonID == "" {
			t.Fatalf("unexpected view %+v", view)
		}

		person, err := services.Persons.GetPerson(ctx, testfixtures.SuperActor(), view.PersonID)
		if err != nil {
			t.Fatalf("GetPerson failed: %v", err)
		}
		if person.Name != "Daniela" || len(person.HoursEntries) != 0 {
			t.Fatalf("unexpected person %+v", person)
		}

		actor, err := services.Accounts.VerifyCredentials(ctx, "dani", "senha")
		if err != nil {
			t.Fatalf("new login must work: %v", err)
		}
		if actor.PersonID != view.PersonID || actor.Role != domain.RoleIntern {
			t.Fatalf("unexpected actor %+v", actor)
		}
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.CreateIntern(context.Background(), application.CreateInternParams{
			Actor: testfixtures.SuperActor(), Username: "gestor", Password: "x", Name: "Outro",
		})
		if !errors.Is(err, application.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("validates fields", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.CreateIntern(context.Background(), application.CreateInternParams{
			Actor: testfixtures.SuperActor(), Username: "com espaco", Password: "",
		})
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"username", "password", "name"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s error in %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("requires create_intern", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.CreateIntern(context.Background(), application.CreateInternParams{
			Actor: testfixtures.AdminActor(domain.CapManageHours), Username: "eva", Password: "x", Name: "Eva",
		})
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAccountService_CreateAdmin(t *testing.T) {
	t.Parallel()

	requested := domain.NewCapabilitySet(domain.CapManageHours, domain.CapDelegateAdmins)
	cases := []struct {
		name    string
		creator domain.Actor
		want    domain.CapabilitySet
	}{
		{"super grants delegate_admins", testfixtures.SuperActor(), requested},
		{"delegating admin cannot", testfixtures.AdminActor(domain.CapDelegateAdmins), domain.NewCapabilitySet(domain.CapManageHours)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			services := newAccountServices(t)
			view, err := services.Accounts.CreateAdmin(context.Background(), application.CreateAdminParams{
				Actor: tc.creator, Username: "novo", Password: "x", Capabilities: requested,
			})
			if err != nil {
				t.Fatalf("CreateAdmin failed: %v", err)
			}
			if view.Role != domain.RoleAdmin || !slices.Equal(view.Capabilities, tc.want) {
				t.Fatalf("capabilities = %v, want %v", view.Capabilities, tc.want)
			}
		})
	}

	t.Run("requires delegate_admins", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.CreateAdmin(context.Background(), application.CreateAdminParams{
			Actor: testfixtures.FullAdminActor(), Username: "novo", Password: "x",
		})
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAccountService_UpdateAccount(t *testing.T) {
	t.Parallel()

	ptr := func(s string) *string { return &s }
	flag := false

	t.Run("intern renames itself", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		view, err := services.Accounts.UpdateAccount(context.Background(), application.UpdateAccountParams{
			Actor: testfixtures.InternActor("intern-1"), AccountID: "acc-intern-1", PersonName: ptr("Ana Maria"),
		})
		if err != nil {
			t.Fatalf("UpdateAccount failed: %v", err)
		}
		if view.PersonName != "Ana Maria" {
			t.Fatalf("unexpected view %+v", view)
		}
	})

	t.Run("intern cannot toggle its own flag", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.UpdateAccount(context.Background(), application.UpdateAccountParams{
			Actor: testfixtures.InternActor("intern-1"), AccountID: "acc-intern-1", SelfPasswordChange: &flag,
		})
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("admin cannot edit a super", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.UpdateAccount(context.Background(), application.UpdateAccountParams{
			Actor: testfixtures.FullAdminActor(), AccountID: "acc-super", Username: ptr("root"),
		})
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("username collision", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		_, err := services.Accounts.UpdateAccount(context.Background(), application.UpdateAccountParams{
			Actor: testfixtures.SuperActor(), AccountID: "acc-intern-1", Username: ptr("gestor"),
		})
		if !errors.Is(err, application.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestAccountService_DeleteAccount(t *testing.T) {
	t.Parallel()

	t.Run("cascades to the person", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		ctx := context.Background()
		addEntry(t, services.Ledger, domain.KindCredit, 2)

		if err := services.Accounts.DeleteAccount(ctx, testfixtures.FullAdminActor(), "acc-intern-1"); err != nil {
			t.Fatalf("DeleteAccount failed: %v", err)
		}
		if _, err := services.Persons.GetPerson(ctx, testfixtures.SuperActor(), "intern-1"); !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("person must be removed, got %v", err)
		}
		if _, err := services.Accounts.ResolveActor(ctx, "acc-intern-1"); !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("account must be removed, got %v", err)
		}
		summary, _ := services.Reports.Summarize(ctx, testfixtures.SuperActor())
		if len(summary.Surpluses) != 0 {
			t.Fatalf("deleted person must leave the report, got %+v", summary)
		}
	})

	cases := []struct {
		name   string
		actor  domain.Actor
		target string
		check  func(error) bool
	}{
		{"self delete", testfixtures.SuperActor(), "acc-super", func(err error) bool {
			var vErr *application.ValidationError
			return errors.As(err, &vErr)
		}},
		{"admin deletes super", testfixtures.FullAdminActor(), "acc-super", func(err error) bool { return errors.Is(err, application.ErrUnauthorized) }},
		{"missing delete_user", testfixtures.AdminActor(domain.CapManageHours), "acc-intern-1", func(err error) bool { return errors.Is(err, application.ErrUnauthorized) }},
		{"unknown account", testfixtures.SuperActor(), "acc-ghost", func(err error) bool { return errors.Is(err, application.ErrNotFound) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			services := newAccountServices(t)
			if err := services.Accounts.DeleteAccount(context.Background(), tc.actor, tc.target); !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestAccountService_Passwords(t *testing.T) {
	t.Parallel()

	t.Run("reset by manager", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		ctx := context.Background()
		err := services.Accounts.ResetPassword(ctx, application.ResetPasswordParams{
			Actor: testfixtures.FullAdminActor(), AccountID: "acc-intern-1", NewPassword: "nova",
		})
		if err != nil {
			t.Fatalf("ResetPassword failed: %v", err)
		}
		if _, err := services.Accounts.VerifyCredentials(ctx, "intern-1", fixturePassword); !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("old password must stop working, got %v", err)
		}
		if _, err := services.Accounts.VerifyCredentials(ctx, "intern-1", "nova"); err != nil {
			t.Fatalf("new password must work: %v", err)
		}
	})

	t.Run("self change checks the current password", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		ctx := context.Background()
		intern := testfixtures.InternActor("intern-1")

		err := services.Accounts.ChangeOwnPassword(ctx, application.ChangeOwnPasswordParams{Actor: intern, CurrentPassword: "errada", NewPassword: "nova"})
		if !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		err = services.Accounts.ChangeOwnPassword(ctx, application.ChangeOwnPasswordParams{Actor: intern, CurrentPassword: fixturePassword, NewPassword: "nova"})
		if err != nil {
			t.Fatalf("ChangeOwnPassword failed: %v", err)
		}
		if _, err := services.Accounts.VerifyCredentials(ctx, "intern-1", "nova"); err != nil {
			t.Fatalf("new password must work: %v", err)
		}
	})

	t.Run("self change honours the account flag", func(t *testing.T) {
		t.Parallel()

		services := newAccountServices(t)
		ctx := context.Background()
		disabled := false
		if _, err := services.Accounts.UpdateAccount(ctx, application.UpdateAccountParams{
			Actor: testfixtures.SuperActor(), AccountID: "acc-intern-1", SelfPasswordChange: &disabled,
		}); err != nil {
			t.Fatalf("UpdateAccount failed: %v", err)
		}
		err := services.Accounts.ChangeOwnPassword(ctx, application.ChangeOwnPasswordParams{
			Actor: testfixtures.InternActor("intern-1"), CurrentPassword: fixturePassword, NewPassword: "nova",
		})
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAccountService_ListAccounts(t *testing.T) {
	t.Parallel()

	services := newAccountServices(t)
	ctx := context.Background()

	views, err := services.Accounts.ListAccounts(ctx, application.ListAccountsParams{Actor: testfixtures.FullAdminActor()})
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	var usernames []string
	for _, v := range views {
		usernames = append(usernames, v.Username)
	}
	if !slices.Equal(usernames, []string{"admin", "gestor", "intern-1"}) {
		t.Fatalf("unexpected order %v", usernames)
	}
	if views[2].PersonName != "Ana" {
		t.Fatalf("intern view must carry the person name, got %+v", views[2])
	}

	filtered, _ := services.Accounts.ListAccounts(ctx, application.ListAccountsParams{Actor: testfixtures.SuperActor(), Query: "ANA"})
	if len(filtered) != 1 || filtered[0].ID != "acc-intern-1" {
		t.Fatalf("query must match person names, got %+v", filtered)
	}

	if _, err := services.Accounts.ListAccounts(ctx, application.ListAccountsParams{Actor: testfixtures.InternActor("intern-1")}); !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
