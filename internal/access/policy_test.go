package access

import (
	"testing"

	"github.com/example/intern-ledger/internal/domain"
)

func TestCanPerform(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		actor domain.Actor
		cap   domain.Capability
		want  bool
	}{
		{"super with empty set", domain.Actor{Role: domain.RoleSuper}, domain.CapManageHours, true},
		{"admin with empty set", domain.Actor{Role: domain.RoleAdmin}, domain.CapManageHours, false},
		{"admin with capability", domain.Actor{Role: domain.RoleAdmin, Capabilities: domain.CapabilitySet{domain.CapManageHours}}, domain.CapManageHours, true},
		{"admin with other capability", domain.Actor{Role: domain.RoleAdmin, Capabilities: domain.CapabilitySet{domain.CapEditUser}}, domain.CapManageHours, false},
		{"intern", domain.Actor{Role: domain.RoleIntern}, domain.CapManageHours, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanPerform(tc.actor, tc.cap); got != tc.want {
				t.Fatalf("CanPerform = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsManagerAndOwnership(t *testing.T) {
	t.Parallel()

	intern := domain.Actor{ID: "acc-1", Role: domain.RoleIntern, PersonID: "intern-1"}
	if IsManager(intern) {
		t.Fatalf("intern must not be a manager")
	}
	if !OwnsPerson(intern, "intern-1") || OwnsPerson(intern, "intern-2") {
		t.Fatalf("unexpected ownership result")
	}
	if !CanView(intern, "intern-1") || CanView(intern, "intern-2") {
		t.Fatalf("intern may only view their own record")
	}

	bare := domain.Actor{Role: domain.RoleAdmin}
	if IsManager(bare) {
		t.Fatalf("admin without capabilities must not be a manager")
	}
	withCap := domain.Actor{Role: domain.RoleAdmin, Capabilities: domain.CapabilitySet{domain.CapResetPassword}}
	if !IsManager(withCap) || !CanView(withCap, "intern-2") {
		t.Fatalf("admin holding any capability is a manager")
	}
}

func TestGrantableByDropsDelegateForNonSuper(t *testing.T) {
	t.Parallel()

	requested := domain.CapabilitySet{domain.CapDelegateAdmins, domain.CapManageHours}

	admin := domain.Actor{Role: domain.RoleAdmin, Capabilities: domain.CapabilitySet{domain.CapDelegateAdmins}}
	if got := GrantableBy(admin, requested); got.Has(domain.CapDelegateAdmins) || !got.Has(domain.CapManageHours) {
		t.Fatalf("unexpected grant by admin: %v", got)
	}

	super := domain.Actor{Role: domain.RoleSuper}
	if got := GrantableBy(super, requested); !got.Has(domain.CapDelegateAdmins) {
		t.Fatalf("super must be able to grant delegate_admins, got %v", got)
	}
}
