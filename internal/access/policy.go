// Package access resolves whether an actor may perform an operation. Every
// role check in the module goes through this package so that the "super
// bypasses everything" rule lives in one place.
package access

import "github.com/example/intern-ledger/internal/domain"

// CanPerform reports whether actor holds capability. Role super holds every
// capability regardless of the stored set.
func CanPerform(actor domain.Actor, capability domain.Capability) bool {
	if actor.Role == domain.RoleSuper {
		return true
	}
	return actor.Capabilities.Has(capability)
}

// IsManager reports whether actor may act on other people's records: role
// super, or any account holding at least one capability.
func IsManager(actor domain.Actor) bool {
	if actor.Role == domain.RoleSuper {
		return true
	}
	if actor.Role == domain.RoleIntern {
		return false
	}
	return len(actor.Capabilities) > 0
}

// OwnsPerson reports whether actor is the tracked person identified by
// personID (self-service).
func OwnsPerson(actor domain.Actor, personID string) bool {
	return actor.Role == domain.RoleIntern && actor.PersonID != "" && actor.PersonID == personID
}

// CanView reports whether actor may read personID's record.
func CanView(actor domain.Actor, personID string) bool {
	return OwnsPerson(actor, personID) || IsManager(actor)
}

// GrantableBy filters requested capabilities down to what grantor may hand
// out to a new account. delegate_admins is only grantable by role super.
func GrantableBy(grantor domain.Actor, requested domain.CapabilitySet) domain.CapabilitySet {
	set := domain.NewCapabilitySet(requested...)
	if grantor.Role != domain.RoleSuper {
		set = set.Without(domain.CapDelegateAdmins)
	}
	return set
}

// DefaultCapabilities returns the capabilities provisioned for a role when the
// caller does not specify any.
func DefaultCapabilities(role domain.Role) domain.CapabilitySet {
	switch role {
	case domain.RoleSuper:
		return domain.NewCapabilitySet(domain.AllCapabilities()...)
	case domain.RoleAdmin:
		return domain.NewCapabilitySet(
			domain.CapCreateIntern,
			domain.CapEditUser,
			domain.CapDeleteUser,
			domain.CapResetPassword,
			domain.CapManageHours,
		)
	default:
		return domain.CapabilitySet{}
	}
}
