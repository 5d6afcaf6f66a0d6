package domain

import (
	"slices"
	"strings"
)

// Role identifies the kind of account performing an operation.
type Role string

const (
	// RoleSuper holds every capability regardless of the stored set.
	RoleSuper Role = "super"
	// RoleAdmin holds exactly the capabilities granted to it.
	RoleAdmin Role = "admin"
	// RoleIntern is a tracked person acting on their own record.
	RoleIntern Role = "intern"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuper, RoleAdmin, RoleIntern:
		return true
	default:
		return false
	}
}

// Capability names a permission that can be granted to an admin account.
type Capability string

const (
	CapCreateIntern   Capability = "create_intern"
	CapEditUser       Capability = "edit_user"
	CapDeleteUser     Capability = "delete_user"
	CapResetPassword  Capability = "reset_password"
	CapDelegateAdmins Capability = "delegate_admins"
	CapManageHours    Capability = "manage_hours"
)

// AllCapabilities lists every capability in a stable order.
func AllCapabilities() []Capability {
	return []Capability{
		CapCreateIntern,
		CapEditUser,
		CapDeleteUser,
		CapResetPassword,
		CapDelegateAdmins,
		CapManageHours,
	}
}

// ParseCapability resolves a capability name, ignoring case and surrounding
// whitespace.
func ParseCapability(value string) (Capability, bool) {
	c := Capability(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(AllCapabilities(), c) {
		return c, true
	}
	return "", false
}

// CapabilitySet is a sorted, duplicate-free set of capabilities.
type CapabilitySet []Capability

// NewCapabilitySet builds a normalised set, dropping unknown names.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	out := make(CapabilitySet, 0, len(caps))
	for _, c := range caps {
		parsed, ok := ParseCapability(string(c))
		if !ok || slices.Contains(out, parsed) {
			continue
		}
		out = append(out, parsed)
	}
	slices.Sort(out)
	return out
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return slices.Contains(s, c)
}

// Without returns a copy of the set with c removed.
func (s CapabilitySet) Without(c Capability) CapabilitySet {
	out := make(CapabilitySet, 0, len(s))
	for _, existing := range s {
		if existing != c {
			out = append(out, existing)
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s CapabilitySet) Clone() CapabilitySet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Actor is the identity performing a mutation. It is passed explicitly to every
// command; nothing in the core reads an ambient "current user".
type Actor struct {
	ID           string
	DisplayName  string
	Role         Role
	Capabilities CapabilitySet
	// PersonID links an intern actor to the tracked person they are.
	PersonID string
}

// Ref returns the attribution stamp recorded on entries and audit events.
func (a Actor) Ref() ActorRef {
	return ActorRef{ID: a.ID, Name: a.DisplayName}
}

// ActorRef attributes a change to an actor.
type ActorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
