package permissions

import (
	"github.com/propdocs/propdocs/pkg/identity"
)

// Capability is a "resource:action" permission string, or the wildcard "*".
type Capability string

// String returns the capability as a plain string.
func (c Capability) String() string { return string(c) }

// CapabilityAll grants every capability.
const CapabilityAll Capability = "*"

// Capabilities used across the platform.
const (
	CapUsersRead        Capability = "users:read"
	CapUsersWrite       Capability = "users:write"
	CapUsersCreate      Capability = "users:create"
	CapUsersUpdate      Capability = "users:update"
	CapUsersDelete      Capability = "users:delete"
	CapBuildingsRead    Capability = "buildings:read"
	CapBuildingsWrite   Capability = "buildings:write"
	CapEventsRead       Capability = "events:read"
	CapEventsWrite      Capability = "events:write"
	CapDocumentsRead    Capability = "documents:read"
	CapDocumentsWrite   Capability = "documents:write"
	CapUserAccessRead   Capability = "user_access:read"
	CapUserAccessWrite  Capability = "user_access:write"
	CapContractorsRead  Capability = "contractors:read"
	CapContractorsWrite Capability = "contractors:write"
	CapAdminDailySend   Capability = "admin:daily_send"
	CapAdminSetPassword Capability = "admin:set_password"
	CapRequestsApprove  Capability = "requests:approve"
	CapTrialsGrant      Capability = "trials:grant"
)

// Registry answers capability checks against an immutable role table. The
// table is loaded once at process start and passed by reference; there is no
// runtime mutation and no singleton.
type Registry struct {
	roles map[identity.Role]map[Capability]struct{}
}

// NewRegistry builds a registry from a role table. The table is copied into
// lookup sets so later mutation of the input map cannot leak in.
func NewRegistry(table map[identity.Role][]Capability) *Registry {
	roles := make(map[identity.Role]map[Capability]struct{}, len(table))
	for role, caps := range table {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		roles[role] = set
	}
	return &Registry{roles: roles}
}

// NewDefaultRegistry builds a registry from the built-in role table.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultRoleCapabilities())
}

// HasCapability reports whether the principal may perform the operation
// class named by the capability.
//
// super_admin and a custom "*" permission bypass the table entirely. An
// unknown role resolves to the empty capability set, so unrecognized roles
// fail closed rather than erroring.
func (r *Registry) HasCapability(p *identity.Principal, capability Capability) bool {
	if p == nil {
		return false
	}
	if p.Role == identity.RoleSuperAdmin {
		return true
	}
	for _, custom := range p.CustomPermissions {
		if custom == string(CapabilityAll) {
			return true
		}
		if custom == string(capability) {
			return true
		}
	}

	set, ok := r.roles[p.Role]
	if !ok {
		return false
	}
	if _, ok := set[CapabilityAll]; ok {
		return true
	}
	_, ok = set[capability]
	return ok
}

// Capabilities returns the capabilities bound to a role in the table. Custom
// per-principal overrides are not included. The returned slice is a copy.
func (r *Registry) Capabilities(role identity.Role) []Capability {
	set, ok := r.roles[role]
	if !ok {
		return nil
	}
	caps := make([]Capability, 0, len(set))
	for c := range set {
		caps = append(caps, c)
	}
	return caps
}
