package permissions

import "github.com/propdocs/propdocs/pkg/identity"

// DefaultRoleCapabilities returns the built-in role table. The map is
// freshly allocated on every call so callers can tweak a copy (for tests or
// alternate deployments) without affecting anyone else.
func DefaultRoleCapabilities() map[identity.Role][]Capability {
	return map[identity.Role][]Capability{
		identity.RoleSuperAdmin: {
			CapabilityAll,
		},
		identity.RoleAdmin: {
			CapUsersRead, CapUsersWrite,
			CapUsersCreate, CapUsersUpdate, CapUsersDelete,
			CapBuildingsRead, CapBuildingsWrite,
			CapEventsRead, CapEventsWrite,
			CapDocumentsRead, CapDocumentsWrite,
			CapUserAccessRead, CapUserAccessWrite,
			CapContractorsRead, CapContractorsWrite,
			CapAdminDailySend, CapAdminSetPassword,
			CapRequestsApprove, CapTrialsGrant,
		},
		identity.RolePropertyManager: {
			CapBuildingsRead,
			CapEventsRead, CapEventsWrite,
			CapDocumentsRead, CapDocumentsWrite,
			CapContractorsRead,
			CapUserAccessRead, CapUserAccessWrite,
		},
		identity.RoleAOAO: {
			CapBuildingsRead,
			CapEventsRead, CapEventsWrite,
			CapDocumentsRead, CapDocumentsWrite,
			CapContractorsRead,
		},
		identity.RoleAOAOStaff: {
			CapBuildingsRead,
			CapEventsRead, CapEventsWrite,
			CapDocumentsRead, CapDocumentsWrite,
			CapContractorsRead,
		},
		identity.RoleContractor: {
			CapEventsRead, CapEventsWrite,
			CapDocumentsRead, CapDocumentsWrite,
			CapContractorsRead,
		},
		identity.RoleContractorStaff: {
			CapEventsRead, CapEventsWrite,
			CapDocumentsRead,
			CapContractorsRead,
		},
		identity.RoleAuditor: {
			CapEventsRead,
			CapDocumentsRead,
			CapBuildingsRead,
			CapContractorsRead,
		},
		identity.RoleOwner: {
			CapEventsRead,
			CapDocumentsRead,
			CapBuildingsRead,
		},
		identity.RoleTenant: {
			CapEventsRead,
			CapDocumentsRead,
			CapBuildingsRead,
		},
		identity.RoleBuyer: {
			CapBuildingsRead,
			CapEventsRead,
			CapDocumentsRead,
		},
		identity.RoleGuest: {},
	}
}
