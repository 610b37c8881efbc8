package identity

import "time"

// Role represents the platform role a principal holds. Roles are fixed:
// new roles require a deploy, not a database row.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleAdmin           Role = "admin"
	RoleAOAO            Role = "aoao"
	RoleAOAOStaff       Role = "aoao_staff"
	RolePropertyManager Role = "property_manager"
	RoleContractor      Role = "contractor"
	RoleContractorStaff Role = "contractor_staff"
	RoleOwner           Role = "owner"
	RoleTenant          Role = "tenant"
	RoleAuditor         Role = "auditor"
	RoleBuyer           Role = "buyer"
	RoleGuest           Role = "guest"
)

// IsAdmin reports whether the role is one of the administrative roles that
// receive blanket access to all resources.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsContractor reports whether the role belongs to the contractor family.
// Contractors are a blanket-access role: they can reach every building
// without explicit grants. This is a deliberate policy decision.
func (r Role) IsContractor() bool {
	return r == RoleContractor || r == RoleContractorStaff
}

// OrgKind distinguishes the three kinds of organizations a principal can
// belong to.
type OrgKind string

const (
	OrgKindAOAO       OrgKind = "aoao"
	OrgKindPMCompany  OrgKind = "pm_company"
	OrgKindContractor OrgKind = "contractor"
)

// OrganizationRef identifies the single organization a principal belongs to.
// A nil *OrganizationRef means no membership; the kind tag makes it
// impossible for a principal to ambiguously belong to two kinds at once.
type OrganizationRef struct {
	Kind OrgKind `json:"kind"`
	ID   string  `json:"id"`
}

// AOAO returns a reference to an AOAO organization.
func AOAO(id string) *OrganizationRef {
	return &OrganizationRef{Kind: OrgKindAOAO, ID: id}
}

// PMCompany returns a reference to a property-management company.
func PMCompany(id string) *OrganizationRef {
	return &OrganizationRef{Kind: OrgKindPMCompany, ID: id}
}

// Contractor returns a reference to a contractor company.
func Contractor(id string) *OrganizationRef {
	return &OrganizationRef{Kind: OrgKindContractor, ID: id}
}

// Principal is an authenticated actor making a request. It is built once at
// authentication time from the identity store and is immutable for the
// lifetime of the request.
type Principal struct {
	ID                string           `json:"id"`
	Email             string           `json:"email,omitempty"`
	FullName          string           `json:"full_name,omitempty"`
	Role              Role             `json:"role"`
	Organization      *OrganizationRef `json:"organization,omitempty"`
	CustomPermissions []string         `json:"custom_permissions,omitempty"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	LastLoginAt       *time.Time      `json:"last_login_at,omitempty"`
}
