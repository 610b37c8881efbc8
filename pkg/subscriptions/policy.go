package subscriptions

import "github.com/propdocs/propdocs/pkg/identity"

// RolePolicy describes what a role needs from billing.
type RolePolicy struct {
	// RequiresPaid means the role has no free tier: without an entitled
	// subscription (own or organizational) the role is not entitled.
	RequiresPaid bool

	// SupportsTrial means trials may be started for the role.
	SupportsTrial bool
}

// DefaultRolePolicies returns the static role policy table.
//
// AOAO associations are the only paying role family: they must hold a paid
// or trialing subscription. Property managers, contractors and owners can
// use the platform on the free tier and may trial paid features. Admin
// roles are trivially entitled and never trial.
func DefaultRolePolicies() map[identity.Role]RolePolicy {
	return map[identity.Role]RolePolicy{
		identity.RoleAOAO:            {RequiresPaid: true, SupportsTrial: true},
		identity.RoleAOAOStaff:       {RequiresPaid: true, SupportsTrial: false},
		identity.RolePropertyManager: {SupportsTrial: true},
		identity.RoleContractor:      {SupportsTrial: true},
		identity.RoleOwner:           {SupportsTrial: true},
	}
}
