package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propdocs/propdocs/pkg/identity"
)

var (
	// ErrAlreadySubscribed is returned when a trial would collide with an
	// existing subscription.
	ErrAlreadySubscribed = errors.New("subject already has a subscription")

	// ErrRoleDoesNotSupportTrial is returned when the role's policy has no
	// trial path.
	ErrRoleDoesNotSupportTrial = errors.New("role does not support trials")

	// ErrInvalidDuration is returned when the requested trial length falls
	// outside the allowed range.
	ErrInvalidDuration = errors.New("invalid trial duration")
)

// Store is the persistence interface the gate needs. GetSubscription returns
// nil (not an error) when no row exists. UpsertTrial must be atomic on
// (subject kind, subject ref, role) so two concurrent trial starts cannot
// both create a row.
type Store interface {
	GetSubscription(ctx context.Context, subject Subject, role identity.Role) (*Subscription, error)
	UpsertTrial(ctx context.Context, sub *Subscription) error
}

// Clock abstracts wall-clock time so trial expiry can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// TrialLimits bounds trial lengths in days. Self-service starts get the
// narrow range; admin grants get the wide one.
type TrialLimits struct {
	SelfServiceMinDays int
	SelfServiceMaxDays int
	AdminMinDays       int
	AdminMaxDays       int
}

// DefaultTrialLimits returns the standard bounds.
func DefaultTrialLimits() TrialLimits {
	return TrialLimits{
		SelfServiceMinDays: 1,
		SelfServiceMaxDays: 14,
		AdminMinDays:       1,
		AdminMaxDays:       180,
	}
}

// Gate evaluates subscription entitlement and manages trial starts.
type Gate struct {
	store    Store
	policies map[identity.Role]RolePolicy
	clock    Clock
	limits   TrialLimits
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock overrides the gate's clock.
func WithClock(c Clock) GateOption {
	return func(g *Gate) { g.clock = c }
}

// WithTrialLimits overrides the trial duration bounds.
func WithTrialLimits(l TrialLimits) GateOption {
	return func(g *Gate) { g.limits = l }
}

// WithPolicies overrides the role policy table.
func WithPolicies(p map[identity.Role]RolePolicy) GateOption {
	return func(g *Gate) { g.policies = p }
}

// NewGate creates a gate over the given store with default policies,
// limits and the system clock.
func NewGate(store Store, opts ...GateOption) *Gate {
	g := &Gate{
		store:    store,
		policies: DefaultRolePolicies(),
		clock:    systemClock{},
		limits:   DefaultTrialLimits(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsEntitled reports whether the principal currently has the standing the
// role requires. Roles without a paid requirement are always entitled. For
// paying roles the organization's subscription is consulted first and takes
// precedence; the principal's own subscription is only a fallback.
//
// A false answer is a normal outcome, never an error; only store failures
// propagate.
func (g *Gate) IsEntitled(ctx context.Context, p *identity.Principal) (bool, error) {
	if p == nil {
		return false, nil
	}
	policy := g.policies[p.Role]
	if !policy.RequiresPaid {
		return true, nil
	}

	now := g.clock.Now()

	if p.Organization != nil {
		sub, err := g.store.GetSubscription(ctx, OrganizationSubject(*p.Organization), orgRole(p.Role))
		if err != nil {
			return false, fmt.Errorf("failed to load organization subscription: %w", err)
		}
		if sub.EntitledAt(now) {
			return true, nil
		}
	}

	sub, err := g.store.GetSubscription(ctx, UserSubject(p.ID), p.Role)
	if err != nil {
		return false, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub.EntitledAt(now), nil
}

// orgRole maps a staff role onto the role its organization subscribes
// under, so staff inherit the association's standing.
func orgRole(r identity.Role) identity.Role {
	if r == identity.RoleAOAOStaff {
		return identity.RoleAOAO
	}
	if r == identity.RoleContractorStaff {
		return identity.RoleContractor
	}
	return r
}

// StartSelfServiceTrial starts a trial for the principal's own role. It can
// be used only once per subject and role: any prior trial, expired or not,
// and any currently entitled subscription block a new one.
func (g *Gate) StartSelfServiceTrial(ctx context.Context, p *identity.Principal, days int) (*Subscription, error) {
	if p == nil {
		return nil, ErrRoleDoesNotSupportTrial
	}
	policy := g.policies[p.Role]
	if !policy.SupportsTrial {
		return nil, ErrRoleDoesNotSupportTrial
	}
	if days == 0 {
		days = g.limits.SelfServiceMaxDays
	}
	if days < g.limits.SelfServiceMinDays || days > g.limits.SelfServiceMaxDays {
		return nil, fmt.Errorf("%w: %d days is outside %d-%d",
			ErrInvalidDuration, days, g.limits.SelfServiceMinDays, g.limits.SelfServiceMaxDays)
	}

	subject := UserSubject(p.ID)
	existing, err := g.store.GetSubscription(ctx, subject, p.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	now := g.clock.Now()
	if existing != nil && (existing.IsTrial || existing.EntitledAt(now)) {
		return nil, ErrAlreadySubscribed
	}

	return g.createTrial(ctx, subject, p.Role, days, now)
}

// StartAdminTrial starts or re-grants a trial for any subject and role. A
// prior trial does not block it; an active paid non-trial subscription does,
// so a paying customer's billing state is never silently overwritten.
func (g *Gate) StartAdminTrial(ctx context.Context, subject Subject, role identity.Role, days int) (*Subscription, error) {
	policy := g.policies[role]
	if !policy.SupportsTrial {
		return nil, ErrRoleDoesNotSupportTrial
	}
	if days == 0 {
		days = g.limits.AdminMaxDays
	}
	if days < g.limits.AdminMinDays || days > g.limits.AdminMaxDays {
		return nil, fmt.Errorf("%w: %d days is outside %d-%d",
			ErrInvalidDuration, days, g.limits.AdminMinDays, g.limits.AdminMaxDays)
	}

	existing, err := g.store.GetSubscription(ctx, subject, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	now := g.clock.Now()
	if existing != nil && !existing.IsTrial && existing.EntitledAt(now) {
		return nil, ErrAlreadySubscribed
	}

	return g.createTrial(ctx, subject, role, days, now)
}

func (g *Gate) createTrial(ctx context.Context, subject Subject, role identity.Role, days int, now time.Time) (*Subscription, error) {
	endsAt := now.Add(time.Duration(days) * 24 * time.Hour)
	sub := &Subscription{
		ID:             uuid.NewString(),
		Subject:        subject,
		Role:           role,
		Tier:           TierPaid,
		Status:         StatusTrialing,
		IsTrial:        true,
		TrialStartedAt: &now,
		TrialEndsAt:    &endsAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := g.store.UpsertTrial(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store trial: %w", err)
	}
	return sub, nil
}
