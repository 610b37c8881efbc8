package subscriptions

import (
	"time"

	"github.com/propdocs/propdocs/pkg/identity"
)

// SubjectKind distinguishes who holds a subscription.
type SubjectKind string

const (
	SubjectUser         SubjectKind = "user"
	SubjectOrganization SubjectKind = "organization"
)

// Subject identifies the holder of a subscription, either an individual
// user or an organization.
type Subject struct {
	Kind SubjectKind `json:"kind"`
	Ref  string      `json:"ref"`
}

// UserSubject returns a subject for an individual user.
func UserSubject(userID string) Subject {
	return Subject{Kind: SubjectUser, Ref: userID}
}

// OrganizationSubject returns a subject for an organization.
func OrganizationSubject(org identity.OrganizationRef) Subject {
	return Subject{Kind: SubjectOrganization, Ref: org.ID}
}

// Tier is the billing tier of a subscription.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// Status is the provider-reported state of a subscription.
type Status string

const (
	StatusActive     Status = "active"
	StatusTrialing   Status = "trialing"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusIncomplete Status = "incomplete"
)

// Subscription is one subscription row. The same shape serves user-held and
// organization-held subscriptions, disambiguated by the subject kind. At most
// one row exists per (subject, role).
type Subscription struct {
	ID             string        `json:"id"`
	Subject        Subject       `json:"subject"`
	Role           identity.Role `json:"role"`
	Tier           Tier          `json:"tier"`
	Status         Status        `json:"status"`
	IsTrial        bool          `json:"is_trial"`
	TrialStartedAt *time.Time    `json:"trial_started_at,omitempty"`
	TrialEndsAt    *time.Time    `json:"trial_ends_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// EntitledAt reports whether the subscription satisfies a paid requirement
// at the given instant. Trials expire purely as a function of wall-clock
// time against trial_ends_at; no background transition is needed.
func (s *Subscription) EntitledAt(now time.Time) bool {
	if s == nil || s.Tier != TierPaid {
		return false
	}
	if s.Status == StatusActive {
		return true
	}
	return s.IsTrial && s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
}

// TrialExpiredAt reports whether this row is a trial whose end has passed.
func (s *Subscription) TrialExpiredAt(now time.Time) bool {
	return s != nil && s.IsTrial && s.TrialEndsAt != nil && !now.Before(*s.TrialEndsAt)
}
