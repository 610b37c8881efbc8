package documents

import (
	"context"
	"fmt"

	"github.com/propdocs/propdocs/pkg/identity"
	"github.com/propdocs/propdocs/pkg/observability"
	"github.com/propdocs/propdocs/pkg/permissions"
	"github.com/propdocs/propdocs/pkg/ratelimit"
)

// CapabilityChecker answers whether a principal's role allows an operation
// class at all.
type CapabilityChecker interface {
	HasCapability(p *identity.Principal, capability permissions.Capability) bool
}

// AccessChecker answers whether a principal can reach a specific resource.
type AccessChecker interface {
	CanAccessBuilding(ctx context.Context, p *identity.Principal, buildingID string) (bool, error)
	CanAccessUnit(ctx context.Context, p *identity.Principal, unitID string) (bool, error)
}

// EntitlementChecker answers whether a principal has the billing standing
// their role requires.
type EntitlementChecker interface {
	IsEntitled(ctx context.Context, p *identity.Principal) (bool, error)
}

// RateLimiter gates anonymous public downloads.
type RateLimiter interface {
	CheckAndRecord(identifier string) ratelimit.Result
}

// PaymentVerifier confirms a payment proof against the provider.
type PaymentVerifier interface {
	Verify(ctx context.Context, proof PaymentProof, documentID string) (bool, error)
}

// Decider produces one access decision per document request by combining
// visibility, payment verification, rate limiting, ownership, capability and
// resource access.
type Decider struct {
	capabilities CapabilityChecker
	access       AccessChecker
	entitlement  EntitlementChecker
	limiter      RateLimiter
	verifier     PaymentVerifier

	logger  *observability.Logger
	metrics *observability.Metrics
}

// DeciderOption configures a Decider.
type DeciderOption func(*Decider)

// WithLogger sets the decider's logger.
func WithLogger(l *observability.Logger) DeciderOption {
	return func(d *Decider) { d.logger = l }
}

// WithMetrics makes the decider record decision outcomes.
func WithMetrics(m *observability.Metrics) DeciderOption {
	return func(d *Decider) { d.metrics = m }
}

// NewDecider wires the decision engine.
func NewDecider(
	capabilities CapabilityChecker,
	access AccessChecker,
	entitlement EntitlementChecker,
	limiter RateLimiter,
	verifier PaymentVerifier,
	opts ...DeciderOption,
) *Decider {
	d := &Decider{
		capabilities: capabilities,
		access:       access,
		entitlement:  entitlement,
		limiter:      limiter,
		verifier:     verifier,
		logger:       observability.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decide evaluates one document request. The steps run in a fixed order
// that encodes priority:
//
//  1. Public documents: a verified payment allows with method paid and
//     bypasses the rate limiter, so a paying customer is never throttled.
//     Otherwise the request is a free download subject to the public
//     rate limit.
//  2. Private documents: payment proof is rejected outright, even from the
//     owner, because private documents are not purchasable. Then
//     authentication, ownership, and finally the capability path
//     (capability plus entitlement plus resource access). Ownership runs
//     before the capability path so an owner is never blocked by a
//     missing organizational grant.
//
// A failed or timed-out payment verification counts as unverified and falls
// through; it never produces a silent allow and never fails the request.
func (d *Decider) Decide(ctx context.Context, doc *Document, requester *identity.Principal, proof *PaymentProof, rateLimitIdentifier string) (Decision, error) {
	decision, err := d.decide(ctx, doc, requester, proof, rateLimitIdentifier)
	if err == nil {
		d.record(decision)
	}
	return decision, err
}

func (d *Decider) decide(ctx context.Context, doc *Document, requester *identity.Principal, proof *PaymentProof, rateLimitIdentifier string) (Decision, error) {
	if doc.IsPublic {
		if proof != nil && d.verifyPayment(ctx, *proof, doc.ID) {
			return allow(MethodPaid), nil
		}

		res := d.limiter.CheckAndRecord(rateLimitIdentifier)
		if !res.Allowed {
			if d.metrics != nil {
				d.metrics.RateLimitDenialsTotal.WithLabelValues("public_documents").Inc()
			}
			return Decision{Reason: DenyRateLimited, RetryAfter: res.RetryAfter}, nil
		}
		return allow(MethodFree), nil
	}

	// Private documents can never be purchased. This runs before the
	// identity checks so misuse is surfaced even to the owner.
	if proof != nil {
		return deny(DenyPrivateDocumentNotPurchasable), nil
	}

	if requester == nil {
		return deny(DenyAuthenticationRequired), nil
	}

	if requester.ID == doc.OwnerID {
		return allow(MethodOwner), nil
	}

	if !d.capabilities.HasCapability(requester, permissions.CapDocumentsRead) {
		return deny(DenyForbidden), nil
	}

	entitled, err := d.entitlement.IsEntitled(ctx, requester)
	if err != nil {
		return Decision{}, fmt.Errorf("entitlement check failed: %w", err)
	}
	if !entitled {
		return deny(DenyForbidden), nil
	}

	reachable, err := d.canReachDocument(ctx, requester, doc)
	if err != nil {
		return Decision{}, err
	}
	if !reachable {
		return deny(DenyForbidden), nil
	}

	return allow(MethodPermission), nil
}

// canReachDocument checks the requester against the document's resource
// associations: its building, any of its units, or a contractor link to the
// requester's own organization.
func (d *Decider) canReachDocument(ctx context.Context, p *identity.Principal, doc *Document) (bool, error) {
	if doc.BuildingID != "" {
		ok, err := d.access.CanAccessBuilding(ctx, p, doc.BuildingID)
		if err != nil {
			return false, fmt.Errorf("building access check failed: %w", err)
		}
		if ok {
			return true, nil
		}
	}

	for _, unitID := range doc.UnitIDs {
		ok, err := d.access.CanAccessUnit(ctx, p, unitID)
		if err != nil {
			return false, fmt.Errorf("unit access check failed: %w", err)
		}
		if ok {
			return true, nil
		}
	}

	if p.Organization != nil && p.Organization.Kind == identity.OrgKindContractor {
		for _, contractorID := range doc.ContractorIDs {
			if contractorID == p.Organization.ID {
				return true, nil
			}
		}
	}

	return false, nil
}

func (d *Decider) verifyPayment(ctx context.Context, proof PaymentProof, documentID string) bool {
	verified, err := d.verifier.Verify(ctx, proof, documentID)
	if err != nil {
		// Unverifiable is not verified. The request falls through to the
		// free path rather than failing.
		d.logger.WithError(err).WithField("document_id", documentID).
			Warn("payment verification failed, treating as unverified")
		if d.metrics != nil {
			d.metrics.PaymentVerificationsTotal.WithLabelValues("error").Inc()
		}
		return false
	}
	if d.metrics != nil {
		result := "rejected"
		if verified {
			result = "verified"
		}
		d.metrics.PaymentVerificationsTotal.WithLabelValues(result).Inc()
	}
	return verified
}

func (d *Decider) record(decision Decision) {
	if d.metrics == nil {
		return
	}
	if decision.Allowed {
		d.metrics.DocumentDecisionsTotal.WithLabelValues("allow", string(decision.Method)).Inc()
	} else {
		d.metrics.DocumentDecisionsTotal.WithLabelValues("deny", string(decision.Reason)).Inc()
	}
}
