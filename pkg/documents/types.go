package documents

import (
	"time"
)

// Document is the read model the decision engine needs. Creation and
// mutation of documents happens elsewhere; this core only reads visibility,
// ownership and the resource associations used for permission checks.
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	IsPublic      bool      `json:"is_public"`
	OwnerID       string    `json:"owner_id"`
	BuildingID    string    `json:"building_id,omitempty"`
	UnitIDs       []string  `json:"unit_ids,omitempty"`
	ContractorIDs []string  `json:"contractor_ids,omitempty"`
	S3Key         string    `json:"s3_key,omitempty"`
	ContentType   string    `json:"content_type,omitempty"`
	SizeBytes     int64     `json:"size_bytes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PaymentProof is a caller-supplied claim that a document was purchased.
// It is only a claim until the payment verifier confirms it.
type PaymentProof struct {
	CheckoutSessionID string `json:"checkout_session_id"`
}

// Method says how an allowed request was permitted.
type Method string

const (
	MethodFree       Method = "free"
	MethodOwner      Method = "owner"
	MethodPermission Method = "permission"
	MethodPaid       Method = "paid"
)

// DenyReason says why a request was denied.
type DenyReason string

const (
	DenyAuthenticationRequired        DenyReason = "authentication_required"
	DenyForbidden                     DenyReason = "forbidden"
	DenyPrivateDocumentNotPurchasable DenyReason = "private_document_not_purchasable"
	DenyRateLimited                   DenyReason = "rate_limited"
)

// Decision is the outcome of one document access check.
type Decision struct {
	Allowed bool
	Method  Method
	Reason  DenyReason
	// RetryAfter is set only for rate-limited denials.
	RetryAfter time.Duration
}

func allow(m Method) Decision {
	return Decision{Allowed: true, Method: m}
}

func deny(r DenyReason) Decision {
	return Decision{Reason: r}
}
