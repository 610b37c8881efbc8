package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/propdocs/propdocs/pkg/observability"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeVerifier checks payment proofs against Stripe checkout sessions.
// A proof verifies when the session is complete, paid, and — when the
// session metadata names document IDs — lists the requested document.
type StripeVerifier struct {
	secretKey string
	baseURL   string
	client    *http.Client
	logger    *observability.Logger
}

// StripeOption configures a StripeVerifier.
type StripeOption func(*StripeVerifier)

// WithStripeBaseURL overrides the API endpoint. Used in tests.
func WithStripeBaseURL(baseURL string) StripeOption {
	return func(v *StripeVerifier) { v.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithStripeHTTPClient overrides the HTTP client.
func WithStripeHTTPClient(client *http.Client) StripeOption {
	return func(v *StripeVerifier) { v.client = client }
}

// WithStripeLogger sets the verifier's logger.
func WithStripeLogger(l *observability.Logger) StripeOption {
	return func(v *StripeVerifier) { v.logger = l }
}

// NewStripeVerifier creates a verifier. An empty secret key yields a
// verifier that rejects every proof, matching an unconfigured provider.
func NewStripeVerifier(secretKey string, opts ...StripeOption) *StripeVerifier {
	v := &StripeVerifier{
		secretKey: secretKey,
		baseURL:   defaultStripeBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    observability.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type checkoutSession struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Status        string            `json:"status"`
	Metadata      map[string]string `json:"metadata"`
}

// Verify retrieves the checkout session named by the proof and checks it
// covers the document. Provider failures return an error so the caller can
// treat the proof as unverified.
func (v *StripeVerifier) Verify(ctx context.Context, proof PaymentProof, documentID string) (bool, error) {
	if v.secretKey == "" {
		v.logger.Warn("stripe not configured, payment verification disabled")
		return false, nil
	}
	if proof.CheckoutSessionID == "" {
		return false, nil
	}

	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", v.baseURL, proof.CheckoutSessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.secretKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}

	var session checkoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return false, fmt.Errorf("failed to decode stripe session: %w", err)
	}

	if session.PaymentStatus != "paid" {
		v.logger.WithField("session_id", session.ID).
			Warnf("stripe session not paid: %s", session.PaymentStatus)
		return false, nil
	}
	if session.Status != "complete" {
		v.logger.WithField("session_id", session.ID).
			Warnf("stripe session not complete: %s", session.Status)
		return false, nil
	}

	// Sessions may carry a comma-separated document_ids list in metadata.
	// When present, the requested document must be in it; when absent, a
	// paid and complete session is accepted as-is.
	if docIDs := session.Metadata["document_ids"]; docIDs != "" {
		for _, id := range strings.Split(docIDs, ",") {
			if strings.TrimSpace(id) == documentID {
				return true, nil
			}
		}
		v.logger.WithFields(map[string]interface{}{
			"session_id":  session.ID,
			"document_id": documentID,
		}).Warn("document not covered by checkout session")
		return false, nil
	}

	return true, nil
}
