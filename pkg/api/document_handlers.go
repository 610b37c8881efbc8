package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/propdocs/propdocs/pkg/async"
	"github.com/propdocs/propdocs/pkg/audit"
	"github.com/propdocs/propdocs/pkg/documents"
	"github.com/propdocs/propdocs/pkg/httputil"
	"github.com/propdocs/propdocs/pkg/identity"
	"github.com/propdocs/propdocs/pkg/observability"
)

// downloadResponse is returned for an allowed download.
type downloadResponse struct {
	DocumentID  string `json:"document_id"`
	Method      string `json:"method"`
	DownloadURL string `json:"download_url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

// downloadDocument runs the access decision for a document and, when
// allowed, answers with a presigned download URL.
//
// GET /api/v1/documents/{id}/download?checkout_session=cs_...
func (s *Server) downloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	doc, err := s.documents.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, documents.ErrDocumentNotFound) {
			httputil.WriteNotFoundError(w, "document not found")
			return
		}
		s.logger.WithError(err).WithField("document_id", id).Error("loading document")
		httputil.WriteInternalError(w, err)
		return
	}

	requester := identity.FromContext(r.Context())

	var proof *documents.PaymentProof
	if session := httputil.ParseQueryString(r, "checkout_session", ""); session != "" {
		proof = &documents.PaymentProof{CheckoutSessionID: session}
	}

	decision, err := s.decider.Decide(r.Context(), doc, requester, proof, rateLimitIdentifier(r, requester))
	if err != nil {
		s.logger.WithError(err).WithField("document_id", id).Error("deciding document access")
		httputil.WriteInternalError(w, err)
		return
	}
	s.auditDecision(r, doc, requester, decision)
	if !decision.Allowed {
		writeDenial(w, decision)
		return
	}

	resp := downloadResponse{
		DocumentID:  doc.ID,
		Method:      string(decision.Method),
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
	}
	if doc.S3Key != "" {
		url, err := s.signer.PresignDownload(r.Context(), doc.S3Key)
		if err != nil {
			s.logger.WithError(err).WithField("document_id", id).Error("presigning download")
			httputil.WriteInternalError(w, err)
			return
		}
		resp.DownloadURL = url
	}
	httputil.WriteSuccess(w, resp)
}

// auditDecision records the outcome off the request path. A failed audit
// write is logged, never surfaced to the caller.
func (s *Server) auditDecision(r *http.Request, doc *documents.Document, requester *identity.Principal, decision documents.Decision) {
	event := audit.NewEvent(audit.EventTypeDocumentDecision, audit.EventStatusDenied).
		WithResource("document", doc.ID).
		WithMetadata("reason", string(decision.Reason))
	if decision.Allowed {
		event.Status = audit.EventStatusSuccess
		event.Metadata = map[string]interface{}{"method": string(decision.Method)}
	}
	if requester != nil {
		event.WithActor(requester.ID, string(requester.Role))
	}
	event.IPAddress = httputil.ClientIP(r)

	s.auditRecord(r.Context(), "document decision audit", event)
}

func (s *Server) auditRecord(ctx context.Context, task string, event *audit.Event) {
	event.RequestID = observability.GetRequestID(ctx)
	auditor := s.auditor
	async.SafeGo(ctx, s.logger, 5*time.Second, task, func(ctx context.Context) error {
		return auditor.Log(ctx, event)
	})
}

// writeDenial maps a deny decision onto the HTTP surface: each reason keeps
// a distinct code so clients can branch without parsing messages.
func writeDenial(w http.ResponseWriter, decision documents.Decision) {
	switch decision.Reason {
	case documents.DenyAuthenticationRequired:
		httputil.WriteErrorCode(w, http.StatusUnauthorized,
			"authentication required to access this document", string(decision.Reason))
	case documents.DenyPrivateDocumentNotPurchasable:
		httputil.WriteErrorCode(w, http.StatusForbidden,
			"private documents cannot be purchased", string(decision.Reason))
	case documents.DenyRateLimited:
		httputil.WriteTooManyRequests(w, "rate limit exceeded for public documents", decision.RetryAfter)
	default:
		httputil.WriteErrorCode(w, http.StatusForbidden,
			"you do not have access to this document", string(documents.DenyForbidden))
	}
}

// rateLimitIdentifier keys the public-document limiter: authenticated
// callers are limited per account, anonymous ones per client IP.
func rateLimitIdentifier(r *http.Request, p *identity.Principal) string {
	if p != nil {
		return "user:" + p.ID
	}
	return "ip:" + httputil.ClientIP(r)
}
