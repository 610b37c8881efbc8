package api

import (
	"errors"
	"net/http"

	"github.com/propdocs/propdocs/pkg/audit"
	"github.com/propdocs/propdocs/pkg/httputil"
	"github.com/propdocs/propdocs/pkg/identity"
	"github.com/propdocs/propdocs/pkg/permissions"
	"github.com/propdocs/propdocs/pkg/subscriptions"
)

type selfServiceTrialRequest struct {
	// Days of trial to request. Zero means the maximum allowed.
	Days int `json:"days"`
}

type adminTrialRequest struct {
	SubjectKind string `json:"subject_kind"`
	SubjectRef  string `json:"subject_ref"`
	Role        string `json:"role"`
	Days        int    `json:"days"`
}

// startSelfServiceTrial starts a trial for the authenticated principal.
//
// POST /api/v1/subscriptions/trial
func (s *Server) startSelfServiceTrial(w http.ResponseWriter, r *http.Request) {
	principal := identity.FromContext(r.Context())

	var req selfServiceTrialRequest
	if r.ContentLength > 0 && !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	sub, err := s.gate.StartSelfServiceTrial(r.Context(), principal, req.Days)
	if err != nil {
		writeTrialError(w, err)
		return
	}

	s.auditRecord(r.Context(), "trial audit",
		audit.NewEvent(audit.EventTypeTrialSelfService, audit.EventStatusSuccess).
			WithActor(principal.ID, string(principal.Role)).
			WithResource("subscription", sub.ID).
			WithMetadata("trial_ends_at", sub.TrialEndsAt))
	httputil.WriteCreated(w, sub)
}

// startAdminTrial starts or re-grants a trial for an arbitrary subject.
// Restricted to principals holding the trials:grant capability.
//
// POST /api/v1/admin/trials
func (s *Server) startAdminTrial(w http.ResponseWriter, r *http.Request) {
	principal := identity.FromContext(r.Context())
	if !s.registry.HasCapability(principal, permissions.CapTrialsGrant) {
		httputil.WriteForbidden(w, "insufficient permissions to grant trials")
		return
	}

	var req adminTrialRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.SubjectRef, "subject_ref") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Role, "role") {
		return
	}

	var subject subscriptions.Subject
	switch subscriptions.SubjectKind(req.SubjectKind) {
	case subscriptions.SubjectUser, "":
		subject = subscriptions.UserSubject(req.SubjectRef)
	case subscriptions.SubjectOrganization:
		subject = subscriptions.Subject{Kind: subscriptions.SubjectOrganization, Ref: req.SubjectRef}
	default:
		httputil.WriteBadRequest(w, "subject_kind must be user or organization")
		return
	}

	sub, err := s.gate.StartAdminTrial(r.Context(), subject, identity.Role(req.Role), req.Days)
	if err != nil {
		writeTrialError(w, err)
		return
	}

	s.auditRecord(r.Context(), "trial audit",
		audit.NewEvent(audit.EventTypeTrialAdminGrant, audit.EventStatusSuccess).
			WithActor(principal.ID, string(principal.Role)).
			WithResource("subscription", sub.ID).
			WithMetadata("subject_ref", subject.Ref).
			WithMetadata("role", req.Role))
	httputil.WriteCreated(w, sub)
}

func writeTrialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subscriptions.ErrInvalidDuration):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, subscriptions.ErrRoleDoesNotSupportTrial):
		httputil.WriteErrorCode(w, http.StatusConflict, err.Error(), "role_does_not_support_trial")
	case errors.Is(err, subscriptions.ErrAlreadySubscribed):
		httputil.WriteErrorCode(w, http.StatusConflict, err.Error(), "already_subscribed")
	default:
		httputil.WriteInternalError(w, err)
	}
}
