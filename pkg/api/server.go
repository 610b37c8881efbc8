package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/propdocs/propdocs/pkg/access"
	"github.com/propdocs/propdocs/pkg/audit"
	"github.com/propdocs/propdocs/pkg/config"
	"github.com/propdocs/propdocs/pkg/documents"
	"github.com/propdocs/propdocs/pkg/httputil"
	"github.com/propdocs/propdocs/pkg/identity"
	"github.com/propdocs/propdocs/pkg/observability"
	"github.com/propdocs/propdocs/pkg/permissions"
	"github.com/propdocs/propdocs/pkg/subscriptions"
)

// DocumentStore loads document read models for the download handler.
type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (*documents.Document, error)
}

// DownloadURLSigner issues short-lived download URLs for allowed requests.
type DownloadURLSigner interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Server is the HTTP surface of the authorization engine.
type Server struct {
	router *mux.Router

	documents DocumentStore
	decider   *documents.Decider
	gate      *subscriptions.Gate
	resolver  *access.Resolver
	registry  CapabilityChecker
	signer    DownloadURLSigner

	auth    *AuthMiddleware
	auditor audit.Logger
	logger  *observability.Logger
	metrics *observability.Metrics
}

// CapabilityChecker answers role capability checks for admin-only routes.
type CapabilityChecker interface {
	HasCapability(p *identity.Principal, capability permissions.Capability) bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server's logger.
func WithServerLogger(l *observability.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithServerMetrics sets the server's metrics.
func WithServerMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithAuditLogger sets the audit sink for decisions and trial grants.
func WithAuditLogger(a audit.Logger) ServerOption {
	return func(s *Server) { s.auditor = a }
}

// NewServer creates the API server and wires up its routes.
func NewServer(
	docs DocumentStore,
	decider *documents.Decider,
	gate *subscriptions.Gate,
	resolver *access.Resolver,
	registry CapabilityChecker,
	signer DownloadURLSigner,
	auth *AuthMiddleware,
	opts ...ServerOption,
) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		documents: docs,
		decider:   decider,
		gate:      gate,
		resolver:  resolver,
		registry:  registry,
		signer:    signer,
		auth:      auth,
		auditor:   audit.NopLogger{},
		logger:    observability.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.health).Methods("GET")

	// Downloads accept anonymous callers: public documents are reachable
	// without a token, so auth here is optional.
	s.router.Handle("/api/v1/documents/{id}/download",
		s.auth.Optional(http.HandlerFunc(s.downloadDocument))).Methods("GET")

	s.router.Handle("/api/v1/subscriptions/trial",
		s.auth.Required(http.HandlerFunc(s.startSelfServiceTrial))).Methods("POST")
	s.router.Handle("/api/v1/admin/trials",
		s.auth.Required(http.HandlerFunc(s.startAdminTrial))).Methods("POST")

	s.router.Handle("/api/v1/access/buildings",
		s.auth.Required(http.HandlerFunc(s.listAccessibleBuildings))).Methods("GET")
	s.router.Handle("/api/v1/access/units",
		s.auth.Required(http.HandlerFunc(s.listAccessibleUnits))).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
	}
	if s.metrics != nil {
		chain = append(chain, observability.HTTPMetricsMiddleware(s.metrics))
	}
	return httputil.Chain(chain...)(s.router)
}

// NewHTTPServer builds an http.Server from the config's timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}
