package api

import (
	"net/http"
	"strings"

	"github.com/propdocs/propdocs/pkg/httputil"
	"github.com/propdocs/propdocs/pkg/identity"
	"github.com/propdocs/propdocs/pkg/observability"
)

// AuthMiddleware authenticates requests from a bearer token and loads the
// full principal from the identity store. Handlers read the principal from
// the request context via identity.FromContext.
type AuthMiddleware struct {
	tokens *identity.TokenManager
	store  identity.Store
	logger *observability.Logger
}

// NewAuthMiddleware creates an authentication middleware.
func NewAuthMiddleware(tokens *identity.TokenManager, store identity.Store, logger *observability.Logger) *AuthMiddleware {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &AuthMiddleware{tokens: tokens, store: store, logger: logger}
}

// Required rejects requests that do not carry a valid token.
func (m *AuthMiddleware) Required(next http.Handler) http.Handler {
	return m.handler(next, false)
}

// Optional lets unauthenticated requests through with no principal in
// context. A malformed or expired token is still rejected: a caller that
// presents credentials must present valid ones.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return m.handler(next, true)
}

func (m *AuthMiddleware) handler(next http.Handler, optional bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		tokenPrincipal, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		// The token only proves identity; role and organization come from
		// the store so revocations and role changes take effect immediately.
		principal, err := m.store.GetPrincipal(r.Context(), tokenPrincipal.ID)
		if err != nil {
			if err == identity.ErrPrincipalNotFound {
				httputil.WriteUnauthorized(w, "unknown principal")
				return
			}
			m.logger.WithError(err).Error("loading principal")
			httputil.WriteInternalError(w, err)
			return
		}
		if !principal.IsActive {
			httputil.WriteUnauthorized(w, "account disabled")
			return
		}

		ctx := identity.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
