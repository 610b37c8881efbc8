package identity

import "context"

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores an authenticated principal on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the authenticated principal, or nil for anonymous
// requests.
func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}
