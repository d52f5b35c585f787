package shared

import "context"

// Principal identifies the account a request acts on behalf of.
type Principal struct {
	OwnerID string
	Email   string
	TokenID string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// OwnerFromContext returns the owner id of the principal, or "" when unauthenticated.
func OwnerFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.OwnerID
	}
	return ""
}
