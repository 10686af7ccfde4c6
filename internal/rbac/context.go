package rbac

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// ActorID returns the principal id stored in ctx, or 0 for anonymous requests.
func ActorID(ctx context.Context) int64 {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.ID
	}
	return 0
}
