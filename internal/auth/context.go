package auth

import "context"

type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity attaches an authenticated identity to ctx.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity the middleware attached, or
// nil for an unauthenticated request.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityContextKey).(*Identity)
	return identity
}

// RequireIdentity returns the authenticated identity or ErrUnauthorized.
// Pure context lookup, no I/O.
func RequireIdentity(ctx context.Context) (*Identity, error) {
	identity := IdentityFromContext(ctx)
	if identity == nil {
		return nil, ErrUnauthorized
	}
	return identity, nil
}

// RequireAdmin returns the authenticated identity if it carries the
// administrator role: ErrUnauthorized when unauthenticated, ErrForbidden
// when authenticated without the role.
func RequireAdmin(ctx context.Context) (*Identity, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	return identity, nil
}
