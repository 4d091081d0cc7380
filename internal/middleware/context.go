package middleware

import (
	"context"

	"sweetshop/internal/auth"
	"sweetshop/internal/model"
)

type principalKey struct{}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	User   *model.User
	Claims *auth.Claims
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by Authenticate, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil && p.User != nil
}
