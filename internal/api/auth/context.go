package auth

import (
	"context"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the verified caller
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller attached by RequireToken
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// CheckOwner compares the verified caller with the owner email taken from the
// request. Both sides are compared in normalized form, the same form the
// stores hold.
func CheckOwner(ctx context.Context, owner string) error {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.Email == "" {
		return ErrUnauthenticated
	}
	if domain.NormalizeEmail(id.Email) != domain.NormalizeEmail(owner) {
		return ErrForbidden
	}
	return nil
}
