package domain

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Email    string
	// TokenID is the jti of the access token the request was authenticated with.
	TokenID uuid.UUID
}

type identityKey struct{}

// WithIdentity stores the authenticated caller in the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the authenticated caller, or (nil, false) for anonymous requests.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
