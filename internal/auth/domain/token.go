package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Token is the server-side record of an issued token. For access tokens ID equals the
// jti claim and TokenHash is the SHA-256 of the signed JWT; for refresh tokens TokenHash
// is the SHA-256 of the opaque value.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      TokenKind
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsActive reports whether the token is neither revoked nor expired at now.
func (t *Token) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// LoginInput carries the credentials of a login attempt. Login is an e-mail or a username.
type LoginInput struct {
	Login    string
	Password string
}

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
