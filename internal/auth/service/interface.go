// Package service provides the credential primitives of authentication: password hashing,
// opaque refresh tokens and signed access tokens.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// Hash returns an Argon2id PHC string.
	Hash(plain string) (string, error)

	// Compare reports whether plain matches hash. Malformed hashes never match.
	Compare(plain, hash string) bool
}

// TokenService generates opaque tokens and hashes tokens for storage lookups.
type TokenService interface {
	// GenerateToken returns a random 32-byte token, base64url encoded, and its hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken returns the hex encoded SHA-256 of a token.
	HashToken(plainToken string) string
}

// AccessTokenSubject is the user an access token is issued to.
type AccessTokenSubject struct {
	UserID   uuid.UUID
	Username string
	Email    string
}

// AccessTokenClaims are the claims of a signed access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UPN      string   `json:"upn"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// AccessTokenService signs and verifies JWT access tokens.
type AccessTokenService interface {
	// Sign issues an HS256 token whose kid header names the active master key.
	Sign(subject AccessTokenSubject, jti uuid.UUID, issuedAt, expiresAt time.Time) (string, error)

	// Parse verifies signature, issuer and expiry and returns the claims.
	Parse(token string) (*AccessTokenClaims, error)
}
