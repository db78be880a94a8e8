package dto

import (
	"time"

	authDomain "github.com/zekret/vault/internal/auth/domain"
)

// TokenPairResponse is returned by login and refresh. The refresh token is only ever
// shown here and must be stored securely by the client.
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"` //nolint:gosec // returned once per rotation
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// MapTokenPairToResponse converts a token pair to an API response.
func MapTokenPairToResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:      pair.AccessToken,
		TokenType:        "Bearer",
		ExpiresAt:        pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
