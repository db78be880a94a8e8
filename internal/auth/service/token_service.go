package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/zekret/vault/internal/errors"
)

const opaqueTokenSize = 32

type tokenService struct{}

// GenerateToken creates a refresh token and the hash it is stored under.
func (t *tokenService) GenerateToken() (plainToken string, tokenHash string, err error) {
	raw := make([]byte, opaqueTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken = base64.RawURLEncoding.EncodeToString(raw)
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken hashes access and refresh tokens alike; only hashes reach the database.
func (t *tokenService) HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}

// NewTokenService creates a new TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}
