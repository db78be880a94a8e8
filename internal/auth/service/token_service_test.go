package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateToken(t *testing.T) {
	service := NewTokenService()

	plain, hash, err := service.GenerateToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(plain)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	sum := sha256.Sum256([]byte(plain))
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)

	other, otherHash, err := service.GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
	assert.NotEqual(t, hash, otherHash)
}

func TestTokenService_HashToken(t *testing.T) {
	service := NewTokenService()

	assert.Equal(t, service.HashToken("eyJhbGciOi.payload.sig"), service.HashToken("eyJhbGciOi.payload.sig"))
	assert.NotEqual(t, service.HashToken("a"), service.HashToken("b"))
	assert.Len(t, service.HashToken(""), 64)
}
