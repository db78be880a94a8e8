package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/zekret/vault/internal/errors"
)

// Derivation labels. Bumping the version suffix yields unrelated keys.
const (
	AccessTokenSigningInfo = "access-token-signing-v1"
	AuditLogSigningInfo    = "audit-log-signing-v1"
)

// DeriveKey expands secret into a 32-byte subkey bound to info with HKDF-SHA256.
// The caller owns the returned buffer and should zero it when done.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))

	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
