// Package service implements the cipher engine and data key wrapping of the vault.
package service

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

// AEAD is an authenticated cipher bound to one key.
type AEAD interface {
	// Encrypt seals plaintext under a fresh random nonce. The returned ciphertext carries
	// the authentication tag as its last Overhead bytes.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext (tag included) sealed with nonce and aad.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// Overhead is the tag length in bytes.
	Overhead() int
}

// AEADManager creates AEAD instances for an algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// CipherEngine seals and opens payloads into detached-tag boxes.
type CipherEngine interface {
	Seal(key []byte, alg cryptoDomain.Algorithm, plaintext, ad []byte) (cryptoDomain.SealedBox, error)
	Open(key []byte, alg cryptoDomain.Algorithm, box cryptoDomain.SealedBox, ad []byte) ([]byte, error)
}

// KeyManager generates data keys and moves them in and out of their wrapped form.
type KeyManager interface {
	// CreateDataKey generates a data key for namespaceID at version, wrapped under masterKey.
	// The returned key carries its plaintext in Key.
	CreateDataKey(
		masterKey *cryptoDomain.MasterKey,
		alg cryptoDomain.Algorithm,
		namespaceID uuid.UUID,
		version int,
	) (cryptoDomain.DataKey, error)

	// UnwrapDataKey returns the plaintext of a wrapped data key.
	UnwrapDataKey(dk *cryptoDomain.DataKey, masterKey *cryptoDomain.MasterKey) ([]byte, error)

	// WrapDataKey wraps dk.Key under masterKey, replacing EncryptedKey, Nonce and MasterKeyID.
	WrapDataKey(dk *cryptoDomain.DataKey, masterKey *cryptoDomain.MasterKey) error
}

// KMSService opens keepers for the configured KMS.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
