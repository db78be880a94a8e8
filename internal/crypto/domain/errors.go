package domain

import (
	"github.com/zekret/vault/internal/errors"
)

// Key management and cipher errors. The HTTP layer answers all of them with a generic
// internal error.
var (
	// ErrUnsupportedAlgorithm indicates an algorithm other than AESGCM or ChaCha20.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidKeySize indicates key material that is not KeySize bytes long.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrKeyUnavailable indicates a master key could not be loaded or is missing from the chain.
	ErrKeyUnavailable = errors.New("key unavailable")

	// ErrUnknownKeyVersion indicates a data key version that was never issued for the namespace.
	ErrUnknownKeyVersion = errors.New("unknown key version")

	// ErrAuthenticationFailure indicates a ciphertext, nonce, tag or associated data mismatch.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrNamespaceNotFound indicates key lookups for a namespace row that does not exist.
	ErrNamespaceNotFound = errors.Wrap(errors.ErrNotFound, "namespace not found")
)

// Master key configuration errors. Each wraps ErrKeyUnavailable.
var (
	ErrMasterKeysNotSet        = errors.Wrap(ErrKeyUnavailable, "MASTER_KEYS is not set")
	ErrActiveMasterKeyIDNotSet = errors.Wrap(ErrKeyUnavailable, "ACTIVE_MASTER_KEY_ID is not set")
	ErrInvalidMasterKeysFormat = errors.Wrap(ErrKeyUnavailable, "invalid MASTER_KEYS format")
	ErrInvalidMasterKeyBase64  = errors.Wrap(ErrKeyUnavailable, "invalid master key base64")
	ErrActiveMasterKeyNotFound = errors.Wrap(ErrKeyUnavailable, "active master key not found")
	ErrKMSKeyURINotSet         = errors.Wrap(ErrKeyUnavailable, "KMS_KEY_URI is not set")
)
