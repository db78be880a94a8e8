package domain

import (
	"github.com/zekret/vault/internal/errors"
)

// Vault errors.
var (
	ErrNamespaceNotFound      = errors.Wrap(errors.ErrNotFound, "namespace not found")
	ErrNamespaceAlreadyExists = errors.Wrap(errors.ErrConflict, "namespace name already in use")
	ErrNamespaceNotEmpty      = errors.Wrap(errors.ErrConflict, "namespace still holds credentials")

	ErrCredentialNotFound      = errors.Wrap(errors.ErrNotFound, "credential not found")
	ErrCredentialAlreadyExists = errors.Wrap(errors.ErrConflict, "credential zrn already in use")

	ErrUnknownCredentialType = errors.Wrap(errors.ErrInvalidInput, "unknown credential type")

	// ErrMalformedPayload indicates an opened box whose field encoding is corrupt.
	ErrMalformedPayload = errors.New("malformed sealed payload")
)
