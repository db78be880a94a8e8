// Package usecase implements namespace key management: provisioning, lookup, rotation
// and master key rewrapping of data keys.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

// DataKeyRepository persists wrapped data keys and the active key version of namespaces.
type DataKeyRepository interface {
	Create(ctx context.Context, dk *cryptoDomain.DataKey) error
	Get(ctx context.Context, namespaceID uuid.UUID, version int) (*cryptoDomain.DataKey, error)
	ListByNamespace(ctx context.Context, namespaceID uuid.UUID) ([]*cryptoDomain.DataKey, error)

	// GetActiveVersion reads namespaces.active_key_version without locking.
	GetActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error)

	// LockActiveVersion reads namespaces.active_key_version with SELECT ... FOR UPDATE.
	// It must run inside a transaction.
	LockActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error)

	SetActiveVersion(ctx context.Context, namespaceID uuid.UUID, version int) error

	// ListNotMasterKeyID returns up to limit data keys wrapped under another master key.
	ListNotMasterKeyID(ctx context.Context, masterKeyID string, limit int) ([]*cryptoDomain.DataKey, error)

	// Update replaces the wrapped material of a data key.
	Update(ctx context.Context, dk *cryptoDomain.DataKey) error
}

// KeyUseCase manages namespace data keys.
//
// Keys returned by ActiveKey and Unwrap are private copies carrying plaintext in Key;
// callers must call Wipe when done.
type KeyUseCase interface {
	// Provision creates version 1 for a new namespace. It joins the caller's transaction.
	Provision(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error)

	// ActiveKey returns the key new records of the namespace are sealed with.
	ActiveKey(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error)

	// Unwrap returns a specific version. ErrUnknownKeyVersion if it was never issued.
	Unwrap(ctx context.Context, namespaceID uuid.UUID, version int) (*cryptoDomain.DataKey, error)

	// Rotate issues version N+1 and makes it active. Existing records keep opening
	// under the version they were sealed with.
	Rotate(ctx context.Context, namespaceID uuid.UUID) (int, error)

	// Rewrap moves up to batchSize data keys to the active master key and returns how
	// many were processed.
	Rewrap(ctx context.Context, batchSize int) (int, error)

	// Invalidate drops the cached ring of a namespace.
	Invalidate(namespaceID uuid.UUID)
}
