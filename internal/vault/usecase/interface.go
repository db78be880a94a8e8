// Package usecase implements namespace and credential operations: authorization, audit,
// validation, sealing and persistence.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
	authDomain "github.com/zekret/vault/internal/auth/domain"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
)

// NamespaceRepository persists namespaces.
type NamespaceRepository interface {
	Create(ctx context.Context, ns *vaultDomain.Namespace) error
	GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Namespace, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*vaultDomain.Namespace, error)
	Update(ctx context.Context, ns *vaultDomain.Namespace) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountCredentials(ctx context.Context, id uuid.UUID) (int64, error)
}

// CredentialRepository persists sealed credentials. Loads resolve OwnerID and
// NamespaceZrn from the owning namespace.
type CredentialRepository interface {
	Create(ctx context.Context, cred *vaultDomain.Credential) error
	GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Credential, error)

	// ListByNamespace returns credentials with only MetadataBox populated.
	ListByNamespace(ctx context.Context, namespaceID uuid.UUID, offset, limit int) ([]*vaultDomain.Credential, error)

	// ListByUser returns the credentials of every namespace owned by userID, with only
	// MetadataBox populated.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*vaultDomain.Credential, error)

	Update(ctx context.Context, cred *vaultDomain.Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNamespace(ctx context.Context, namespaceID uuid.UUID) (int64, error)
}

// Authorizer decides whether an identity may act on a resource of ownerID.
type Authorizer interface {
	Authorize(identity *authDomain.Identity, action authDomain.Action, ownerID uuid.UUID) error
}

// AuditRecorder stores one access decision.
type AuditRecorder interface {
	Record(ctx context.Context, entry auditUseCase.Entry) error
}

// NamespaceInput is the writable part of a namespace.
type NamespaceInput struct {
	Name        string
	Description string
}

// CredentialInput is a full credential payload. CredentialType accepts a catalog key
// or a credential type zrn.
type CredentialInput struct {
	Title          string
	CredentialType string
	NamespaceZrn   string
	Metadata       vaultDomain.CredentialMetadata
	Secret         vaultDomain.CredentialSecret
}

// CredentialView is a credential as returned to its owner. Secret is nil unless the
// credential was read on its own; the holder must Wipe it after use.
type CredentialView struct {
	*vaultDomain.Credential
	Type     vaultDomain.CredentialTypeSpec
	Metadata *vaultDomain.CredentialMetadata
	Secret   *vaultDomain.CredentialSecret
}

// NamespaceUseCase manages the caller's namespaces. The caller is read from the context.
type NamespaceUseCase interface {
	Create(ctx context.Context, input NamespaceInput) (*vaultDomain.Namespace, error)
	Get(ctx context.Context, zrn string) (*vaultDomain.Namespace, error)
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Namespace, error)
	Update(ctx context.Context, zrn string, input NamespaceInput) (*vaultDomain.Namespace, error)
	Delete(ctx context.Context, zrn string) error
	RotateKey(ctx context.Context, zrn string) (*vaultDomain.Namespace, error)
}

// CredentialUseCase manages the caller's credentials. The caller is read from the context.
type CredentialUseCase interface {
	Create(ctx context.Context, input CredentialInput) (*CredentialView, error)
	Get(ctx context.Context, zrn string) (*CredentialView, error)
	ListByNamespace(ctx context.Context, namespaceZrn string, offset, limit int) ([]*CredentialView, error)
	List(ctx context.Context, offset, limit int) ([]*CredentialView, error)
	Update(ctx context.Context, zrn string, input CredentialInput) (*CredentialView, error)
	Delete(ctx context.Context, zrn string) error
}
