package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
	cryptoUseCase "github.com/zekret/vault/internal/crypto/usecase"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
	appValidation "github.com/zekret/vault/internal/validation"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
)

// CredentialUseCaseConfig carries the dependencies of the credential use case.
type CredentialUseCaseConfig struct {
	TxManager      database.TxManager
	Policy         database.OperationPolicy
	NamespaceRepo  NamespaceRepository
	CredentialRepo CredentialRepository
	Keys           cryptoUseCase.KeyUseCase
	Cipher         cryptoService.CipherEngine
	Authorizer     Authorizer
	Audit          AuditRecorder
	// MaxFileSize caps file credential content in bytes; 0 disables the check.
	MaxFileSize int
}

type credentialUseCase struct {
	guard
	txManager      database.TxManager
	policy         database.OperationPolicy
	namespaceRepo  NamespaceRepository
	credentialRepo CredentialRepository
	keys           cryptoUseCase.KeyUseCase
	cipher         cryptoService.CipherEngine
	maxFileSize    int
}

// NewCredentialUseCase creates a CredentialUseCase.
func NewCredentialUseCase(cfg CredentialUseCaseConfig) CredentialUseCase {
	return &credentialUseCase{
		guard:          guard{authorizer: cfg.Authorizer, audit: cfg.Audit},
		txManager:      cfg.TxManager,
		policy:         cfg.Policy,
		namespaceRepo:  cfg.NamespaceRepo,
		credentialRepo: cfg.CredentialRepo,
		keys:           cfg.Keys,
		cipher:         cfg.Cipher,
		maxFileSize:    cfg.MaxFileSize,
	}
}

// validateCredentialInput resolves the credential type and checks title and fields.
// Fields the type does not carry are cleared first.
func (c *credentialUseCase) validateCredentialInput(input *CredentialInput) (vaultDomain.CredentialTypeSpec, error) {
	input.Title = strings.TrimSpace(input.Title)

	err := validation.ValidateStruct(input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 100).Error("title must be at most 100 characters"),
		),
		validation.Field(&input.CredentialType,
			validation.Required.Error("credential type is required"),
		),
	)
	if err != nil {
		return vaultDomain.CredentialTypeSpec{}, appValidation.WrapValidationError(err)
	}

	spec, err := vaultDomain.LookupCredentialType(input.CredentialType)
	if err != nil {
		return vaultDomain.CredentialTypeSpec{}, err
	}

	vaultDomain.Normalize(spec, &input.Metadata, &input.Secret)
	if err := vaultDomain.ValidateFields(spec, &input.Metadata, &input.Secret, c.maxFileSize); err != nil {
		return vaultDomain.CredentialTypeSpec{}, err
	}
	return spec, nil
}

func (c *credentialUseCase) getNamespace(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	var ns *vaultDomain.Namespace
	err := c.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		ns, err = c.namespaceRepo.GetByZrn(ctx, zrn)
		return err
	})
	return ns, err
}

func (c *credentialUseCase) getCredential(ctx context.Context, zrn string) (*vaultDomain.Credential, error) {
	var cred *vaultDomain.Credential
	err := c.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		cred, err = c.credentialRepo.GetByZrn(ctx, zrn)
		return err
	})
	return cred, err
}

// seal encrypts both boxes of cred under dk and stamps the key version.
func (c *credentialUseCase) seal(
	cred *vaultDomain.Credential,
	dk *cryptoDomain.DataKey,
	meta *vaultDomain.CredentialMetadata,
	secret *vaultDomain.CredentialSecret,
) error {
	metaPlain := vaultDomain.EncodeMetadata(meta)
	defer cryptoDomain.Zero(metaPlain)

	metaBox, err := c.cipher.Seal(
		dk.Key, dk.Algorithm, metaPlain,
		vaultDomain.AssociatedData(cred.ID, cred.Type, vaultDomain.BoxMetadata),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to seal credential metadata")
	}

	secretPlain := vaultDomain.EncodeSecret(secret)
	defer cryptoDomain.Zero(secretPlain)

	secretBox, err := c.cipher.Seal(
		dk.Key, dk.Algorithm, secretPlain,
		vaultDomain.AssociatedData(cred.ID, cred.Type, vaultDomain.BoxSecret),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to seal credential secret")
	}

	cred.MetadataBox = metaBox
	cred.SecretBox = secretBox
	cred.KeyVersion = dk.Version
	return nil
}

func (c *credentialUseCase) openMetadata(
	cred *vaultDomain.Credential,
	dk *cryptoDomain.DataKey,
) (*vaultDomain.CredentialMetadata, error) {
	plain, err := c.cipher.Open(
		dk.Key, dk.Algorithm, cred.MetadataBox,
		vaultDomain.AssociatedData(cred.ID, cred.Type, vaultDomain.BoxMetadata),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata of credential %s: %w", cred.Zrn, err)
	}
	defer cryptoDomain.Zero(plain)

	return vaultDomain.DecodeMetadata(plain)
}

func (c *credentialUseCase) openSecret(
	cred *vaultDomain.Credential,
	dk *cryptoDomain.DataKey,
) (*vaultDomain.CredentialSecret, error) {
	plain, err := c.cipher.Open(
		dk.Key, dk.Algorithm, cred.SecretBox,
		vaultDomain.AssociatedData(cred.ID, cred.Type, vaultDomain.BoxSecret),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret of credential %s: %w", cred.Zrn, err)
	}
	defer cryptoDomain.Zero(plain)

	return vaultDomain.DecodeSecret(plain)
}

// Create seals and stores a new credential in a namespace of the caller. The view
// returned carries metadata only.
func (c *credentialUseCase) Create(ctx context.Context, input CredentialInput) (*CredentialView, error) {
	identity, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.NamespaceZrn) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "namespaceZrn: namespace is required")
	}

	ns, err := c.getNamespace(ctx, input.NamespaceZrn)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cred := &vaultDomain.Credential{
		ID:           uuid.Must(uuid.NewV7()),
		Zrn:          vaultDomain.NewZrn(vaultDomain.ResourceCredential, now),
		NamespaceID:  ns.ID,
		NamespaceZrn: ns.Zrn,
		OwnerID:      ns.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	metadata := map[string]any{"namespace": ns.Zrn, "type": input.CredentialType}
	err = c.check(ctx, identity, kindCredential, authDomain.ActionCreate, cred.Zrn, ns.UserID, metadata)
	if err != nil {
		return nil, err
	}

	spec, err := c.validateCredentialInput(&input)
	if err != nil {
		return nil, err
	}
	cred.Type = spec.Key
	cred.Title = input.Title

	dk, err := c.keys.ActiveKey(ctx, ns.ID)
	if err != nil {
		return nil, err
	}
	defer dk.Wipe()

	if err := c.seal(cred, dk, &input.Metadata, &input.Secret); err != nil {
		return nil, err
	}

	err = c.policy.Run(ctx, func(ctx context.Context) error {
		return c.txManager.WithTx(ctx, func(ctx context.Context) error {
			return c.credentialRepo.Create(ctx, cred)
		})
	})
	if err != nil {
		return nil, err
	}

	meta := input.Metadata
	return &CredentialView{Credential: cred, Type: spec, Metadata: &meta}, nil
}

// load fetches a credential and authorizes action on it.
func (c *credentialUseCase) load(
	ctx context.Context,
	zrn string,
	action authDomain.Action,
) (*authDomain.Identity, *vaultDomain.Credential, error) {
	identity, err := c.identity(ctx)
	if err != nil {
		return nil, nil, err
	}

	cred, err := c.getCredential(ctx, zrn)
	if err != nil {
		return nil, nil, err
	}

	metadata := map[string]any{"namespace": cred.NamespaceZrn, "type": string(cred.Type)}
	if err := c.check(ctx, identity, kindCredential, action, cred.Zrn, cred.OwnerID, metadata); err != nil {
		return nil, nil, err
	}
	return identity, cred, nil
}

// Get returns a credential with every field decrypted.
func (c *credentialUseCase) Get(ctx context.Context, zrn string) (*CredentialView, error) {
	_, cred, err := c.load(ctx, zrn, authDomain.ActionRead)
	if err != nil {
		return nil, err
	}

	spec, err := vaultDomain.LookupCredentialType(string(cred.Type))
	if err != nil {
		return nil, err
	}

	dk, err := c.keys.Unwrap(ctx, cred.NamespaceID, cred.KeyVersion)
	if err != nil {
		return nil, err
	}
	defer dk.Wipe()

	meta, err := c.openMetadata(cred, dk)
	if err != nil {
		return nil, err
	}
	secret, err := c.openSecret(cred, dk)
	if err != nil {
		return nil, err
	}

	return &CredentialView{Credential: cred, Type: spec, Metadata: meta, Secret: secret}, nil
}

// ListByNamespace returns the credentials of a namespace with metadata decrypted.
// Secret boxes are neither loaded nor opened.
func (c *credentialUseCase) ListByNamespace(
	ctx context.Context,
	namespaceZrn string,
	offset, limit int,
) ([]*CredentialView, error) {
	identity, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	ns, err := c.getNamespace(ctx, namespaceZrn)
	if err != nil {
		return nil, err
	}

	if err := c.check(ctx, identity, kindCredential, authDomain.ActionList, ns.Zrn, ns.UserID, nil); err != nil {
		return nil, err
	}

	var creds []*vaultDomain.Credential
	err = c.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		creds, err = c.credentialRepo.ListByNamespace(ctx, ns.ID, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	return c.views(ctx, creds)
}

// List returns the caller's credentials across all of their namespaces with metadata
// decrypted. Secret boxes are neither loaded nor opened.
func (c *credentialUseCase) List(ctx context.Context, offset, limit int) ([]*CredentialView, error) {
	identity, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.check(ctx, identity, kindCredential, authDomain.ActionList, "", identity.UserID, nil); err != nil {
		return nil, err
	}

	var creds []*vaultDomain.Credential
	err = c.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		creds, err = c.credentialRepo.ListByUser(ctx, identity.UserID, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	return c.views(ctx, creds)
}

type keyRef struct {
	namespaceID uuid.UUID
	version     int
}

// views opens the metadata boxes of listed credentials. Each key version is unwrapped
// once per call and wiped on return.
func (c *credentialUseCase) views(ctx context.Context, creds []*vaultDomain.Credential) ([]*CredentialView, error) {
	keys := make(map[keyRef]*cryptoDomain.DataKey)
	defer func() {
		for _, dk := range keys {
			dk.Wipe()
		}
	}()

	views := make([]*CredentialView, 0, len(creds))
	for _, cred := range creds {
		ref := keyRef{namespaceID: cred.NamespaceID, version: cred.KeyVersion}
		dk, ok := keys[ref]
		if !ok {
			var err error
			if dk, err = c.keys.Unwrap(ctx, cred.NamespaceID, cred.KeyVersion); err != nil {
				return nil, err
			}
			keys[ref] = dk
		}

		spec, err := vaultDomain.LookupCredentialType(string(cred.Type))
		if err != nil {
			return nil, err
		}

		meta, err := c.openMetadata(cred, dk)
		if err != nil {
			return nil, err
		}

		views = append(views, &CredentialView{Credential: cred, Type: spec, Metadata: meta})
	}
	return views, nil
}

// Update replaces every field of a credential, optionally moving it to another
// namespace of the same user. Both boxes are resealed under the active key of the
// target namespace.
func (c *credentialUseCase) Update(
	ctx context.Context,
	zrn string,
	input CredentialInput,
) (*CredentialView, error) {
	identity, cred, err := c.load(ctx, zrn, authDomain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if input.NamespaceZrn != "" && input.NamespaceZrn != cred.NamespaceZrn {
		target, err := c.getNamespace(ctx, input.NamespaceZrn)
		if err != nil {
			return nil, err
		}

		metadata := map[string]any{"credential": cred.Zrn}
		err = c.check(ctx, identity, kindNamespace, authDomain.ActionUpdate, target.Zrn, target.UserID, metadata)
		if err != nil {
			return nil, err
		}

		cred.NamespaceID = target.ID
		cred.NamespaceZrn = target.Zrn
	}

	spec, err := c.validateCredentialInput(&input)
	if err != nil {
		return nil, err
	}
	cred.Type = spec.Key
	cred.Title = input.Title
	cred.UpdatedAt = time.Now().UTC()

	dk, err := c.keys.ActiveKey(ctx, cred.NamespaceID)
	if err != nil {
		return nil, err
	}
	defer dk.Wipe()

	if err := c.seal(cred, dk, &input.Metadata, &input.Secret); err != nil {
		return nil, err
	}

	err = c.policy.Run(ctx, func(ctx context.Context) error {
		return c.txManager.WithTx(ctx, func(ctx context.Context) error {
			return c.credentialRepo.Update(ctx, cred)
		})
	})
	if err != nil {
		return nil, err
	}

	meta := input.Metadata
	return &CredentialView{Credential: cred, Type: spec, Metadata: &meta}, nil
}

// Delete removes a credential.
func (c *credentialUseCase) Delete(ctx context.Context, zrn string) error {
	_, cred, err := c.load(ctx, zrn, authDomain.ActionDelete)
	if err != nil {
		return err
	}

	return c.policy.Run(ctx, func(ctx context.Context) error {
		return c.txManager.WithTx(ctx, func(ctx context.Context) error {
			return c.credentialRepo.Delete(ctx, cred.ID)
		})
	})
}
