package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	cryptoUseCase "github.com/zekret/vault/internal/crypto/usecase"
	"github.com/zekret/vault/internal/database"
	appValidation "github.com/zekret/vault/internal/validation"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
)

// NamespaceUseCaseConfig carries the dependencies of the namespace use case.
type NamespaceUseCaseConfig struct {
	TxManager      database.TxManager
	Policy         database.OperationPolicy
	NamespaceRepo  NamespaceRepository
	CredentialRepo CredentialRepository
	Keys           cryptoUseCase.KeyUseCase
	Authorizer     Authorizer
	Audit          AuditRecorder
	// CascadeDelete removes remaining credentials on delete instead of refusing it.
	CascadeDelete bool
}

type namespaceUseCase struct {
	guard
	txManager      database.TxManager
	policy         database.OperationPolicy
	namespaceRepo  NamespaceRepository
	credentialRepo CredentialRepository
	keys           cryptoUseCase.KeyUseCase
	cascadeDelete  bool
}

// NewNamespaceUseCase creates a NamespaceUseCase.
func NewNamespaceUseCase(cfg NamespaceUseCaseConfig) NamespaceUseCase {
	return &namespaceUseCase{
		guard:          guard{authorizer: cfg.Authorizer, audit: cfg.Audit},
		txManager:      cfg.TxManager,
		policy:         cfg.Policy,
		namespaceRepo:  cfg.NamespaceRepo,
		credentialRepo: cfg.CredentialRepo,
		keys:           cfg.Keys,
		cascadeDelete:  cfg.CascadeDelete,
	}
}

// ValidateNamespaceInput checks name and description lengths.
func ValidateNamespaceInput(input NamespaceInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 50).Error("name must be at most 50 characters"),
		),
		validation.Field(&input.Description,
			validation.Required.Error("description is required"),
			appValidation.NotBlank,
			validation.Length(1, 200).Error("description must be at most 200 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

func normalizeNamespaceInput(input NamespaceInput) NamespaceInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	return input
}

// Create stores a namespace and its first data key in one transaction.
func (n *namespaceUseCase) Create(ctx context.Context, input NamespaceInput) (*vaultDomain.Namespace, error) {
	identity, err := n.identity(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ns := &vaultDomain.Namespace{
		ID:               uuid.Must(uuid.NewV7()),
		Zrn:              vaultDomain.NewZrn(vaultDomain.ResourceNamespace, now),
		UserID:           identity.UserID,
		ActiveKeyVersion: 1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := n.check(ctx, identity, kindNamespace, authDomain.ActionCreate, ns.Zrn, identity.UserID, nil); err != nil {
		return nil, err
	}

	input = normalizeNamespaceInput(input)
	if err := ValidateNamespaceInput(input); err != nil {
		return nil, err
	}
	ns.Name = input.Name
	ns.Description = input.Description

	err = n.policy.Run(ctx, func(ctx context.Context) error {
		return n.txManager.WithTx(ctx, func(ctx context.Context) error {
			if err := n.namespaceRepo.Create(ctx, ns); err != nil {
				return err
			}
			_, err := n.keys.Provision(ctx, ns.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return ns, nil
}

// load fetches a namespace and authorizes action on it.
func (n *namespaceUseCase) load(
	ctx context.Context,
	zrn string,
	action authDomain.Action,
) (*vaultDomain.Namespace, error) {
	identity, err := n.identity(ctx)
	if err != nil {
		return nil, err
	}

	var ns *vaultDomain.Namespace
	err = n.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		ns, err = n.namespaceRepo.GetByZrn(ctx, zrn)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := n.check(ctx, identity, kindNamespace, action, ns.Zrn, ns.UserID, nil); err != nil {
		return nil, err
	}
	return ns, nil
}

// Get returns one namespace of the caller.
func (n *namespaceUseCase) Get(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	return n.load(ctx, zrn, authDomain.ActionRead)
}

// List returns the caller's namespaces ordered by name.
func (n *namespaceUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Namespace, error) {
	identity, err := n.identity(ctx)
	if err != nil {
		return nil, err
	}

	if err := n.check(ctx, identity, kindNamespace, authDomain.ActionList, "", identity.UserID, nil); err != nil {
		return nil, err
	}

	var namespaces []*vaultDomain.Namespace
	err = n.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		namespaces, err = n.namespaceRepo.ListByUser(ctx, identity.UserID, offset, limit)
		return err
	})
	return namespaces, err
}

// Update replaces name and description.
func (n *namespaceUseCase) Update(
	ctx context.Context,
	zrn string,
	input NamespaceInput,
) (*vaultDomain.Namespace, error) {
	ns, err := n.load(ctx, zrn, authDomain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	input = normalizeNamespaceInput(input)
	if err := ValidateNamespaceInput(input); err != nil {
		return nil, err
	}

	ns.Name = input.Name
	ns.Description = input.Description
	ns.UpdatedAt = time.Now().UTC()

	err = n.policy.Run(ctx, func(ctx context.Context) error {
		return n.txManager.WithTx(ctx, func(ctx context.Context) error {
			return n.namespaceRepo.Update(ctx, ns)
		})
	})
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// Delete removes a namespace. With cascade off a namespace holding credentials is
// refused with ErrNamespaceNotEmpty; with cascade on the credentials go in the same
// transaction. Data keys are removed by the schema.
func (n *namespaceUseCase) Delete(ctx context.Context, zrn string) error {
	ns, err := n.load(ctx, zrn, authDomain.ActionDelete)
	if err != nil {
		return err
	}

	err = n.policy.Run(ctx, func(ctx context.Context) error {
		return n.txManager.WithTx(ctx, func(ctx context.Context) error {
			if n.cascadeDelete {
				if _, err := n.credentialRepo.DeleteByNamespace(ctx, ns.ID); err != nil {
					return err
				}
			} else {
				count, err := n.namespaceRepo.CountCredentials(ctx, ns.ID)
				if err != nil {
					return err
				}
				if count > 0 {
					return vaultDomain.ErrNamespaceNotEmpty
				}
			}
			return n.namespaceRepo.Delete(ctx, ns.ID)
		})
	})
	if err != nil {
		return err
	}

	n.keys.Invalidate(ns.ID)
	return nil
}

// RotateKey issues a new data key version for the namespace.
func (n *namespaceUseCase) RotateKey(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	ns, err := n.load(ctx, zrn, authDomain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	version, err := n.keys.Rotate(ctx, ns.ID)
	if err != nil {
		return nil, err
	}

	ns.ActiveKeyVersion = version
	return ns, nil
}
