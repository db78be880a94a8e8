package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
	authDomain "github.com/zekret/vault/internal/auth/domain"
	authUseCase "github.com/zekret/vault/internal/auth/usecase"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
	cryptoMocks "github.com/zekret/vault/internal/crypto/usecase/mocks"
	"github.com/zekret/vault/internal/database"
	databaseMocks "github.com/zekret/vault/internal/database/mocks"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
	"github.com/zekret/vault/internal/vault/usecase"
	"github.com/zekret/vault/internal/vault/usecase/mocks"
)

type vaultFixture struct {
	txManager      *databaseMocks.MockTxManager
	namespaceRepo  *mocks.MockNamespaceRepository
	credentialRepo *mocks.MockCredentialRepository
	keys           *cryptoMocks.MockKeyUseCase
	audit          *mocks.MockAuditRecorder
	cipher         cryptoService.CipherEngine

	owner *authDomain.Identity
	ns    *vaultDomain.Namespace
	dk    *cryptoDomain.DataKey
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()

	owner := &authDomain.Identity{
		UserID:   uuid.Must(uuid.NewV7()),
		Username: "alice",
		Email:    "alice@example.com",
	}
	nsID := uuid.Must(uuid.NewV7())

	return &vaultFixture{
		txManager:      &databaseMocks.MockTxManager{},
		namespaceRepo:  &mocks.MockNamespaceRepository{},
		credentialRepo: &mocks.MockCredentialRepository{},
		keys:           &cryptoMocks.MockKeyUseCase{},
		audit:          &mocks.MockAuditRecorder{},
		cipher:         cryptoService.NewCipherEngine(cryptoService.NewAEADManager()),
		owner:          owner,
		ns: &vaultDomain.Namespace{
			ID:               nsID,
			Zrn:              vaultDomain.NewZrn(vaultDomain.ResourceNamespace, time.Now()),
			UserID:           owner.UserID,
			Name:             "Production",
			Description:      "Production credentials",
			ActiveKeyVersion: 1,
		},
		dk: &cryptoDomain.DataKey{
			ID:          uuid.Must(uuid.NewV7()),
			NamespaceID: nsID,
			Version:     1,
			Algorithm:   cryptoDomain.AESGCM,
			Key:         bytes.Repeat([]byte{7}, cryptoDomain.KeySize),
		},
	}
}

func (f *vaultFixture) policy() database.OperationPolicy {
	return database.NewOperationPolicy(time.Second, time.Millisecond)
}

func (f *vaultFixture) namespaceUseCase(cascade bool) usecase.NamespaceUseCase {
	return usecase.NewNamespaceUseCase(usecase.NamespaceUseCaseConfig{
		TxManager:      f.txManager,
		Policy:         f.policy(),
		NamespaceRepo:  f.namespaceRepo,
		CredentialRepo: f.credentialRepo,
		Keys:           f.keys,
		Authorizer:     authUseCase.NewAuthorizer(),
		Audit:          f.audit,
		CascadeDelete:  cascade,
	})
}

func (f *vaultFixture) credentialUseCase() usecase.CredentialUseCase {
	return usecase.NewCredentialUseCase(usecase.CredentialUseCaseConfig{
		TxManager:      f.txManager,
		Policy:         f.policy(),
		NamespaceRepo:  f.namespaceRepo,
		CredentialRepo: f.credentialRepo,
		Keys:           f.keys,
		Cipher:         f.cipher,
		Authorizer:     authUseCase.NewAuthorizer(),
		Audit:          f.audit,
		MaxFileSize:    1024,
	})
}

func (f *vaultFixture) ownerCtx() context.Context {
	return authDomain.WithIdentity(context.Background(), f.owner)
}

func (f *vaultFixture) strangerCtx() context.Context {
	return authDomain.WithIdentity(context.Background(), &authDomain.Identity{
		UserID:   uuid.Must(uuid.NewV7()),
		Username: "mallory",
	})
}

// expectAudit registers one audit record for action with the given outcome.
func (f *vaultFixture) expectAudit(action string, outcome auditDomain.Outcome) *mock.Call {
	return f.audit.On("Record", mock.Anything, mock.MatchedBy(func(entry auditUseCase.Entry) bool {
		return entry.Action == action && entry.Outcome == outcome
	}))
}
