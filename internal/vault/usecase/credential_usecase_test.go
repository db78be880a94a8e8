package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	apperrors "github.com/zekret/vault/internal/errors"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
	"github.com/zekret/vault/internal/vault/usecase"
)

func passwordInput(nsZrn string) usecase.CredentialInput {
	return usecase.CredentialInput{
		Title:          "Database admin",
		CredentialType: string(vaultDomain.CredentialUsernamePassword),
		NamespaceZrn:   nsZrn,
		Metadata:       vaultDomain.CredentialMetadata{Username: "admin", Notes: "primary"},
		Secret:         vaultDomain.CredentialSecret{Password: []byte("s3cr3t-Passw0rd")},
	}
}

// createStored runs Create and returns the credential handed to the repository.
func createStored(t *testing.T, f *vaultFixture, input usecase.CredentialInput) *vaultDomain.Credential {
	t.Helper()

	var stored *vaultDomain.Credential
	f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
	f.expectAudit("credential.create", auditDomain.OutcomeAllowed).Return(nil)
	f.keys.On("ActiveKey", mock.Anything, f.ns.ID).Return(f.dk, nil)
	f.txManager.On("WithTx", mock.Anything).Return(nil)
	f.credentialRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Credential")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*vaultDomain.Credential) }).
		Return(nil).Once()

	_, err := f.credentialUseCase().Create(f.ownerCtx(), input)
	require.NoError(t, err)
	require.NotNil(t, stored)
	return stored
}

func openSecret(t *testing.T, f *vaultFixture, dk *cryptoDomain.DataKey, cred *vaultDomain.Credential) *vaultDomain.CredentialSecret {
	t.Helper()

	plain, err := f.cipher.Open(dk.Key, dk.Algorithm, cred.SecretBox,
		vaultDomain.AssociatedData(cred.ID, cred.Type, vaultDomain.BoxSecret))
	require.NoError(t, err)
	secret, err := vaultDomain.DecodeSecret(plain)
	require.NoError(t, err)
	return secret
}

func TestCredentialUseCase_Create(t *testing.T) {
	t.Run("seals both boxes and returns metadata only", func(t *testing.T) {
		f := newVaultFixture(t)

		var stored *vaultDomain.Credential
		f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
		f.expectAudit("credential.create", auditDomain.OutcomeAllowed).Return(nil).Once()
		f.keys.On("ActiveKey", mock.Anything, f.ns.ID).Return(f.dk, nil)
		f.txManager.On("WithTx", mock.Anything).Return(nil)
		f.credentialRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*vaultDomain.Credential) }).
			Return(nil)

		view, err := f.credentialUseCase().Create(f.ownerCtx(), passwordInput(f.ns.Zrn))
		require.NoError(t, err)

		assert.True(t, vaultDomain.IsZrn(view.Zrn, vaultDomain.ResourceCredential))
		assert.Equal(t, vaultDomain.CredentialUsernamePassword, view.Type.Key)
		assert.Equal(t, "admin", view.Metadata.Username)
		assert.Nil(t, view.Secret)

		assert.Equal(t, 1, stored.KeyVersion)
		assert.Equal(t, f.ns.ID, stored.NamespaceID)
		assert.False(t, bytes.Contains(stored.SecretBox.Ciphertext, []byte("s3cr3t-Passw0rd")))
		assert.Len(t, stored.SecretBox.Tag, 16)

		secret := openSecret(t, f, f.dk, stored)
		assert.Equal(t, []byte("s3cr3t-Passw0rd"), secret.Password)
	})

	t.Run("accepts credential type zrn", func(t *testing.T) {
		f := newVaultFixture(t)
		spec, err := vaultDomain.LookupCredentialType(string(vaultDomain.CredentialSecretText))
		require.NoError(t, err)

		stored := createStored(t, f, usecase.CredentialInput{
			Title:          "API token",
			CredentialType: spec.Zrn,
			NamespaceZrn:   f.ns.Zrn,
			Secret:         vaultDomain.CredentialSecret{SecretText: []byte("tok_123")},
		})
		assert.Equal(t, vaultDomain.CredentialSecretText, stored.Type)
	})

	t.Run("drops fields the type does not carry", func(t *testing.T) {
		f := newVaultFixture(t)
		input := passwordInput(f.ns.Zrn)
		input.Secret.SecretText = []byte("ignored")

		stored := createStored(t, f, input)
		secret := openSecret(t, f, f.dk, stored)
		assert.Empty(t, secret.SecretText)
	})

	t.Run("unknown credential type", func(t *testing.T) {
		f := newVaultFixture(t)
		f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
		f.expectAudit("credential.create", auditDomain.OutcomeAllowed).Return(nil)

		input := passwordInput(f.ns.Zrn)
		input.CredentialType = "api_key"

		_, err := f.credentialUseCase().Create(f.ownerCtx(), input)
		assert.ErrorIs(t, err, vaultDomain.ErrUnknownCredentialType)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing required secret", func(t *testing.T) {
		f := newVaultFixture(t)
		f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
		f.expectAudit("credential.create", auditDomain.OutcomeAllowed).Return(nil)

		input := passwordInput(f.ns.Zrn)
		input.Secret.Password = nil

		_, err := f.credentialUseCase().Create(f.ownerCtx(), input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.keys.AssertNotCalled(t, "ActiveKey", mock.Anything, mock.Anything)
	})

	t.Run("file larger than limit", func(t *testing.T) {
		f := newVaultFixture(t)
		f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
		f.expectAudit("credential.create", auditDomain.OutcomeAllowed).Return(nil)

		_, err := f.credentialUseCase().Create(f.ownerCtx(), usecase.CredentialInput{
			Title:          "Keystore",
			CredentialType: string(vaultDomain.CredentialFile),
			NamespaceZrn:   f.ns.Zrn,
			Metadata:       vaultDomain.CredentialMetadata{FileName: "keystore.jks"},
			Secret:         vaultDomain.CredentialSecret{FileContent: bytes.Repeat([]byte{1}, 1025)},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("blank title", func(t *testing.T) {
		f := newVaultFixture(t)
		f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
		f.expectAudit("credential.create", auditDomain.OutcomeAllowed).Return(nil)

		input := passwordInput(f.ns.Zrn)
		input.Title = "   "

		_, err := f.credentialUseCase().Create(f.ownerCtx(), input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing namespace", func(t *testing.T) {
		f := newVaultFixture(t)

		_, err := f.credentialUseCase().Create(f.ownerCtx(), passwordInput(""))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("namespace of another user", func(t *testing.T) {
		f := newVaultFixture(t)
		f.namespaceRepo.On("GetByZrn", mock.Anything, f.ns.Zrn).Return(f.ns, nil)
		f.expectAudit("credential.create", auditDomain.OutcomeDenied).Return(nil).Once()

		_, err := f.credentialUseCase().Create(f.strangerCtx(), passwordInput(f.ns.Zrn))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.audit.AssertExpectations(t)
		f.credentialRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCredentialUseCase_Get(t *testing.T) {
	t.Run("opens every field", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.read", auditDomain.OutcomeAllowed).Return(nil).Once()
		f.keys.On("Unwrap", mock.Anything, f.ns.ID, 1).Return(f.dk, nil)

		view, err := f.credentialUseCase().Get(f.ownerCtx(), stored.Zrn)
		require.NoError(t, err)
		require.NotNil(t, view.Secret)
		assert.Equal(t, "admin", view.Metadata.Username)
		assert.Equal(t, "primary", view.Metadata.Notes)
		assert.Equal(t, []byte("s3cr3t-Passw0rd"), view.Secret.Password)
		f.audit.AssertExpectations(t)
	})

	t.Run("tampered ciphertext fails without detail", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))
		stored.SecretBox.Ciphertext[0] ^= 0xff

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.read", auditDomain.OutcomeAllowed).Return(nil)
		f.keys.On("Unwrap", mock.Anything, f.ns.ID, 1).Return(f.dk, nil)

		_, err := f.credentialUseCase().Get(f.ownerCtx(), stored.Zrn)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
		assert.False(t, apperrors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("box swapped between credentials fails", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))
		stored.ID = uuid.Must(uuid.NewV7())

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.read", auditDomain.OutcomeAllowed).Return(nil)
		f.keys.On("Unwrap", mock.Anything, f.ns.ID, 1).Return(f.dk, nil)

		_, err := f.credentialUseCase().Get(f.ownerCtx(), stored.Zrn)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
	})

	t.Run("other user is denied before any key is touched", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.read", auditDomain.OutcomeDenied).Return(nil).Once()

		_, err := f.credentialUseCase().Get(f.strangerCtx(), stored.Zrn)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.keys.AssertNotCalled(t, "Unwrap", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newVaultFixture(t)
		f.credentialRepo.On("GetByZrn", mock.Anything, "zrn:zekret:credential:20250101:missing").
			Return(nil, vaultDomain.ErrCredentialNotFound)

		_, err := f.credentialUseCase().Get(f.ownerCtx(), "zrn:zekret:credential:20250101:missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestCredentialUseCase_ListByNamespace(t *testing.T) {
	f := newVaultFixture(t)
	first := createStored(t, f, passwordInput(f.ns.Zrn))

	// A second credential sealed under a rotated key.
	rotated := f.dk.Clone()
	rotated.Version = 2
	rotated.Key = bytes.Repeat([]byte{9}, cryptoDomain.KeySize)

	second := &vaultDomain.Credential{
		ID:          uuid.Must(uuid.NewV7()),
		Zrn:         vaultDomain.NewZrn(vaultDomain.ResourceCredential, time.Now()),
		NamespaceID: f.ns.ID,
		OwnerID:     f.ns.UserID,
		Type:        vaultDomain.CredentialSecretText,
		Title:       "Webhook secret",
		KeyVersion:  2,
	}
	meta := vaultDomain.EncodeMetadata(&vaultDomain.CredentialMetadata{Notes: "rotated"})
	box, err := f.cipher.Seal(rotated.Key, rotated.Algorithm, meta,
		vaultDomain.AssociatedData(second.ID, second.Type, vaultDomain.BoxMetadata))
	require.NoError(t, err)
	second.MetadataBox = box

	listed := *first
	listed.SecretBox = cryptoDomain.SealedBox{}

	f.expectAudit("credential.list", auditDomain.OutcomeAllowed).Return(nil).Once()
	f.credentialRepo.On("ListByNamespace", mock.Anything, f.ns.ID, 0, 50).
		Return([]*vaultDomain.Credential{&listed, second}, nil)
	f.keys.On("Unwrap", mock.Anything, f.ns.ID, 1).Return(f.dk, nil).Once()
	f.keys.On("Unwrap", mock.Anything, f.ns.ID, 2).Return(rotated, nil).Once()

	views, err := f.credentialUseCase().ListByNamespace(f.ownerCtx(), f.ns.Zrn, 0, 50)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "admin", views[0].Metadata.Username)
	assert.Nil(t, views[0].Secret)
	assert.Equal(t, "rotated", views[1].Metadata.Notes)
	assert.Equal(t, vaultDomain.CredentialSecretText, views[1].Type.Key)
	f.keys.AssertExpectations(t)
}

func TestCredentialUseCase_List(t *testing.T) {
	t.Run("spans namespaces and opens metadata only", func(t *testing.T) {
		f := newVaultFixture(t)
		first := createStored(t, f, passwordInput(f.ns.Zrn))
		listed := *first
		listed.SecretBox = cryptoDomain.SealedBox{}

		// Same key version in a second namespace needs its own unwrap.
		otherKey := &cryptoDomain.DataKey{
			NamespaceID: uuid.Must(uuid.NewV7()),
			Version:     1,
			Algorithm:   cryptoDomain.ChaCha20,
			Key:         bytes.Repeat([]byte{5}, cryptoDomain.KeySize),
		}
		other := &vaultDomain.Credential{
			ID:          uuid.Must(uuid.NewV7()),
			Zrn:         vaultDomain.NewZrn(vaultDomain.ResourceCredential, time.Now()),
			NamespaceID: otherKey.NamespaceID,
			OwnerID:     f.owner.UserID,
			Type:        vaultDomain.CredentialFile,
			Title:       "TLS bundle",
			KeyVersion:  1,
		}
		meta := vaultDomain.EncodeMetadata(&vaultDomain.CredentialMetadata{FileName: "bundle.pem"})
		box, err := f.cipher.Seal(otherKey.Key, otherKey.Algorithm, meta,
			vaultDomain.AssociatedData(other.ID, other.Type, vaultDomain.BoxMetadata))
		require.NoError(t, err)
		other.MetadataBox = box

		f.expectAudit("credential.list", auditDomain.OutcomeAllowed).Return(nil).Once()
		f.credentialRepo.On("ListByUser", mock.Anything, f.owner.UserID, 0, 50).
			Return([]*vaultDomain.Credential{&listed, other}, nil)
		f.keys.On("Unwrap", mock.Anything, f.ns.ID, 1).Return(f.dk, nil).Once()
		f.keys.On("Unwrap", mock.Anything, otherKey.NamespaceID, 1).Return(otherKey, nil).Once()

		views, err := f.credentialUseCase().List(f.ownerCtx(), 0, 50)
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.Equal(t, "admin", views[0].Metadata.Username)
		assert.Nil(t, views[0].Secret)
		assert.Equal(t, "bundle.pem", views[1].Metadata.FileName)
		assert.Nil(t, views[1].Secret)
		f.keys.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		f := newVaultFixture(t)
		f.expectAudit("credential.list", auditDomain.OutcomeAllowed).Return(nil).Once()
		f.credentialRepo.On("ListByUser", mock.Anything, f.owner.UserID, 0, 50).
			Return([]*vaultDomain.Credential{}, nil)

		views, err := f.credentialUseCase().List(f.ownerCtx(), 0, 50)
		require.NoError(t, err)
		assert.Empty(t, views)
		f.keys.AssertNotCalled(t, "Unwrap", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newVaultFixture(t)

		_, err := f.credentialUseCase().List(context.Background(), 0, 50)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		f.credentialRepo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCredentialUseCase_FileRoundTrip(t *testing.T) {
	f := newVaultFixture(t)
	content := append([]byte("-----BEGIN CERTIFICATE-----\n"), bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 100)...)

	stored := createStored(t, f, usecase.CredentialInput{
		Title:          "Client certificate",
		CredentialType: string(vaultDomain.CredentialFile),
		NamespaceZrn:   f.ns.Zrn,
		Metadata:       vaultDomain.CredentialMetadata{FileName: "client.crt", Notes: "expires 2027"},
		Secret:         vaultDomain.CredentialSecret{FileContent: content},
	})
	assert.False(t, bytes.Contains(stored.SecretBox.Ciphertext, []byte("BEGIN CERTIFICATE")))

	listed := *stored
	listed.SecretBox = cryptoDomain.SealedBox{}
	f.expectAudit("credential.list", auditDomain.OutcomeAllowed).Return(nil).Once()
	f.credentialRepo.On("ListByNamespace", mock.Anything, f.ns.ID, 0, 50).
		Return([]*vaultDomain.Credential{&listed}, nil)
	f.keys.On("Unwrap", mock.Anything, f.ns.ID, 1).Return(f.dk, nil)

	views, err := f.credentialUseCase().ListByNamespace(f.ownerCtx(), f.ns.Zrn, 0, 50)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "client.crt", views[0].Metadata.FileName)
	assert.Nil(t, views[0].Secret)

	f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
	f.expectAudit("credential.read", auditDomain.OutcomeAllowed).Return(nil).Once()

	view, err := f.credentialUseCase().Get(f.ownerCtx(), stored.Zrn)
	require.NoError(t, err)
	require.NotNil(t, view.Secret)
	assert.Equal(t, "client.crt", view.Metadata.FileName)
	assert.Equal(t, content, view.Secret.FileContent)
}

func TestCredentialUseCase_Update(t *testing.T) {
	t.Run("moves to another namespace of the owner", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		target := &vaultDomain.Namespace{
			ID:     uuid.Must(uuid.NewV7()),
			Zrn:    vaultDomain.NewZrn(vaultDomain.ResourceNamespace, time.Now()),
			UserID: f.owner.UserID,
		}
		targetKey := &cryptoDomain.DataKey{
			NamespaceID: target.ID,
			Version:     3,
			Algorithm:   cryptoDomain.ChaCha20,
			Key:         bytes.Repeat([]byte{4}, cryptoDomain.KeySize),
		}

		var updated *vaultDomain.Credential
		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.namespaceRepo.On("GetByZrn", mock.Anything, target.Zrn).Return(target, nil)
		f.expectAudit("credential.update", auditDomain.OutcomeAllowed).Return(nil).Once()
		f.expectAudit("namespace.update", auditDomain.OutcomeAllowed).Return(nil).Once()
		f.keys.On("ActiveKey", mock.Anything, target.ID).Return(targetKey, nil)
		f.credentialRepo.On("Update", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { updated = args.Get(1).(*vaultDomain.Credential) }).
			Return(nil).Once()

		input := passwordInput(target.Zrn)
		input.Title = "Database admin (moved)"
		input.Secret.Password = []byte("n3w-Passw0rd")

		view, err := f.credentialUseCase().Update(f.ownerCtx(), stored.Zrn, input)
		require.NoError(t, err)

		assert.Equal(t, stored.Zrn, view.Zrn)
		assert.Equal(t, target.ID, updated.NamespaceID)
		assert.Equal(t, 3, updated.KeyVersion)
		assert.Equal(t, "Database admin (moved)", updated.Title)

		secret := openSecret(t, f, targetKey, updated)
		assert.Equal(t, []byte("n3w-Passw0rd"), secret.Password)
		f.audit.AssertExpectations(t)
	})

	t.Run("cannot move into a namespace of another user", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		foreign := &vaultDomain.Namespace{
			ID:     uuid.Must(uuid.NewV7()),
			Zrn:    vaultDomain.NewZrn(vaultDomain.ResourceNamespace, time.Now()),
			UserID: uuid.Must(uuid.NewV7()),
		}
		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.namespaceRepo.On("GetByZrn", mock.Anything, foreign.Zrn).Return(foreign, nil)
		f.expectAudit("credential.update", auditDomain.OutcomeAllowed).Return(nil)
		f.expectAudit("namespace.update", auditDomain.OutcomeDenied).Return(nil).Once()

		_, err := f.credentialUseCase().Update(f.ownerCtx(), stored.Zrn, passwordInput(foreign.Zrn))
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.credentialRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("changes type in place", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.update", auditDomain.OutcomeAllowed).Return(nil)
		f.credentialRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		view, err := f.credentialUseCase().Update(f.ownerCtx(), stored.Zrn, usecase.CredentialInput{
			Title:          "Deploy key",
			CredentialType: string(vaultDomain.CredentialSSHUsername),
			Metadata:       vaultDomain.CredentialMetadata{Username: "deploy", SSHPublicKey: "ssh-ed25519 AAAA"},
			Secret:         vaultDomain.CredentialSecret{SSHPrivateKey: []byte(strings.Repeat("k", 64))},
		})
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.CredentialSSHUsername, view.Type.Key)
		assert.Equal(t, f.ns.ID, stored.NamespaceID)
	})
}

func TestCredentialUseCase_Delete(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.delete", auditDomain.OutcomeAllowed).Return(nil)
		f.credentialRepo.On("Delete", mock.Anything, stored.ID).Return(nil).Once()

		require.NoError(t, f.credentialUseCase().Delete(f.ownerCtx(), stored.Zrn))
		f.credentialRepo.AssertExpectations(t)
	})

	t.Run("other user", func(t *testing.T) {
		f := newVaultFixture(t)
		stored := createStored(t, f, passwordInput(f.ns.Zrn))

		f.credentialRepo.On("GetByZrn", mock.Anything, stored.Zrn).Return(stored, nil)
		f.expectAudit("credential.delete", auditDomain.OutcomeDenied).Return(nil)

		err := f.credentialUseCase().Delete(f.strangerCtx(), stored.Zrn)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.credentialRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
