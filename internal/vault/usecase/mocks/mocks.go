// Package mocks provides mock implementations of the vault use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
	authDomain "github.com/zekret/vault/internal/auth/domain"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
	"github.com/zekret/vault/internal/vault/usecase"
)

// MockNamespaceRepository is a mock implementation of usecase.NamespaceRepository.
type MockNamespaceRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockNamespaceRepository) Create(ctx context.Context, ns *vaultDomain.Namespace) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

// GetByZrn mocks the GetByZrn method.
func (m *MockNamespaceRepository) GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	args := m.Called(ctx, zrn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Namespace), args.Error(1)
}

// ListByUser mocks the ListByUser method.
func (m *MockNamespaceRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Namespace, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Namespace), args.Error(1)
}

// Update mocks the Update method.
func (m *MockNamespaceRepository) Update(ctx context.Context, ns *vaultDomain.Namespace) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockNamespaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CountCredentials mocks the CountCredentials method.
func (m *MockNamespaceRepository) CountCredentials(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockCredentialRepository is a mock implementation of usecase.CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockCredentialRepository) Create(ctx context.Context, cred *vaultDomain.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

// GetByZrn mocks the GetByZrn method.
func (m *MockCredentialRepository) GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Credential, error) {
	args := m.Called(ctx, zrn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Credential), args.Error(1)
}

// ListByNamespace mocks the ListByNamespace method.
func (m *MockCredentialRepository) ListByNamespace(
	ctx context.Context,
	namespaceID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Credential, error) {
	args := m.Called(ctx, namespaceID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Credential), args.Error(1)
}

// ListByUser mocks the ListByUser method.
func (m *MockCredentialRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Credential, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Credential), args.Error(1)
}

// Update mocks the Update method.
func (m *MockCredentialRepository) Update(ctx context.Context, cred *vaultDomain.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DeleteByNamespace mocks the DeleteByNamespace method.
func (m *MockCredentialRepository) DeleteByNamespace(ctx context.Context, namespaceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, namespaceID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthorizer is a mock implementation of usecase.Authorizer.
type MockAuthorizer struct {
	mock.Mock
}

// Authorize mocks the Authorize method.
func (m *MockAuthorizer) Authorize(identity *authDomain.Identity, action authDomain.Action, ownerID uuid.UUID) error {
	args := m.Called(identity, action, ownerID)
	return args.Error(0)
}

// MockAuditRecorder is a mock implementation of usecase.AuditRecorder.
type MockAuditRecorder struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditRecorder) Record(ctx context.Context, entry auditUseCase.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockNamespaceUseCase is a mock implementation of usecase.NamespaceUseCase.
type MockNamespaceUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockNamespaceUseCase) Create(
	ctx context.Context,
	input usecase.NamespaceInput,
) (*vaultDomain.Namespace, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Namespace), args.Error(1)
}

// Get mocks the Get method.
func (m *MockNamespaceUseCase) Get(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	args := m.Called(ctx, zrn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Namespace), args.Error(1)
}

// List mocks the List method.
func (m *MockNamespaceUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Namespace, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Namespace), args.Error(1)
}

// Update mocks the Update method.
func (m *MockNamespaceUseCase) Update(
	ctx context.Context,
	zrn string,
	input usecase.NamespaceInput,
) (*vaultDomain.Namespace, error) {
	args := m.Called(ctx, zrn, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Namespace), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockNamespaceUseCase) Delete(ctx context.Context, zrn string) error {
	args := m.Called(ctx, zrn)
	return args.Error(0)
}

// RotateKey mocks the RotateKey method.
func (m *MockNamespaceUseCase) RotateKey(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	args := m.Called(ctx, zrn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Namespace), args.Error(1)
}

// MockCredentialUseCase is a mock implementation of usecase.CredentialUseCase.
type MockCredentialUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockCredentialUseCase) Create(
	ctx context.Context,
	input usecase.CredentialInput,
) (*usecase.CredentialView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CredentialView), args.Error(1)
}

// Get mocks the Get method.
func (m *MockCredentialUseCase) Get(ctx context.Context, zrn string) (*usecase.CredentialView, error) {
	args := m.Called(ctx, zrn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CredentialView), args.Error(1)
}

// ListByNamespace mocks the ListByNamespace method.
func (m *MockCredentialUseCase) ListByNamespace(
	ctx context.Context,
	namespaceZrn string,
	offset, limit int,
) ([]*usecase.CredentialView, error) {
	args := m.Called(ctx, namespaceZrn, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*usecase.CredentialView), args.Error(1)
}

// List mocks the List method.
func (m *MockCredentialUseCase) List(ctx context.Context, offset, limit int) ([]*usecase.CredentialView, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*usecase.CredentialView), args.Error(1)
}

// Update mocks the Update method.
func (m *MockCredentialUseCase) Update(
	ctx context.Context,
	zrn string,
	input usecase.CredentialInput,
) (*usecase.CredentialView, error) {
	args := m.Called(ctx, zrn, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CredentialView), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockCredentialUseCase) Delete(ctx context.Context, zrn string) error {
	args := m.Called(ctx, zrn)
	return args.Error(0)
}
