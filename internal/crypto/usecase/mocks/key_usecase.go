// Package mocks provides mock implementations of the crypto use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

// MockKeyUseCase is a mock implementation of usecase.KeyUseCase.
//
// ActiveKey and Unwrap return a clone of the configured key so callers may Wipe it.
type MockKeyUseCase struct {
	mock.Mock
}

// Provision mocks the Provision method.
func (m *MockKeyUseCase) Provision(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error) {
	args := m.Called(ctx, namespaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.DataKey), args.Error(1)
}

// ActiveKey mocks the ActiveKey method.
func (m *MockKeyUseCase) ActiveKey(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error) {
	args := m.Called(ctx, namespaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.DataKey).Clone(), args.Error(1)
}

// Unwrap mocks the Unwrap method.
func (m *MockKeyUseCase) Unwrap(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	args := m.Called(ctx, namespaceID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.DataKey).Clone(), args.Error(1)
}

// Rotate mocks the Rotate method.
func (m *MockKeyUseCase) Rotate(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	args := m.Called(ctx, namespaceID)
	return args.Int(0), args.Error(1)
}

// Rewrap mocks the Rewrap method.
func (m *MockKeyUseCase) Rewrap(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

// Invalidate mocks the Invalidate method.
func (m *MockKeyUseCase) Invalidate(namespaceID uuid.UUID) {
	m.Called(namespaceID)
}
