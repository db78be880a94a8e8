// Package mocks provides mock implementations of the audit use case interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	"github.com/zekret/vault/internal/audit/usecase"
)

// MockAuditLogRepository is a mock implementation of usecase.AuditLogRepository.
type MockAuditLogRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// ListByUser mocks the ListByUser method.
func (m *MockAuditLogRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, userID, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// ListByTimeRange mocks the ListByTimeRange method.
func (m *MockAuditLogRepository) ListByTimeRange(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, start, end, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditLogRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// CountOlderThan mocks the CountOlderThan method.
func (m *MockAuditLogRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of usecase.AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditLogUseCase) Record(ctx context.Context, entry usecase.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, userID, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// VerifyBatch mocks the VerifyBatch method.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*usecase.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VerificationReport), args.Error(1)
}
