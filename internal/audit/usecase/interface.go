// Package usecase records, lists, verifies and prunes audit entries.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
)

// Entry is the caller-supplied part of an audit log. Request id, timestamp and
// signature are filled in by Record.
type Entry struct {
	UserID      uuid.UUID
	Action      string
	ResourceZrn string
	Outcome     auditDomain.Outcome
	Metadata    map[string]any
}

// VerificationReport summarises a batch signature check.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}

// AuditLogRepository persists audit entries.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *auditDomain.AuditLog) error

	// ListByUser returns the entries of one user, newest first. Both bounds are inclusive.
	ListByUser(
		ctx context.Context,
		userID uuid.UUID,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// ListByTimeRange returns entries with start <= created_at <= end, oldest first.
	ListByTimeRange(ctx context.Context, start, end time.Time, offset, limit int) ([]*auditDomain.AuditLog, error)

	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
	CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
}

// AuditLogUseCase is the audit trail API used by the vault and the CLI.
type AuditLogUseCase interface {
	Record(ctx context.Context, entry Entry) error
	List(
		ctx context.Context,
		userID uuid.UUID,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)
}
