package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	"github.com/zekret/vault/internal/metrics"
)

type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *auditLogUseCaseWithMetrics) Record(ctx context.Context, entry Entry) error {
	start := time.Now()
	err := a.next.Record(ctx, entry)
	metrics.Observe(ctx, a.metrics, "audit", "audit_log_record", start, err)
	return err
}

func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	start := time.Now()
	logs, err := a.next.List(ctx, userID, offset, limit, createdAtFrom, createdAtTo)
	metrics.Observe(ctx, a.metrics, "audit", "audit_log_list", start, err)
	return logs, err
}

func (a *auditLogUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	metrics.Observe(ctx, a.metrics, "audit", "audit_log_delete", start, err)
	return count, err
}

func (a *auditLogUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	start := time.Now()
	report, err := a.next.VerifyBatch(ctx, startTime, endTime)
	metrics.Observe(ctx, a.metrics, "audit", "audit_log_verify_batch", start, err)
	return report, err
}
