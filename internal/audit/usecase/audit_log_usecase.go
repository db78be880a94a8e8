package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	auditService "github.com/zekret/vault/internal/audit/service"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
)

// verifyPageSize is the number of entries VerifyBatch loads per query.
const verifyPageSize = 500

type auditLogUseCase struct {
	txManager  database.TxManager
	policy     database.OperationPolicy
	repo       AuditLogRepository
	signer     auditService.AuditSigner
	masterKeys *cryptoDomain.MasterKeyChain
}

// NewAuditLogUseCase creates an AuditLogUseCase signing under the active key of masterKeys.
func NewAuditLogUseCase(
	txManager database.TxManager,
	policy database.OperationPolicy,
	repo AuditLogRepository,
	signer auditService.AuditSigner,
	masterKeys *cryptoDomain.MasterKeyChain,
) AuditLogUseCase {
	return &auditLogUseCase{
		txManager:  txManager,
		policy:     policy,
		repo:       repo,
		signer:     signer,
		masterKeys: masterKeys,
	}
}

// Record signs and stores an entry. The timestamp is truncated to microseconds, the
// precision both databases keep, so the signature still verifies after a round trip.
func (a *auditLogUseCase) Record(ctx context.Context, entry Entry) error {
	active := a.masterKeys.Active()
	if active == nil {
		return cryptoDomain.ErrActiveMasterKeyNotFound
	}

	log := &auditDomain.AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		RequestID:   auditDomain.RequestIDFrom(ctx),
		UserID:      entry.UserID,
		Action:      entry.Action,
		ResourceZrn: entry.ResourceZrn,
		Outcome:     entry.Outcome,
		Metadata:    entry.Metadata,
		MasterKeyID: active.ID,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	signature, err := a.signer.Sign(active.Key, log)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign audit log")
	}
	log.Signature = signature

	return a.policy.Run(ctx, func(ctx context.Context) error {
		return a.repo.Create(ctx, log)
	})
}

// List returns the caller's own entries.
func (a *auditLogUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	var logs []*auditDomain.AuditLog
	err := a.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		logs, err = a.repo.ListByUser(ctx, userID, offset, limit, createdAtFrom, createdAtTo)
		return err
	})
	return logs, err
}

// DeleteOlderThan removes entries older than days, or only counts them when dryRun is set.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be a non-negative number")
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	if dryRun {
		return a.repo.CountOlderThan(ctx, olderThan)
	}

	var count int64
	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = a.repo.DeleteOlderThan(ctx, olderThan)
		return err
	})
	return count, err
}

// VerifyBatch checks the signature of every entry in [start, end].
//
// Entries signed under a master key that is no longer in the chain count as invalid:
// they can't be proven authentic.
func (a *auditLogUseCase) VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error) {
	report := &VerificationReport{InvalidLogs: []uuid.UUID{}}

	for offset := 0; ; offset += verifyPageSize {
		logs, err := a.repo.ListByTimeRange(ctx, start, end, offset, verifyPageSize)
		if err != nil {
			return nil, err
		}

		for _, log := range logs {
			a.verifyOne(log, report)
		}

		if len(logs) < verifyPageSize {
			return report, nil
		}
	}
}

func (a *auditLogUseCase) verifyOne(log *auditDomain.AuditLog, report *VerificationReport) {
	report.TotalChecked++

	if !log.IsSigned() {
		report.UnsignedCount++
		return
	}
	report.SignedCount++

	mk, ok := a.masterKeys.Get(log.MasterKeyID)
	if !ok {
		report.InvalidCount++
		report.InvalidLogs = append(report.InvalidLogs, log.ID)
		return
	}

	if err := a.signer.Verify(mk.Key, log); err != nil {
		report.InvalidCount++
		report.InvalidLogs = append(report.InvalidLogs, log.ID)
		return
	}
	report.ValidCount++
}

// String renders a one-line summary, used in logs.
func (r *VerificationReport) String() string {
	return fmt.Sprintf(
		"checked=%d signed=%d unsigned=%d valid=%d invalid=%d",
		r.TotalChecked, r.SignedCount, r.UnsignedCount, r.ValidCount, r.InvalidCount,
	)
}
