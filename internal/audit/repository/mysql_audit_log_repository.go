package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL.
// Uses BINARY(16) for UUIDs and a JSON column for metadata.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new AuditLog.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}
	requestID, err := entry.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal request id")
	}
	userID, err := entry.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		requestID,
		userID,
		entry.Action,
		entry.ResourceZrn,
		string(entry.Outcome),
		metadata,
		entry.MasterKeyID,
		entry.Signature,
		entry.CreatedAt,
	)
	if err != nil {
		return database.TranslateError(err, "failed to create audit log")
	}
	return nil
}

// ListByUser returns the entries of a user ordered newest first.
func (m *MySQLAuditLogRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	conditions := []string{"user_id = ?"}
	args := []any{id}

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}
	args = append(args, limit, offset)

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return scanMySQLAuditLogs(rows)
}

// ListByTimeRange returns entries in [start, end] ordered oldest first.
func (m *MySQLAuditLogRepository) ListByTimeRange(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs
			  WHERE created_at >= ? AND created_at <= ?
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, start, end, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs by time range")
	}
	return scanMySQLAuditLogs(rows)
}

// DeleteOlderThan deletes entries created before olderThan.
func (m *MySQLAuditLogRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// CountOlderThan counts entries created before olderThan.
func (m *MySQLAuditLogRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`, olderThan).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit logs")
	}
	return count, nil
}

func scanMySQLAuditLogs(rows *sql.Rows) ([]*auditDomain.AuditLog, error) {
	defer func() {
		_ = rows.Close()
	}()

	logs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		var entry auditDomain.AuditLog
		var id, requestID, userID []byte
		var outcome string
		var metadata []byte

		err := rows.Scan(
			&id,
			&requestID,
			&userID,
			&entry.Action,
			&entry.ResourceZrn,
			&outcome,
			&metadata,
			&entry.MasterKeyID,
			&entry.Signature,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if err := entry.RequestID.UnmarshalBinary(requestID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal request id")
		}
		if err := entry.UserID.UnmarshalBinary(userID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
		}

		entry.Outcome = auditDomain.Outcome(outcome)
		if entry.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, err
		}

		logs = append(logs, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}
	return logs, nil
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
