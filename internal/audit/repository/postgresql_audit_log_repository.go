// Package repository implements audit log persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
)

const auditLogColumns = "id, request_id, user_id, action, resource_zrn, outcome, metadata, " +
	"master_key_id, signature, created_at"

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
// Metadata is stored as JSONB; NULL when empty.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new AuditLog.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RequestID,
		entry.UserID,
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
func (p *PostgreSQLAuditLogRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM audit_logs WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		auditLogColumns, strings.Join(conditions, " AND "), len(args)-1, len(args),
	)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return scanPostgreSQLAuditLogs(rows)
}

// ListByTimeRange returns entries in [start, end] ordered oldest first.
func (p *PostgreSQLAuditLogRepository) ListByTimeRange(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs
			  WHERE created_at >= $1 AND created_at <= $2
			  ORDER BY created_at ASC, id ASC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, start, end, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs by time range")
	}
	return scanPostgreSQLAuditLogs(rows)
}

// DeleteOlderThan deletes entries created before olderThan.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
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
func (p *PostgreSQLAuditLogRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`, olderThan).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit logs")
	}
	return count, nil
}

func scanPostgreSQLAuditLogs(rows *sql.Rows) ([]*auditDomain.AuditLog, error) {
	defer func() {
		_ = rows.Close()
	}()

	logs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		var entry auditDomain.AuditLog
		var outcome string
		var metadata []byte

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.UserID,
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

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log metadata")
	}
	return b, nil
}

func unmarshalMetadata(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(b, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit log metadata")
	}
	return metadata, nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}
