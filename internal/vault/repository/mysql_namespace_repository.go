package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
)

// MySQLNamespaceRepository implements namespace persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLNamespaceRepository struct {
	db *sql.DB
}

// Create inserts a new namespace.
func (m *MySQLNamespaceRepository) Create(ctx context.Context, ns *vaultDomain.Namespace) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO namespaces (` + namespaceColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := ns.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}
	userID, err := ns.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		ns.Zrn,
		userID,
		ns.Name,
		ns.Description,
		ns.ActiveKeyVersion,
		ns.CreatedAt,
		ns.UpdatedAt,
	)
	if err != nil {
		return translateNamespaceError(err, "failed to create namespace")
	}
	return nil
}

// GetByZrn retrieves a namespace by its zrn.
func (m *MySQLNamespaceRepository) GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + namespaceColumns + ` FROM namespaces WHERE zrn = ?`

	ns, err := scanMySQLNamespace(querier.QueryRowContext(ctx, query, zrn))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrNamespaceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get namespace")
	}
	return ns, nil
}

// ListByUser returns a page of the user's namespaces ordered by name.
func (m *MySQLNamespaceRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Namespace, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + namespaceColumns + `
			  FROM namespaces
			  WHERE user_id = ?
			  ORDER BY name ASC, id ASC
			  LIMIT ? OFFSET ?`

	uid, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, uid, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list namespaces")
	}
	defer func() { _ = rows.Close() }()

	namespaces := make([]*vaultDomain.Namespace, 0)
	for rows.Next() {
		ns, err := scanMySQLNamespace(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan namespace")
		}
		namespaces = append(namespaces, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate namespaces")
	}
	return namespaces, nil
}

// Update writes name, description and updated_at.
func (m *MySQLNamespaceRepository) Update(ctx context.Context, ns *vaultDomain.Namespace) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE namespaces
			  SET name = ?,
				  description = ?,
				  updated_at = ?
			  WHERE id = ?`

	id, err := ns.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}

	// RowsAffected counts changed rows only on MySQL; callers load the row first.
	_, err = querier.ExecContext(ctx, query, ns.Name, ns.Description, ns.UpdatedAt, id)
	if err != nil {
		return translateNamespaceError(err, "failed to update namespace")
	}
	return nil
}

// Delete removes a namespace.
func (m *MySQLNamespaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	nsID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM namespaces WHERE id = ?`, nsID)
	if err != nil {
		return translateNamespaceError(err, "failed to delete namespace")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return vaultDomain.ErrNamespaceNotFound
	}
	return nil
}

// CountCredentials returns how many credentials the namespace holds.
func (m *MySQLNamespaceRepository) CountCredentials(ctx context.Context, id uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	nsID, err := id.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal namespace id")
	}

	var count int64
	err = querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials WHERE namespace_id = ?`, nsID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count credentials")
	}
	return count, nil
}

func scanMySQLNamespace(row rowScanner) (*vaultDomain.Namespace, error) {
	var ns vaultDomain.Namespace
	var idBytes, userIDBytes []byte

	if err := row.Scan(
		&idBytes,
		&ns.Zrn,
		&userIDBytes,
		&ns.Name,
		&ns.Description,
		&ns.ActiveKeyVersion,
		&ns.CreatedAt,
		&ns.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := ns.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal namespace id")
	}
	if err := ns.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	return &ns, nil
}

// NewMySQLNamespaceRepository creates a new MySQL namespace repository.
func NewMySQLNamespaceRepository(db *sql.DB) *MySQLNamespaceRepository {
	return &MySQLNamespaceRepository{db: db}
}
