// Package repository implements namespace and credential persistence for PostgreSQL and MySQL.
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

const namespaceColumns = `id, zrn, user_id, name, description, active_key_version, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// translateNamespaceError maps constraint violations on the namespaces table.
func translateNamespaceError(err error, message string) error {
	switch {
	case database.IsUniqueViolation(err):
		return vaultDomain.ErrNamespaceAlreadyExists
	case database.IsForeignKeyViolation(err):
		return vaultDomain.ErrNamespaceNotEmpty
	default:
		return database.TranslateError(err, message)
	}
}

// PostgreSQLNamespaceRepository implements namespace persistence for PostgreSQL.
type PostgreSQLNamespaceRepository struct {
	db *sql.DB
}

// Create inserts a new namespace. A second namespace with the same name for the same
// user yields ErrNamespaceAlreadyExists.
func (p *PostgreSQLNamespaceRepository) Create(ctx context.Context, ns *vaultDomain.Namespace) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO namespaces (` + namespaceColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		ns.ID,
		ns.Zrn,
		ns.UserID,
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
func (p *PostgreSQLNamespaceRepository) GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + namespaceColumns + ` FROM namespaces WHERE zrn = $1`

	ns, err := scanPostgreSQLNamespace(querier.QueryRowContext(ctx, query, zrn))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrNamespaceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get namespace")
	}
	return ns, nil
}

// ListByUser returns a page of the user's namespaces ordered by name.
func (p *PostgreSQLNamespaceRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Namespace, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + namespaceColumns + `
			  FROM namespaces
			  WHERE user_id = $1
			  ORDER BY name ASC, id ASC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list namespaces")
	}
	defer func() { _ = rows.Close() }()

	namespaces := make([]*vaultDomain.Namespace, 0)
	for rows.Next() {
		ns, err := scanPostgreSQLNamespace(rows)
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

// Update writes name, description and updated_at. The active key version belongs to
// the key use case and is left alone.
func (p *PostgreSQLNamespaceRepository) Update(ctx context.Context, ns *vaultDomain.Namespace) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE namespaces
			  SET name = $1,
				  description = $2,
				  updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, ns.Name, ns.Description, ns.UpdatedAt, ns.ID)
	if err != nil {
		return translateNamespaceError(err, "failed to update namespace")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return vaultDomain.ErrNamespaceNotFound
	}
	return nil
}

// Delete removes a namespace. Data keys go with it through the schema; remaining
// credentials make it fail with ErrNamespaceNotEmpty.
func (p *PostgreSQLNamespaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM namespaces WHERE id = $1`, id)
	if err != nil {
		return translateNamespaceError(err, "failed to delete namespace")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return vaultDomain.ErrNamespaceNotFound
	}
	return nil
}

// CountCredentials returns how many credentials the namespace holds.
func (p *PostgreSQLNamespaceRepository) CountCredentials(ctx context.Context, id uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials WHERE namespace_id = $1`, id).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count credentials")
	}
	return count, nil
}

func scanPostgreSQLNamespace(row rowScanner) (*vaultDomain.Namespace, error) {
	var ns vaultDomain.Namespace
	if err := row.Scan(
		&ns.ID,
		&ns.Zrn,
		&ns.UserID,
		&ns.Name,
		&ns.Description,
		&ns.ActiveKeyVersion,
		&ns.CreatedAt,
		&ns.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ns, nil
}

// NewPostgreSQLNamespaceRepository creates a new PostgreSQL namespace repository.
func NewPostgreSQLNamespaceRepository(db *sql.DB) *PostgreSQLNamespaceRepository {
	return &PostgreSQLNamespaceRepository{db: db}
}
