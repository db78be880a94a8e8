// Package repository implements data key persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
)

const dataKeyColumns = `id, namespace_id, version, master_key_id, algorithm, encrypted_key, nonce, created_at`

// PostgreSQLDataKeyRepository implements data key persistence for PostgreSQL.
// Uses native UUID and BYTEA types with transaction support via database.GetTx().
type PostgreSQLDataKeyRepository struct {
	db *sql.DB
}

// Create inserts a new data key.
func (p *PostgreSQLDataKeyRepository) Create(ctx context.Context, dk *cryptoDomain.DataKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO data_keys (` + dataKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		dk.ID,
		dk.NamespaceID,
		dk.Version,
		dk.MasterKeyID,
		dk.Algorithm,
		dk.EncryptedKey,
		dk.Nonce,
		dk.CreatedAt,
	)
	if err != nil {
		return database.TranslateError(err, "failed to create data key")
	}
	return nil
}

// Get retrieves one version of a namespace data key.
func (p *PostgreSQLDataKeyRepository) Get(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + dataKeyColumns + `
			  FROM data_keys
			  WHERE namespace_id = $1 AND version = $2`

	var dk cryptoDomain.DataKey
	err := querier.QueryRowContext(ctx, query, namespaceID, version).Scan(
		&dk.ID,
		&dk.NamespaceID,
		&dk.Version,
		&dk.MasterKeyID,
		&dk.Algorithm,
		&dk.EncryptedKey,
		&dk.Nonce,
		&dk.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrUnknownKeyVersion
		}
		return nil, apperrors.Wrap(err, "failed to get data key")
	}

	return &dk, nil
}

// ListByNamespace returns every data key of the namespace ordered by version.
func (p *PostgreSQLDataKeyRepository) ListByNamespace(
	ctx context.Context,
	namespaceID uuid.UUID,
) ([]*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + dataKeyColumns + `
			  FROM data_keys
			  WHERE namespace_id = $1
			  ORDER BY version ASC`

	rows, err := querier.QueryContext(ctx, query, namespaceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list data keys")
	}
	defer func() { _ = rows.Close() }()

	return scanPostgreSQLDataKeys(rows)
}

// GetActiveVersion reads the active key version of the namespace.
func (p *PostgreSQLDataKeyRepository) GetActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	return p.activeVersion(ctx, `SELECT active_key_version FROM namespaces WHERE id = $1`, namespaceID)
}

// LockActiveVersion reads the active key version and holds a row lock until the
// surrounding transaction ends.
func (p *PostgreSQLDataKeyRepository) LockActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	return p.activeVersion(ctx, `SELECT active_key_version FROM namespaces WHERE id = $1 FOR UPDATE`, namespaceID)
}

func (p *PostgreSQLDataKeyRepository) activeVersion(
	ctx context.Context,
	query string,
	namespaceID uuid.UUID,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var version int
	if err := querier.QueryRowContext(ctx, query, namespaceID).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, cryptoDomain.ErrNamespaceNotFound
		}
		return 0, database.TranslateError(err, "failed to read active key version")
	}
	return version, nil
}

// SetActiveVersion points the namespace at a new key version.
func (p *PostgreSQLDataKeyRepository) SetActiveVersion(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE namespaces SET active_key_version = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, version, namespaceID)
	if err != nil {
		return database.TranslateError(err, "failed to set active key version")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return cryptoDomain.ErrNamespaceNotFound
	}
	return nil
}

// ListNotMasterKeyID returns up to limit data keys wrapped under a different master key.
func (p *PostgreSQLDataKeyRepository) ListNotMasterKeyID(
	ctx context.Context,
	masterKeyID string,
	limit int,
) ([]*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + dataKeyColumns + `
			  FROM data_keys
			  WHERE master_key_id <> $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, masterKeyID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list data keys")
	}
	defer func() { _ = rows.Close() }()

	return scanPostgreSQLDataKeys(rows)
}

// Update replaces the wrapped key material of a data key.
func (p *PostgreSQLDataKeyRepository) Update(ctx context.Context, dk *cryptoDomain.DataKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE data_keys
			  SET master_key_id = $1,
				  encrypted_key = $2,
				  nonce = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, dk.MasterKeyID, dk.EncryptedKey, dk.Nonce, dk.ID)
	if err != nil {
		return database.TranslateError(err, "failed to update data key")
	}
	return nil
}

func scanPostgreSQLDataKeys(rows *sql.Rows) ([]*cryptoDomain.DataKey, error) {
	var dks []*cryptoDomain.DataKey
	for rows.Next() {
		var dk cryptoDomain.DataKey
		if err := rows.Scan(
			&dk.ID,
			&dk.NamespaceID,
			&dk.Version,
			&dk.MasterKeyID,
			&dk.Algorithm,
			&dk.EncryptedKey,
			&dk.Nonce,
			&dk.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan data key")
		}
		dks = append(dks, &dk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate data keys")
	}
	return dks, nil
}

// NewPostgreSQLDataKeyRepository creates a new PostgreSQL data key repository.
func NewPostgreSQLDataKeyRepository(db *sql.DB) *PostgreSQLDataKeyRepository {
	return &PostgreSQLDataKeyRepository{db: db}
}
