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

// MySQLDataKeyRepository implements data key persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data with transaction support.
type MySQLDataKeyRepository struct {
	db *sql.DB
}

// Create inserts a new data key.
func (m *MySQLDataKeyRepository) Create(ctx context.Context, dk *cryptoDomain.DataKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO data_keys (` + dataKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := dk.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal data key id")
	}

	namespaceID, err := dk.NamespaceID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		namespaceID,
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
func (m *MySQLDataKeyRepository) Get(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + dataKeyColumns + `
			  FROM data_keys
			  WHERE namespace_id = ? AND version = ?`

	nsID, err := namespaceID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal namespace id")
	}

	dk, err := scanMySQLDataKey(querier.QueryRowContext(ctx, query, nsID, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrUnknownKeyVersion
		}
		return nil, apperrors.Wrap(err, "failed to get data key")
	}

	return dk, nil
}

// ListByNamespace returns every data key of the namespace ordered by version.
func (m *MySQLDataKeyRepository) ListByNamespace(
	ctx context.Context,
	namespaceID uuid.UUID,
) ([]*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + dataKeyColumns + `
			  FROM data_keys
			  WHERE namespace_id = ?
			  ORDER BY version ASC`

	nsID, err := namespaceID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal namespace id")
	}

	rows, err := querier.QueryContext(ctx, query, nsID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list data keys")
	}
	defer func() { _ = rows.Close() }()

	return scanMySQLDataKeys(rows)
}

// GetActiveVersion reads the active key version of the namespace.
func (m *MySQLDataKeyRepository) GetActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	return m.activeVersion(ctx, `SELECT active_key_version FROM namespaces WHERE id = ?`, namespaceID)
}

// LockActiveVersion reads the active key version and holds a row lock until the
// surrounding transaction ends.
func (m *MySQLDataKeyRepository) LockActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	return m.activeVersion(ctx, `SELECT active_key_version FROM namespaces WHERE id = ? FOR UPDATE`, namespaceID)
}

func (m *MySQLDataKeyRepository) activeVersion(
	ctx context.Context,
	query string,
	namespaceID uuid.UUID,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	nsID, err := namespaceID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal namespace id")
	}

	var version int
	if err := querier.QueryRowContext(ctx, query, nsID).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, cryptoDomain.ErrNamespaceNotFound
		}
		return 0, database.TranslateError(err, "failed to read active key version")
	}
	return version, nil
}

// SetActiveVersion points the namespace at a new key version.
func (m *MySQLDataKeyRepository) SetActiveVersion(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) error {
	querier := database.GetTx(ctx, m.db)

	nsID, err := namespaceID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}

	result, err := querier.ExecContext(ctx, `UPDATE namespaces SET active_key_version = ? WHERE id = ?`, version, nsID)
	if err != nil {
		return database.TranslateError(err, "failed to set active key version")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return cryptoDomain.ErrNamespaceNotFound
	}
	return nil
}

// ListNotMasterKeyID returns up to limit data keys wrapped under a different master key.
func (m *MySQLDataKeyRepository) ListNotMasterKeyID(
	ctx context.Context,
	masterKeyID string,
	limit int,
) ([]*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + dataKeyColumns + `
			  FROM data_keys
			  WHERE master_key_id <> ?
			  ORDER BY created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, masterKeyID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list data keys")
	}
	defer func() { _ = rows.Close() }()

	return scanMySQLDataKeys(rows)
}

// Update replaces the wrapped key material of a data key.
func (m *MySQLDataKeyRepository) Update(ctx context.Context, dk *cryptoDomain.DataKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE data_keys
			  SET master_key_id = ?,
				  encrypted_key = ?,
				  nonce = ?
			  WHERE id = ?`

	id, err := dk.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal data key id")
	}

	_, err = querier.ExecContext(ctx, query, dk.MasterKeyID, dk.EncryptedKey, dk.Nonce, id)
	if err != nil {
		return database.TranslateError(err, "failed to update data key")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLDataKey(row rowScanner) (*cryptoDomain.DataKey, error) {
	var dk cryptoDomain.DataKey
	var idBytes, namespaceIDBytes []byte

	if err := row.Scan(
		&idBytes,
		&namespaceIDBytes,
		&dk.Version,
		&dk.MasterKeyID,
		&dk.Algorithm,
		&dk.EncryptedKey,
		&dk.Nonce,
		&dk.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := dk.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal data key id")
	}
	if err := dk.NamespaceID.UnmarshalBinary(namespaceIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal namespace id")
	}

	return &dk, nil
}

func scanMySQLDataKeys(rows *sql.Rows) ([]*cryptoDomain.DataKey, error) {
	var dks []*cryptoDomain.DataKey
	for rows.Next() {
		dk, err := scanMySQLDataKey(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan data key")
		}
		dks = append(dks, dk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate data keys")
	}
	return dks, nil
}

// NewMySQLDataKeyRepository creates a new MySQL data key repository.
func NewMySQLDataKeyRepository(db *sql.DB) *MySQLDataKeyRepository {
	return &MySQLDataKeyRepository{db: db}
}
