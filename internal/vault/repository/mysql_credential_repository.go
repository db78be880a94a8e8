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

// MySQLCredentialRepository implements credential persistence for MySQL.
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a sealed credential.
func (m *MySQLCredentialRepository) Create(ctx context.Context, cred *vaultDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := cred.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	namespaceID, err := cred.NamespaceID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		cred.Zrn,
		namespaceID,
		cred.Type,
		cred.Title,
		cred.KeyVersion,
		cred.MetadataBox.Ciphertext,
		cred.MetadataBox.Nonce,
		cred.MetadataBox.Tag,
		cred.SecretBox.Ciphertext,
		cred.SecretBox.Nonce,
		cred.SecretBox.Tag,
		cred.CreatedAt,
		cred.UpdatedAt,
	)
	if err != nil {
		return translateCredentialError(err, "failed to create credential")
	}
	return nil
}

// GetByZrn retrieves a credential with both boxes.
func (m *MySQLCredentialRepository) GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := credentialSelect + ` WHERE c.zrn = ?`

	var cred vaultDomain.Credential
	var idBytes, namespaceIDBytes, ownerIDBytes []byte

	err := querier.QueryRowContext(ctx, query, zrn).Scan(
		&idBytes,
		&cred.Zrn,
		&namespaceIDBytes,
		&cred.NamespaceZrn,
		&ownerIDBytes,
		&cred.Type,
		&cred.Title,
		&cred.KeyVersion,
		&cred.MetadataBox.Ciphertext,
		&cred.MetadataBox.Nonce,
		&cred.MetadataBox.Tag,
		&cred.SecretBox.Ciphertext,
		&cred.SecretBox.Nonce,
		&cred.SecretBox.Tag,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}

	if err := unmarshalCredentialIDs(&cred, idBytes, namespaceIDBytes, ownerIDBytes); err != nil {
		return nil, err
	}
	return &cred, nil
}

// ListByNamespace returns a page of credentials in creation order without secret columns.
func (m *MySQLCredentialRepository) ListByNamespace(
	ctx context.Context,
	namespaceID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Credential, error) {
	query := credentialListSelect + `
			  WHERE c.namespace_id = ?
			  ORDER BY c.created_at ASC, c.id ASC
			  LIMIT ? OFFSET ?`

	nsID, err := namespaceID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal namespace id")
	}
	return m.list(ctx, query, nsID, limit, offset)
}

// ListByUser returns a page of the credentials in every namespace of a user, newest
// first, without secret columns.
func (m *MySQLCredentialRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Credential, error) {
	query := credentialListSelect + `
			  WHERE n.user_id = ?
			  ORDER BY c.created_at DESC, c.id DESC
			  LIMIT ? OFFSET ?`

	uID, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	return m.list(ctx, query, uID, limit, offset)
}

func (m *MySQLCredentialRepository) list(ctx context.Context, query string, args ...any) ([]*vaultDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() { _ = rows.Close() }()

	creds := make([]*vaultDomain.Credential, 0)
	for rows.Next() {
		var cred vaultDomain.Credential
		var idBytes, namespaceIDBytes, ownerIDBytes []byte

		if err := rows.Scan(
			&idBytes,
			&cred.Zrn,
			&namespaceIDBytes,
			&cred.NamespaceZrn,
			&ownerIDBytes,
			&cred.Type,
			&cred.Title,
			&cred.KeyVersion,
			&cred.MetadataBox.Ciphertext,
			&cred.MetadataBox.Nonce,
			&cred.MetadataBox.Tag,
			&cred.CreatedAt,
			&cred.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		if err := unmarshalCredentialIDs(&cred, idBytes, namespaceIDBytes, ownerIDBytes); err != nil {
			return nil, err
		}
		creds = append(creds, &cred)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}
	return creds, nil
}

// Update replaces every mutable column of a credential.
func (m *MySQLCredentialRepository) Update(ctx context.Context, cred *vaultDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials
			  SET namespace_id = ?,
				  credential_type = ?,
				  title = ?,
				  key_version = ?,
				  metadata_ciphertext = ?,
				  metadata_nonce = ?,
				  metadata_tag = ?,
				  secret_ciphertext = ?,
				  secret_nonce = ?,
				  secret_tag = ?,
				  updated_at = ?
			  WHERE id = ?`

	id, err := cred.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	namespaceID, err := cred.NamespaceID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal namespace id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		namespaceID,
		cred.Type,
		cred.Title,
		cred.KeyVersion,
		cred.MetadataBox.Ciphertext,
		cred.MetadataBox.Nonce,
		cred.MetadataBox.Tag,
		cred.SecretBox.Ciphertext,
		cred.SecretBox.Nonce,
		cred.SecretBox.Tag,
		cred.UpdatedAt,
		id,
	)
	if err != nil {
		return translateCredentialError(err, "failed to update credential")
	}
	return nil
}

// Delete removes a credential.
func (m *MySQLCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	credID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, credID)
	if err != nil {
		return database.TranslateError(err, "failed to delete credential")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return vaultDomain.ErrCredentialNotFound
	}
	return nil
}

// DeleteByNamespace removes every credential of a namespace and returns how many went.
func (m *MySQLCredentialRepository) DeleteByNamespace(ctx context.Context, namespaceID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	nsID, err := namespaceID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal namespace id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE namespace_id = ?`, nsID)
	if err != nil {
		return 0, database.TranslateError(err, "failed to delete credentials")
	}
	return result.RowsAffected()
}

func unmarshalCredentialIDs(cred *vaultDomain.Credential, id, namespaceID, ownerID []byte) error {
	if err := cred.ID.UnmarshalBinary(id); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal credential id")
	}
	if err := cred.NamespaceID.UnmarshalBinary(namespaceID); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal namespace id")
	}
	if err := cred.OwnerID.UnmarshalBinary(ownerID); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal owner id")
	}
	return nil
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
