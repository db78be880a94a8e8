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

const credentialColumns = `id, zrn, namespace_id, credential_type, title, key_version,
	metadata_ciphertext, metadata_nonce, metadata_tag,
	secret_ciphertext, secret_nonce, secret_tag,
	created_at, updated_at`

// Loads join the owning namespace for its zrn and owner.
const (
	credentialSelect = `SELECT c.id, c.zrn, c.namespace_id, n.zrn, n.user_id, c.credential_type, c.title,
	c.key_version, c.metadata_ciphertext, c.metadata_nonce, c.metadata_tag,
	c.secret_ciphertext, c.secret_nonce, c.secret_tag, c.created_at, c.updated_at
	FROM credentials c
	JOIN namespaces n ON n.id = c.namespace_id`

	credentialListSelect = `SELECT c.id, c.zrn, c.namespace_id, n.zrn, n.user_id, c.credential_type, c.title,
	c.key_version, c.metadata_ciphertext, c.metadata_nonce, c.metadata_tag, c.created_at, c.updated_at
	FROM credentials c
	JOIN namespaces n ON n.id = c.namespace_id`
)

func translateCredentialError(err error, message string) error {
	if database.IsUniqueViolation(err) {
		return vaultDomain.ErrCredentialAlreadyExists
	}
	return database.TranslateError(err, message)
}

// PostgreSQLCredentialRepository implements credential persistence for PostgreSQL.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a sealed credential.
func (p *PostgreSQLCredentialRepository) Create(ctx context.Context, cred *vaultDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := querier.ExecContext(
		ctx,
		query,
		cred.ID,
		cred.Zrn,
		cred.NamespaceID,
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
func (p *PostgreSQLCredentialRepository) GetByZrn(ctx context.Context, zrn string) (*vaultDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := credentialSelect + ` WHERE c.zrn = $1`

	var cred vaultDomain.Credential
	err := querier.QueryRowContext(ctx, query, zrn).Scan(
		&cred.ID,
		&cred.Zrn,
		&cred.NamespaceID,
		&cred.NamespaceZrn,
		&cred.OwnerID,
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
	return &cred, nil
}

// ListByNamespace returns a page of credentials in creation order. Secret columns are
// not read.
func (p *PostgreSQLCredentialRepository) ListByNamespace(
	ctx context.Context,
	namespaceID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Credential, error) {
	query := credentialListSelect + `
			  WHERE c.namespace_id = $1
			  ORDER BY c.created_at ASC, c.id ASC
			  LIMIT $2 OFFSET $3`

	return p.list(ctx, query, namespaceID, limit, offset)
}

// ListByUser returns a page of the credentials in every namespace of a user, newest
// namespace contents first. Secret columns are not read.
func (p *PostgreSQLCredentialRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.Credential, error) {
	query := credentialListSelect + `
			  WHERE n.user_id = $1
			  ORDER BY c.created_at DESC, c.id DESC
			  LIMIT $2 OFFSET $3`

	return p.list(ctx, query, userID, limit, offset)
}

func (p *PostgreSQLCredentialRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*vaultDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() { _ = rows.Close() }()

	creds := make([]*vaultDomain.Credential, 0)
	for rows.Next() {
		var cred vaultDomain.Credential
		if err := rows.Scan(
			&cred.ID,
			&cred.Zrn,
			&cred.NamespaceID,
			&cred.NamespaceZrn,
			&cred.OwnerID,
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
		creds = append(creds, &cred)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}
	return creds, nil
}

// Update replaces every mutable column of a credential.
func (p *PostgreSQLCredentialRepository) Update(ctx context.Context, cred *vaultDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials
			  SET namespace_id = $1,
				  credential_type = $2,
				  title = $3,
				  key_version = $4,
				  metadata_ciphertext = $5,
				  metadata_nonce = $6,
				  metadata_tag = $7,
				  secret_ciphertext = $8,
				  secret_nonce = $9,
				  secret_tag = $10,
				  updated_at = $11
			  WHERE id = $12`

	result, err := querier.ExecContext(
		ctx,
		query,
		cred.NamespaceID,
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
		cred.ID,
	)
	if err != nil {
		return translateCredentialError(err, "failed to update credential")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return vaultDomain.ErrCredentialNotFound
	}
	return nil
}

// Delete removes a credential.
func (p *PostgreSQLCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return database.TranslateError(err, "failed to delete credential")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return vaultDomain.ErrCredentialNotFound
	}
	return nil
}

// DeleteByNamespace removes every credential of a namespace and returns how many went.
func (p *PostgreSQLCredentialRepository) DeleteByNamespace(ctx context.Context, namespaceID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE namespace_id = $1`, namespaceID)
	if err != nil {
		return 0, database.TranslateError(err, "failed to delete credentials")
	}
	return result.RowsAffected()
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
