// Package repository implements token record persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
)

const tokenColumns = "id, user_id, kind, token_hash, expires_at, revoked_at, created_at"

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.Kind,
		token.TokenHash,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return database.TranslateError(err, "failed to create token")
	}
	return nil
}

// GetByID retrieves a Token by ID. Returns ErrTokenNotFound if it doesn't exist.
func (p *PostgreSQLTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	token, err := scanPostgreSQLToken(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return token, nil
}

// GetByTokenHash retrieves a Token of the given kind by its hash.
func (p *PostgreSQLTokenRepository) GetByTokenHash(
	ctx context.Context,
	kind authDomain.TokenKind,
	tokenHash string,
) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE kind = $1 AND token_hash = $2`

	token, err := scanPostgreSQLToken(querier.QueryRowContext(ctx, query, kind, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token by hash")
	}
	return token, nil
}

// Revoke marks a live token as revoked.
func (p *PostgreSQLTokenRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, at, id)
	if err != nil {
		return database.TranslateError(err, "failed to revoke token")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return authDomain.ErrTokenNotFound
	}
	return nil
}

// RevokeByUserID revokes every live token of a user.
func (p *PostgreSQLTokenRepository) RevokeByUserID(
	ctx context.Context,
	userID uuid.UUID,
	at time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, at, userID)
	if err != nil {
		return 0, database.TranslateError(err, "failed to revoke user tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// DeleteExpired deletes tokens that expired before the specified timestamp.
// All timestamps are expected in UTC.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// CountExpired counts tokens that expired before the specified timestamp without deleting them.
func (p *PostgreSQLTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM tokens WHERE expires_at < $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}

func scanPostgreSQLToken(row *sql.Row) (*authDomain.Token, error) {
	var token authDomain.Token
	var kind string
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&kind,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	token.Kind = authDomain.TokenKind(kind)
	return &token, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL Token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
