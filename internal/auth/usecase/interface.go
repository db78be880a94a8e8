// Package usecase implements authentication and authorization: login, token rotation,
// bearer token verification and ownership checks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	userDomain "github.com/zekret/vault/internal/user/domain"
)

// UserRepository is the read side of user persistence needed to authenticate.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	GetByLogin(ctx context.Context, login string) (*userDomain.User, error)
}

// TokenRepository persists issued token records.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error

	// GetByID returns ErrTokenNotFound when no record matches.
	GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Token, error)

	// GetByTokenHash returns ErrTokenNotFound when no record of that kind matches.
	GetByTokenHash(ctx context.Context, kind authDomain.TokenKind, tokenHash string) (*authDomain.Token, error)

	// Revoke marks a live token revoked. A token that is unknown or already revoked
	// yields ErrTokenNotFound.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error

	// RevokeByUserID revokes every live token of a user and returns how many were revoked.
	RevokeByUserID(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)

	// DeleteExpired deletes tokens that expired before olderThan.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)

	// CountExpired counts tokens that expired before olderThan without deleting them.
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// TokenUseCase issues, rotates, revokes and verifies tokens.
type TokenUseCase interface {
	// Login verifies credentials, revokes the user's previous tokens and issues a new pair.
	// Unknown users and wrong passwords both yield ErrInvalidCredentials.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.TokenPair, error)

	// Refresh exchanges a live refresh token for a new pair. The presented token is
	// consumed; replaying it fails with ErrInvalidToken.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error)

	// Logout revokes every token of the user.
	Logout(ctx context.Context, userID uuid.UUID) error

	// Authenticate verifies a bearer access token and resolves the caller.
	Authenticate(ctx context.Context, accessToken string) (*authDomain.Identity, error)

	// CleanupExpired deletes tokens that expired more than days ago.
	// In dry-run mode it only counts them.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}

// Authorizer decides whether an identity may act on a resource.
type Authorizer interface {
	// Authorize returns ErrAccessDenied unless the identity owns the resource.
	Authorize(identity *authDomain.Identity, action authDomain.Action, ownerID uuid.UUID) error
}
