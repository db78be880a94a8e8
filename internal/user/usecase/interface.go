// Package usecase implements user registration, lookup and deactivation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/zekret/vault/internal/user/domain"
)

// RegisterUserInput contains the input data for user registration.
type RegisterUserInput struct {
	Email    string
	Username string
	Password string
}

// UserRepository persists users.
type UserRepository interface {
	// Create returns ErrUserAlreadyExists when the e-mail or username is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByLogin matches either the (lower-cased) e-mail or the username.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

// PasswordHasher hashes passwords for storage.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UseCase defines user operations.
type UseCase interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	// Disable deactivates the user; existing tokens stop authenticating immediately.
	Disable(ctx context.Context, id uuid.UUID) error
}
