// Package domain defines the user entity and its errors.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/zekret/vault/internal/errors"
)

// User is an account that owns namespaces. Users are deactivated, never deleted, while
// namespaces reference them.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates the e-mail or username is taken.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
