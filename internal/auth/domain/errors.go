package domain

import (
	"github.com/zekret/vault/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken covers malformed, expired, revoked and foreign tokens.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrUserDisabled indicates a deactivated user.
	ErrUserDisabled = errors.Wrap(errors.ErrUnauthorized, "user disabled")

	// ErrAccessDenied indicates an attempt on a resource owned by another user.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrTokenNotFound indicates no token record matches.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")
)
