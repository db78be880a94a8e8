package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/zekret/vault/internal/errors"
)

type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes a password with Argon2id.
func (p *passwordService) Hash(plain string) (string, error) {
	hash, err := p.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// Compare verifies a password against its hash in constant time.
func (p *passwordService) Compare(plain, hash string) bool {
	ok, err := p.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a PasswordService using the interactive Argon2id policy.
func NewPasswordService() (PasswordService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}
	return &passwordService{hasher: hasher}, nil
}
