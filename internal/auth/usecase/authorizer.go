package usecase

import (
	"github.com/google/uuid"

	authDomain "github.com/zekret/vault/internal/auth/domain"
)

// ownerAuthorizer grants every action to the owner of a resource and nothing to anyone
// else. There is no sharing or admin override.
type ownerAuthorizer struct{}

// NewAuthorizer creates the ownership based Authorizer.
func NewAuthorizer() Authorizer {
	return ownerAuthorizer{}
}

func (ownerAuthorizer) Authorize(identity *authDomain.Identity, action authDomain.Action, ownerID uuid.UUID) error {
	if identity == nil || identity.UserID == uuid.Nil || ownerID == uuid.Nil {
		return authDomain.ErrAccessDenied
	}
	if !action.Valid() {
		return authDomain.ErrAccessDenied
	}
	if identity.UserID != ownerID {
		return authDomain.ErrAccessDenied
	}
	return nil
}
