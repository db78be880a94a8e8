package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
	authDomain "github.com/zekret/vault/internal/auth/domain"
	apperrors "github.com/zekret/vault/internal/errors"
)

// Audited resource kinds; the audit action is "<kind>.<action>".
const (
	kindNamespace  = "namespace"
	kindCredential = "credential"
)

// guard authorizes the caller and records the decision.
type guard struct {
	authorizer Authorizer
	audit      AuditRecorder
}

func (g *guard) identity(ctx context.Context) (*authDomain.Identity, error) {
	identity, ok := authDomain.IdentityFrom(ctx)
	if !ok {
		return nil, authDomain.ErrInvalidToken
	}
	return identity, nil
}

// check authorizes action on a resource owned by ownerID and records the outcome.
// A denied decision is returned even when recording fails. An allowed decision that
// cannot be recorded fails the operation.
func (g *guard) check(
	ctx context.Context,
	identity *authDomain.Identity,
	kind string,
	action authDomain.Action,
	resourceZrn string,
	ownerID uuid.UUID,
	metadata map[string]any,
) error {
	decision := g.authorizer.Authorize(identity, action, ownerID)

	outcome := auditDomain.OutcomeAllowed
	if decision != nil {
		outcome = auditDomain.OutcomeDenied
	}

	recordErr := g.audit.Record(ctx, auditUseCase.Entry{
		UserID:      identity.UserID,
		Action:      kind + "." + string(action),
		ResourceZrn: resourceZrn,
		Outcome:     outcome,
		Metadata:    metadata,
	})

	if decision != nil {
		return errors.Join(decision, recordErr)
	}
	if recordErr != nil {
		return apperrors.Wrap(recordErr, "failed to record audit log")
	}
	return nil
}
