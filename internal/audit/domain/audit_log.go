// Package domain defines the signed audit trail of access decisions.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zekret/vault/internal/errors"
)

// Outcome is the authorization decision an audit entry records.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
)

// AuditLog records one access decision on a namespace or credential.
//
// Metadata never carries secret material. Signature is an HMAC-SHA256 over the
// canonical form of the entry, keyed from the master key named by MasterKeyID.
type AuditLog struct {
	ID          uuid.UUID
	RequestID   uuid.UUID
	UserID      uuid.UUID
	Action      string
	ResourceZrn string
	Outcome     Outcome
	Metadata    map[string]any
	MasterKeyID string
	Signature   []byte
	CreatedAt   time.Time
}

// IsSigned reports whether the entry carries a signature.
func (a *AuditLog) IsSigned() bool {
	return len(a.Signature) > 0 && a.MasterKeyID != ""
}

var (
	// ErrSignatureInvalid indicates an entry whose signature does not match its content.
	ErrSignatureInvalid = errors.New("audit log signature invalid")

	// ErrAuditLogNotFound indicates no entry matches.
	ErrAuditLogNotFound = errors.Wrap(errors.ErrNotFound, "audit log not found")
)

type requestIDKey struct{}

// WithRequestID stores the id of the current request in the context.
func WithRequestID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored by WithRequestID, or uuid.Nil.
func RequestIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(requestIDKey{}).(uuid.UUID)
	return id
}
