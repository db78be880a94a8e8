package domain

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuditLog_IsSigned(t *testing.T) {
	assert.False(t, (&AuditLog{}).IsSigned())
	assert.False(t, (&AuditLog{Signature: []byte{1}}).IsSigned())
	assert.True(t, (&AuditLog{Signature: []byte{1}, MasterKeyID: "mk-1"}).IsSigned())
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, uuid.Nil, RequestIDFrom(context.Background()))

	id := uuid.New()
	ctx := WithRequestID(context.Background(), id)
	assert.Equal(t, id, RequestIDFrom(ctx))
}
