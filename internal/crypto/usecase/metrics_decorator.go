package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/metrics"
)

const metricsDomain = "crypto"

type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
// Lookups (ActiveKey, Unwrap) are covered by the key cache counters instead.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{next: useCase, metrics: m}
}

func (k *keyUseCaseWithMetrics) Provision(
	ctx context.Context,
	namespaceID uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	start := time.Now()
	dk, err := k.next.Provision(ctx, namespaceID)
	metrics.Observe(ctx, k.metrics, metricsDomain, "data_key_provision", start, err)
	return dk, err
}

func (k *keyUseCaseWithMetrics) ActiveKey(
	ctx context.Context,
	namespaceID uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	return k.next.ActiveKey(ctx, namespaceID)
}

func (k *keyUseCaseWithMetrics) Unwrap(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	return k.next.Unwrap(ctx, namespaceID, version)
}

func (k *keyUseCaseWithMetrics) Rotate(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	start := time.Now()
	version, err := k.next.Rotate(ctx, namespaceID)
	metrics.Observe(ctx, k.metrics, metricsDomain, "data_key_rotate", start, err)
	return version, err
}

func (k *keyUseCaseWithMetrics) Rewrap(ctx context.Context, batchSize int) (int, error) {
	start := time.Now()
	count, err := k.next.Rewrap(ctx, batchSize)
	metrics.Observe(ctx, k.metrics, metricsDomain, "data_key_rewrap", start, err)
	return count, err
}

func (k *keyUseCaseWithMetrics) Invalidate(namespaceID uuid.UUID) {
	k.next.Invalidate(namespaceID)
}
