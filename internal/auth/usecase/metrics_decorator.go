package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	"github.com/zekret/vault/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login attempts.
func (t *tokenUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Login(ctx, input)
	metrics.Observe(ctx, t.metrics, "auth", "token_login", start, err)
	return pair, err
}

// Refresh records metrics for token rotation.
func (t *tokenUseCaseWithMetrics) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Refresh(ctx, refreshToken)
	metrics.Observe(ctx, t.metrics, "auth", "token_refresh", start, err)
	return pair, err
}

// Logout records metrics for logouts.
func (t *tokenUseCaseWithMetrics) Logout(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := t.next.Logout(ctx, userID)
	metrics.Observe(ctx, t.metrics, "auth", "token_logout", start, err)
	return err
}

// Authenticate records metrics for bearer token verification.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	accessToken string,
) (*authDomain.Identity, error) {
	start := time.Now()
	identity, err := t.next.Authenticate(ctx, accessToken)
	metrics.Observe(ctx, t.metrics, "auth", "token_authenticate", start, err)
	return identity, err
}

// CleanupExpired records metrics for expired token cleanup.
func (t *tokenUseCaseWithMetrics) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := t.next.CleanupExpired(ctx, days, dryRun)
	metrics.Observe(ctx, t.metrics, "auth", "token_cleanup_expired", start, err)
	return count, err
}
