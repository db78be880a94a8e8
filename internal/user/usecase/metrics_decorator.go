package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zekret/vault/internal/metrics"
	"github.com/zekret/vault/internal/user/domain"
)

type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{next: useCase, metrics: m}
}

func (u *userUseCaseWithMetrics) Register(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Register(ctx, input)
	metrics.Observe(ctx, u.metrics, "user", "user_register", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.Get(ctx, id)
	metrics.Observe(ctx, u.metrics, "user", "user_get", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetByLogin(ctx, login)
	metrics.Observe(ctx, u.metrics, "user", "user_get_by_login", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Disable(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := u.next.Disable(ctx, id)
	metrics.Observe(ctx, u.metrics, "user", "user_disable", start, err)
	return err
}
