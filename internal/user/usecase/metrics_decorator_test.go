package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	metricsMocks "github.com/zekret/vault/internal/metrics/mocks"
	"github.com/zekret/vault/internal/user/domain"
	"github.com/zekret/vault/internal/user/usecase"
	"github.com/zekret/vault/internal/user/usecase/mocks"
)

func TestUserUseCaseWithMetrics(t *testing.T) {
	next := &mocks.MockUseCase{}
	m := &metricsMocks.MockBusinessMetrics{}
	uc := usecase.NewUserUseCaseWithMetrics(next, m)
	id := uuid.Must(uuid.NewV7())

	next.On("Disable", mock.Anything, id).Return(domain.ErrUserNotFound)
	m.On("RecordOperation", mock.Anything, "user", "user_disable", "error").Once()
	m.On("RecordDuration", mock.Anything, "user", "user_disable", mock.Anything, "error").Once()

	err := uc.Disable(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	m.AssertExpectations(t)
}
