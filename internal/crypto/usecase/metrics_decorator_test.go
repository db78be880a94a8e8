package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/crypto/usecase"
	usecaseMocks "github.com/zekret/vault/internal/crypto/usecase/mocks"
	metricsMocks "github.com/zekret/vault/internal/metrics/mocks"
)

func expectObserved(m *metricsMocks.MockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "crypto", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "crypto", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestKeyUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockKeyUseCase{}
	mockMetrics := &metricsMocks.MockBusinessMetrics{}
	uc := usecase.NewKeyUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()
	namespaceID := uuid.Must(uuid.NewV7())

	t.Run("Provision success", func(t *testing.T) {
		dk := &cryptoDomain.DataKey{NamespaceID: namespaceID, Version: 1}
		mockNext.On("Provision", ctx, namespaceID).Return(dk, nil).Once()
		expectObserved(mockMetrics, ctx, "data_key_provision", "success")

		res, err := uc.Provision(ctx, namespaceID)
		assert.NoError(t, err)
		assert.Equal(t, dk, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Rotate error", func(t *testing.T) {
		expectedErr := errors.New("lock wait timeout")
		mockNext.On("Rotate", ctx, namespaceID).Return(0, expectedErr).Once()
		expectObserved(mockMetrics, ctx, "data_key_rotate", "error")

		_, err := uc.Rotate(ctx, namespaceID)
		assert.ErrorIs(t, err, expectedErr)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Rewrap success", func(t *testing.T) {
		mockNext.On("Rewrap", ctx, 100).Return(7, nil).Once()
		expectObserved(mockMetrics, ctx, "data_key_rewrap", "success")

		count, err := uc.Rewrap(ctx, 100)
		assert.NoError(t, err)
		assert.Equal(t, 7, count)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("lookups pass through unobserved", func(t *testing.T) {
		dk := &cryptoDomain.DataKey{NamespaceID: namespaceID, Version: 2, Key: make([]byte, 32)}
		mockNext.On("ActiveKey", ctx, namespaceID).Return(dk, nil).Once()
		mockNext.On("Unwrap", ctx, namespaceID, 2).Return(dk, nil).Once()
		mockNext.On("Invalidate", namespaceID).Return().Once()

		active, err := uc.ActiveKey(ctx, namespaceID)
		assert.NoError(t, err)
		assert.Equal(t, 2, active.Version)

		_, err = uc.Unwrap(ctx, namespaceID, 2)
		assert.NoError(t, err)

		uc.Invalidate(namespaceID)

		mockNext.AssertExpectations(t)
		mockMetrics.AssertNumberOfCalls(t, "RecordOperation", 3)
	})
}
