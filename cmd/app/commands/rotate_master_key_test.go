package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunRotateMasterKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kmsProvider := "localsecrets"
	kmsKeyURI := "base64key://YWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXoxMjM0NTY="
	existingMasterKeys := "old-key:YWJjZGVmZ2hpamtsbW5vcA=="
	existingActiveKeyID := "old-key"

	t.Run("success", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, kmsKeyURI).Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return([]byte("encrypted-key"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunRotateMasterKey(
			ctx,
			mockService,
			logger,
			&out,
			"new-key",
			kmsProvider,
			kmsKeyURI,
			existingMasterKeys,
			existingActiveKeyID,
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), "KMS_PROVIDER=\"localsecrets\"")
		require.Contains(
			t,
			out.String(),
			"MASTER_KEYS=\"old-key:YWJjZGVmZ2hpamtsbW5vcA==,new-key:ZW5jcnlwdGVkLWtleQ==\"",
		)
		require.Contains(t, out.String(), "ACTIVE_MASTER_KEY_ID=\"new-key\"")
		require.Contains(t, out.String(), "app rewrap-deks")

		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("kms-open-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, kmsKeyURI).Return(nil, errors.New("kms error"))

		err := RunRotateMasterKey(
			ctx,
			mockService,
			logger,
			&bytes.Buffer{},
			"new-key",
			kmsProvider,
			kmsKeyURI,
			existingMasterKeys,
			existingActiveKeyID,
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "kms error")
	})

	t.Run("missing-kms-params", func(t *testing.T) {
		err := RunRotateMasterKey(ctx, &MockKMSService{}, logger, &bytes.Buffer{}, "new-key", "", "", "", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "KMS_PROVIDER and KMS_KEY_URI are required")
	})

	t.Run("missing-existing-keys", func(t *testing.T) {
		err := RunRotateMasterKey(ctx, &MockKMSService{}, logger, &bytes.Buffer{}, "new-key", kmsProvider, kmsKeyURI, "", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "MASTER_KEYS is not set")
	})

	t.Run("reused-key-id", func(t *testing.T) {
		mockService := &MockKMSService{}
		err := RunRotateMasterKey(
			ctx,
			mockService,
			logger,
			&bytes.Buffer{},
			existingActiveKeyID,
			kmsProvider,
			kmsKeyURI,
			existingMasterKeys,
			existingActiveKeyID,
		)
		require.Error(t, err)
		mockService.AssertNotCalled(t, "OpenKeeper", mock.Anything, mock.Anything)
	})
}
