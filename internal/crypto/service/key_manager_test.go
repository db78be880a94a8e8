package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

func TestKeyManager_CreateAndUnwrap(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	master := &cryptoDomain.MasterKey{ID: "mk-1", Key: randomKey(t)}
	nsID := uuid.New()

	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			dk, err := km.CreateDataKey(master, alg, nsID, 1)
			require.NoError(t, err)

			assert.Equal(t, nsID, dk.NamespaceID)
			assert.Equal(t, 1, dk.Version)
			assert.Equal(t, "mk-1", dk.MasterKeyID)
			assert.Equal(t, alg, dk.Algorithm)
			assert.Len(t, dk.Key, cryptoDomain.KeySize)
			assert.NotContains(t, string(dk.EncryptedKey), string(dk.Key))

			plain, err := km.UnwrapDataKey(&dk, master)
			require.NoError(t, err)
			assert.Equal(t, dk.Key, plain)
		})
	}
}

func TestKeyManager_WrappedKeyIsBoundToNamespaceAndVersion(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	master := &cryptoDomain.MasterKey{ID: "mk-1", Key: randomKey(t)}

	dk, err := km.CreateDataKey(master, cryptoDomain.AESGCM, uuid.New(), 2)
	require.NoError(t, err)

	moved := dk
	moved.NamespaceID = uuid.New()
	_, err = km.UnwrapDataKey(&moved, master)
	assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)

	bumped := dk
	bumped.Version = 3
	_, err = km.UnwrapDataKey(&bumped, master)
	assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)

	other := &cryptoDomain.MasterKey{ID: "mk-2", Key: randomKey(t)}
	_, err = km.UnwrapDataKey(&dk, other)
	assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
}

func TestKeyManager_Rewrap(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	oldMaster := &cryptoDomain.MasterKey{ID: "mk-old", Key: randomKey(t)}
	newMaster := &cryptoDomain.MasterKey{ID: "mk-new", Key: randomKey(t)}

	dk, err := km.CreateDataKey(oldMaster, cryptoDomain.ChaCha20, uuid.New(), 1)
	require.NoError(t, err)
	original := append([]byte(nil), dk.Key...)

	require.NoError(t, km.WrapDataKey(&dk, newMaster))
	assert.Equal(t, "mk-new", dk.MasterKeyID)

	plain, err := km.UnwrapDataKey(&dk, newMaster)
	require.NoError(t, err)
	assert.Equal(t, original, plain)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	svc := NewKMSService()

	t.Run("local keeper round trip", func(t *testing.T) {
		keeper, err := svc.OpenKeeper(ctx, "base64key://")
		require.NoError(t, err)
		defer func() { _ = keeper.Close() }()

		ciphertext, err := keeper.Encrypt(ctx, []byte("master key bytes"))
		require.NoError(t, err)

		plaintext, err := keeper.Decrypt(ctx, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, []byte("master key bytes"), plaintext)
	})

	t.Run("empty uri", func(t *testing.T) {
		_, err := svc.OpenKeeper(ctx, "")
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSKeyURINotSet)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := svc.OpenKeeper(ctx, "nope://key")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyUnavailable)
	})
}
