package domain

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xorKeeper is a reversible stand-in for a KMS keeper.
type xorKeeper struct {
	fail bool
}

func (k *xorKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return xor(plaintext), nil
}

func (k *xorKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if k.fail {
		return nil, errors.New("kms: access denied")
	}
	return xor(ciphertext), nil
}

func (k *xorKeeper) Close() error { return nil }

func xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ 0x5a
	}
	return out
}

func wrappedEntry(id string, key []byte) string {
	return id + ":" + base64.StdEncoding.EncodeToString(xor(key))
}

func TestLoadMasterKeyChain(t *testing.T) {
	ctx := context.Background()
	key1 := bytes.Repeat([]byte{1}, KeySize)
	key2 := bytes.Repeat([]byte{2}, KeySize)

	t.Run("loads and selects active key", func(t *testing.T) {
		raw := wrappedEntry("k1", key1) + ", " + wrappedEntry("k2", key2)

		mkc, err := LoadMasterKeyChain(ctx, &xorKeeper{}, raw, "k2")
		require.NoError(t, err)
		defer mkc.Close()

		assert.Equal(t, "k2", mkc.ActiveMasterKeyID())
		assert.Equal(t, key2, mkc.Active().Key)

		mk, ok := mkc.Get("k1")
		require.True(t, ok)
		assert.Equal(t, key1, mk.Key)

		_, ok = mkc.Get("k3")
		assert.False(t, ok)
	})

	tests := []struct {
		name     string
		raw      string
		activeID string
		keeper   *xorKeeper
		target   error
	}{
		{"missing keys", "", "k1", &xorKeeper{}, ErrMasterKeysNotSet},
		{"missing active id", wrappedEntry("k1", key1), "", &xorKeeper{}, ErrActiveMasterKeyIDNotSet},
		{"entry without separator", "k1", "k1", &xorKeeper{}, ErrInvalidMasterKeysFormat},
		{"bad base64", "k1:***", "k1", &xorKeeper{}, ErrInvalidMasterKeyBase64},
		{"kms failure", wrappedEntry("k1", key1), "k1", &xorKeeper{fail: true}, ErrKeyUnavailable},
		{"short key", wrappedEntry("k1", []byte("short")), "k1", &xorKeeper{}, ErrInvalidKeySize},
		{"active key absent", wrappedEntry("k1", key1), "k9", &xorKeeper{}, ErrActiveMasterKeyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mkc, err := LoadMasterKeyChain(ctx, tt.keeper, tt.raw, tt.activeID)
			assert.Nil(t, mkc)
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, ErrKeyUnavailable)
		})
	}
}

func TestMasterKeyChain_Close(t *testing.T) {
	key := bytes.Repeat([]byte{7}, KeySize)
	mkc, err := NewMasterKeyChain("k1", &MasterKey{ID: "k1", Key: key})
	require.NoError(t, err)

	mkc.Close()

	assert.Equal(t, make([]byte, KeySize), key)
	assert.Empty(t, mkc.ActiveMasterKeyID())
	_, ok := mkc.Get("k1")
	assert.False(t, ok)
}
