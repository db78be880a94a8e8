package service

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

var algorithms = []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20}

func TestCipherEngine_RoundTrip(t *testing.T) {
	engine := NewCipherEngine(NewAEADManager())

	payloads := [][]byte{
		{},
		[]byte("hunter2"),
		bytes.Repeat([]byte("ssh-rsa AAAA"), 4096),
	}

	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			key := randomKey(t)
			ad := []byte("zekret/credential/v1|id|file|secret")

			for _, plaintext := range payloads {
				box, err := engine.Seal(key, alg, plaintext, ad)
				require.NoError(t, err)
				assert.Len(t, box.Nonce, 12)
				assert.Len(t, box.Tag, 16)
				assert.Len(t, box.Ciphertext, len(plaintext))

				opened, err := engine.Open(key, alg, box, ad)
				require.NoError(t, err)
				assert.Equal(t, len(plaintext), len(opened))
				assert.True(t, bytes.Equal(plaintext, opened))
			}
		})
	}
}

func TestCipherEngine_BitFlipsFailAuthentication(t *testing.T) {
	engine := NewCipherEngine(NewAEADManager())

	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			key := randomKey(t)
			ad := []byte("ad")

			box, err := engine.Seal(key, alg, []byte("secret text"), ad)
			require.NoError(t, err)

			for i := range box.Ciphertext {
				for bit := 0; bit < 8; bit++ {
					tampered := cloneBox(box)
					tampered.Ciphertext[i] ^= 1 << bit
					_, err := engine.Open(key, alg, tampered, ad)
					require.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
				}
			}

			for i := range box.Tag {
				for bit := 0; bit < 8; bit++ {
					tampered := cloneBox(box)
					tampered.Tag[i] ^= 1 << bit
					_, err := engine.Open(key, alg, tampered, ad)
					require.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
				}
			}
		})
	}
}

func TestCipherEngine_ContextMismatch(t *testing.T) {
	engine := NewCipherEngine(NewAEADManager())
	key := randomKey(t)

	box, err := engine.Seal(key, cryptoDomain.AESGCM, []byte("password"), []byte("credential-a"))
	require.NoError(t, err)

	t.Run("different associated data", func(t *testing.T) {
		_, err := engine.Open(key, cryptoDomain.AESGCM, box, []byte("credential-b"))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
	})

	t.Run("different key", func(t *testing.T) {
		_, err := engine.Open(randomKey(t), cryptoDomain.AESGCM, box, []byte("credential-a"))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
	})

	t.Run("different algorithm", func(t *testing.T) {
		_, err := engine.Open(key, cryptoDomain.ChaCha20, box, []byte("credential-a"))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
	})

	t.Run("truncated tag", func(t *testing.T) {
		tampered := cloneBox(box)
		tampered.Tag = tampered.Tag[:8]
		_, err := engine.Open(key, cryptoDomain.AESGCM, tampered, []byte("credential-a"))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
	})

	t.Run("short nonce", func(t *testing.T) {
		tampered := cloneBox(box)
		tampered.Nonce = tampered.Nonce[:4]
		_, err := engine.Open(key, cryptoDomain.AESGCM, tampered, []byte("credential-a"))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailure)
	})
}

func TestCipherEngine_FreshNoncePerSeal(t *testing.T) {
	engine := NewCipherEngine(NewAEADManager())
	key := randomKey(t)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		box, err := engine.Seal(key, cryptoDomain.ChaCha20, []byte("same"), nil)
		require.NoError(t, err)
		_, dup := seen[string(box.Nonce)]
		require.False(t, dup)
		seen[string(box.Nonce)] = struct{}{}
	}
}

func TestAEADManager_CreateCipher(t *testing.T) {
	am := NewAEADManager()

	for _, alg := range algorithms {
		aead, err := am.CreateCipher(randomKey(t), alg)
		require.NoError(t, err)
		assert.Equal(t, 16, aead.Overhead())
	}

	_, err := am.CreateCipher(make([]byte, 16), cryptoDomain.AESGCM)
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)

	_, err = am.CreateCipher(randomKey(t), cryptoDomain.Algorithm("rot13"))
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}

func cloneBox(b cryptoDomain.SealedBox) cryptoDomain.SealedBox {
	return cryptoDomain.SealedBox{
		Ciphertext: append([]byte(nil), b.Ciphertext...),
		Nonce:      append([]byte(nil), b.Nonce...),
		Tag:        append([]byte(nil), b.Tag...),
	}
}
