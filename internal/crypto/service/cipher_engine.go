package service

import (
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

// CipherEngineService seals payloads into boxes with a detached tag.
//
// It never logs and never keeps a reference to keys or plaintext. Tag verification is
// the constant-time check of the underlying AEAD.
type CipherEngineService struct {
	aeadManager AEADManager
}

// NewCipherEngine creates a CipherEngineService.
func NewCipherEngine(aeadManager AEADManager) *CipherEngineService {
	return &CipherEngineService{aeadManager: aeadManager}
}

// Seal encrypts plaintext under key with a fresh nonce and binds ad into the tag.
//
// Parameters:
//   - key: 32-byte data key
//   - alg: algorithm of the data key
//   - plaintext: payload, may be empty
//   - ad: associated data that must be presented again to Open
//
// Returns the box with Ciphertext, Nonce and Tag split apart for storage.
func (e *CipherEngineService) Seal(
	key []byte,
	alg cryptoDomain.Algorithm,
	plaintext, ad []byte,
) (cryptoDomain.SealedBox, error) {
	aead, err := e.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return cryptoDomain.SealedBox{}, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, ad)
	if err != nil {
		return cryptoDomain.SealedBox{}, err
	}

	split := len(sealed) - aead.Overhead()
	return cryptoDomain.SealedBox{
		Ciphertext: sealed[:split:split],
		Nonce:      nonce,
		Tag:        sealed[split:],
	}, nil
}

// Open verifies and decrypts box. Any mismatch of key, ciphertext, nonce, tag or ad
// yields ErrAuthenticationFailure without further detail.
func (e *CipherEngineService) Open(
	key []byte,
	alg cryptoDomain.Algorithm,
	box cryptoDomain.SealedBox,
	ad []byte,
) ([]byte, error) {
	aead, err := e.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	if len(box.Tag) != aead.Overhead() {
		return nil, cryptoDomain.ErrAuthenticationFailure
	}

	sealed := make([]byte, 0, len(box.Ciphertext)+len(box.Tag))
	sealed = append(sealed, box.Ciphertext...)
	sealed = append(sealed, box.Tag...)

	return aead.Decrypt(sealed, box.Nonce, ad)
}
