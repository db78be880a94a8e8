package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
)

// KeyManagerService wraps data keys under master keys.
//
// The wrap uses the data key's own algorithm and binds WrapAssociatedData, so a wrapped
// key copied to another namespace or version no longer opens.
type KeyManagerService struct {
	aeadManager AEADManager
}

// NewKeyManager creates a new KeyManagerService.
func NewKeyManager(aeadManager AEADManager) *KeyManagerService {
	return &KeyManagerService{aeadManager: aeadManager}
}

// CreateDataKey generates 32 random bytes and wraps them under masterKey.
func (km *KeyManagerService) CreateDataKey(
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
	namespaceID uuid.UUID,
	version int,
) (cryptoDomain.DataKey, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return cryptoDomain.DataKey{}, fmt.Errorf("failed to generate data key: %w", err)
	}

	dk := cryptoDomain.DataKey{
		ID:          uuid.Must(uuid.NewV7()),
		NamespaceID: namespaceID,
		Version:     version,
		Algorithm:   alg,
		Key:         key,
		CreatedAt:   time.Now().UTC(),
	}

	if err := km.WrapDataKey(&dk, masterKey); err != nil {
		dk.Wipe()
		return cryptoDomain.DataKey{}, err
	}

	return dk, nil
}

// WrapDataKey wraps dk.Key under masterKey.
func (km *KeyManagerService) WrapDataKey(dk *cryptoDomain.DataKey, masterKey *cryptoDomain.MasterKey) error {
	aead, err := km.aeadManager.CreateCipher(masterKey.Key, dk.Algorithm)
	if err != nil {
		return err
	}

	encryptedKey, nonce, err := aead.Encrypt(dk.Key, cryptoDomain.WrapAssociatedData(dk.NamespaceID, dk.Version))
	if err != nil {
		return fmt.Errorf("failed to wrap data key: %w", err)
	}

	dk.EncryptedKey = encryptedKey
	dk.Nonce = nonce
	dk.MasterKeyID = masterKey.ID
	return nil
}

// UnwrapDataKey returns ErrAuthenticationFailure when the wrapped key does not open
// under masterKey with the key's namespace and version.
func (km *KeyManagerService) UnwrapDataKey(
	dk *cryptoDomain.DataKey,
	masterKey *cryptoDomain.MasterKey,
) ([]byte, error) {
	aead, err := km.aeadManager.CreateCipher(masterKey.Key, dk.Algorithm)
	if err != nil {
		return nil, err
	}

	return aead.Decrypt(dk.EncryptedKey, dk.Nonce, cryptoDomain.WrapAssociatedData(dk.NamespaceID, dk.Version))
}
