package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// MasterKey is a root key that wraps namespace data keys. It lives only in process memory.
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyChain holds every configured master key with one designated as active.
//
// New data keys are wrapped under the active key. Retired keys stay in the chain so data
// keys wrapped under them can still be opened until the rewrap-deks command has moved
// them to the active key. The chain is immutable after loading.
type MasterKeyChain struct {
	activeID string
	keys     map[string]*MasterKey
}

// NewMasterKeyChain builds a chain from already decrypted keys. On error every given key
// is zeroed.
func NewMasterKeyChain(activeID string, keys ...*MasterKey) (*MasterKeyChain, error) {
	mkc := &MasterKeyChain{activeID: activeID, keys: make(map[string]*MasterKey, len(keys))}
	for _, mk := range keys {
		if len(mk.Key) != KeySize {
			for _, k := range keys {
				Zero(k.Key)
			}
			return nil, fmt.Errorf(
				"%w: %w: master key %s must be %d bytes", ErrKeyUnavailable, ErrInvalidKeySize, mk.ID, KeySize,
			)
		}
		mkc.keys[mk.ID] = mk
	}
	if _, ok := mkc.keys[activeID]; !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", ErrActiveMasterKeyNotFound, activeID)
	}
	return mkc, nil
}

// ActiveMasterKeyID returns the ID of the key new data keys are wrapped under.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Active returns the active master key.
func (m *MasterKeyChain) Active() *MasterKey {
	return m.keys[m.activeID]
}

// Get returns the master key with the given ID.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	mk, ok := m.keys[id]
	return mk, ok
}

// Close zeroes every key and empties the chain.
func (m *MasterKeyChain) Close() {
	for id, mk := range m.keys {
		Zero(mk.Key)
		delete(m.keys, id)
	}
	m.activeID = ""
}

// LoadMasterKeyChain decrypts each entry of rawKeys with keeper.
//
// rawKeys is the MASTER_KEYS value: a comma-separated list of "id:base64(ciphertext)"
// entries, where ciphertext was produced by the same KMS key (see the create-master-key
// command). Every failure wraps ErrKeyUnavailable and leaves nothing in memory.
func LoadMasterKeyChain(
	ctx context.Context,
	keeper KMSKeeper,
	rawKeys, activeID string,
) (*MasterKeyChain, error) {
	if strings.TrimSpace(rawKeys) == "" {
		return nil, ErrMasterKeysNotSet
	}
	if activeID == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	var keys []*MasterKey
	discard := func() {
		for _, mk := range keys {
			Zero(mk.Key)
		}
	}

	for _, entry := range strings.Split(rawKeys, ",") {
		id, encoded, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || id == "" || encoded == "" {
			discard()
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, entry)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			discard()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
		}

		key, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			discard()
			return nil, fmt.Errorf("%w: decrypt master key %s: %v", ErrKeyUnavailable, id, err)
		}

		keys = append(keys, &MasterKey{ID: id, Key: key})
	}

	return NewMasterKeyChain(activeID, keys...)
}
