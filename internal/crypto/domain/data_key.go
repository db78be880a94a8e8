package domain

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// DataKey is a versioned per-namespace data encryption key.
//
// EncryptedKey and Nonce hold the key wrapped under MasterKeyID. Key holds the plaintext
// only while unwrapped in memory; it is never persisted.
type DataKey struct {
	ID           uuid.UUID
	NamespaceID  uuid.UUID
	Version      int
	MasterKeyID  string
	Algorithm    Algorithm
	EncryptedKey []byte
	Nonce        []byte
	Key          []byte
	CreatedAt    time.Time
}

// Clone returns a copy that owns its own Key buffer.
func (d *DataKey) Clone() *DataKey {
	c := *d
	c.EncryptedKey = append([]byte(nil), d.EncryptedKey...)
	c.Nonce = append([]byte(nil), d.Nonce...)
	if d.Key != nil {
		c.Key = append([]byte(nil), d.Key...)
	}
	return &c
}

// Wipe zeroes the plaintext key.
func (d *DataKey) Wipe() {
	Zero(d.Key)
	d.Key = nil
}

// WrapAssociatedData binds a wrapped data key to its namespace and version:
// namespaceID (16 bytes) || version (8 bytes, big endian).
func WrapAssociatedData(namespaceID uuid.UUID, version int) []byte {
	ad := make([]byte, 0, 24)
	ad = append(ad, namespaceID[:]...)
	return binary.BigEndian.AppendUint64(ad, uint64(version))
}

// KeyRing is the set of unwrapped data keys of one namespace as of one load.
// A ring is never mutated after construction; rotation produces a new ring.
type KeyRing struct {
	NamespaceID   uuid.UUID
	ActiveVersion int
	keys          map[int]*DataKey
}

// NewKeyRing builds a ring. keys must carry their plaintext Key.
func NewKeyRing(namespaceID uuid.UUID, activeVersion int, keys []*DataKey) (*KeyRing, error) {
	ring := &KeyRing{
		NamespaceID:   namespaceID,
		ActiveVersion: activeVersion,
		keys:          make(map[int]*DataKey, len(keys)),
	}
	for _, dk := range keys {
		ring.keys[dk.Version] = dk
	}
	if _, ok := ring.keys[activeVersion]; !ok {
		ring.Wipe()
		return nil, ErrUnknownKeyVersion
	}
	return ring, nil
}

// Version returns a copy of the key with the given version.
func (r *KeyRing) Version(version int) (*DataKey, error) {
	dk, ok := r.keys[version]
	if !ok {
		return nil, ErrUnknownKeyVersion
	}
	return dk.Clone(), nil
}

// Active returns a copy of the active key.
func (r *KeyRing) Active() (*DataKey, error) {
	return r.Version(r.ActiveVersion)
}

// Len returns the number of versions in the ring.
func (r *KeyRing) Len() int {
	return len(r.keys)
}

// Wipe zeroes every key in the ring.
func (r *KeyRing) Wipe() {
	for _, dk := range r.keys {
		dk.Wipe()
	}
}
