// Package service signs and verifies audit entries.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
)

// AuditSigner computes and checks audit entry signatures.
type AuditSigner interface {
	// Sign returns the HMAC-SHA256 of the canonical form of entry under a key derived
	// from masterKey.
	Sign(masterKey []byte, entry *auditDomain.AuditLog) ([]byte, error)

	// Verify returns ErrSignatureInvalid when entry.Signature does not match.
	Verify(masterKey []byte, entry *auditDomain.AuditLog) error
}

type hmacAuditSigner struct{}

// NewAuditSigner creates an HMAC-SHA256 AuditSigner keyed by HKDF-SHA256.
func NewAuditSigner() AuditSigner {
	return &hmacAuditSigner{}
}

// canonicalize encodes the signed fields of an entry:
// request_id || user_id || action || resource_zrn || outcome || metadata || created_at.
// Variable-length fields are length prefixed so field boundaries can't shift.
func canonicalize(entry *auditDomain.AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, entry.RequestID[:]...)
	buf = append(buf, entry.UserID[:]...)
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = appendLengthPrefixed(buf, []byte(entry.ResourceZrn))
	buf = appendLengthPrefixed(buf, []byte(entry.Outcome))

	if len(entry.Metadata) > 0 {
		// encoding/json sorts map keys, so the encoding is stable across round trips.
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadata)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	return binary.BigEndian.AppendUint64(buf, uint64(entry.CreatedAt.UnixNano())), nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign generates the 32-byte signature of entry.
func (s *hmacAuditSigner) Sign(masterKey []byte, entry *auditDomain.AuditLog) ([]byte, error) {
	signingKey, err := cryptoService.DeriveKey(masterKey, cryptoService.AuditLogSigningInfo)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := canonicalize(entry)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the signature and compares in constant time.
func (s *hmacAuditSigner) Verify(masterKey []byte, entry *auditDomain.AuditLog) error {
	expected, err := s.Sign(masterKey, entry)
	if err != nil {
		return err
	}

	if !hmac.Equal(entry.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
