// Package domain defines the key hierarchy of the vault: master keys held outside the
// database and versioned per-namespace data keys wrapped under them.
package domain

// KeySize is the length in bytes of every master key and data key.
const KeySize = 32

// Algorithm represents the AEAD construction used with a data key.
type Algorithm string

const (
	// AESGCM is AES-256-GCM with a 12-byte nonce and a 16-byte tag.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305 with a 12-byte nonce and a 16-byte tag.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm returns the Algorithm named by s.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch alg := Algorithm(s); alg {
	case AESGCM, ChaCha20:
		return alg, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
