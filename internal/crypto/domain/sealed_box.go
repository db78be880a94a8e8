package domain

// SealedBox is the at-rest form of one AEAD encryption: ciphertext, the nonce it was
// sealed with and the detached authentication tag. Each part is stored in its own column.
type SealedBox struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
}
