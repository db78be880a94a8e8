package domain

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	appValidation "github.com/zekret/vault/internal/validation"
)

// Box labels bound into the associated data of each sealed box.
const (
	BoxMetadata = "metadata"
	BoxSecret   = "secret"
)

// credentialADPrefix versions the associated data layout.
const credentialADPrefix = "zekret/credential/v1"

// Credential is the stored form of a credential. The type-specific fields exist only
// inside MetadataBox and SecretBox, both sealed under the namespace data key KeyVersion.
//
// OwnerID and NamespaceZrn are resolved from the namespace when loading and are never
// written.
type Credential struct {
	ID           uuid.UUID
	Zrn          string
	NamespaceID  uuid.UUID
	NamespaceZrn string
	OwnerID      uuid.UUID
	Type         CredentialType
	Title        string
	KeyVersion   int
	MetadataBox  cryptoDomain.SealedBox
	SecretBox    cryptoDomain.SealedBox
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AssociatedData returns "zekret/credential/v1" || id || type || box, each variable part
// length prefixed. A box opened with another credential's id, type or label fails.
func AssociatedData(id uuid.UUID, typ CredentialType, box string) []byte {
	ad := make([]byte, 0, len(credentialADPrefix)+16+len(typ)+len(box)+8)
	ad = append(ad, credentialADPrefix...)
	ad = append(ad, id[:]...)
	ad = appendField(ad, []byte(typ))
	return appendField(ad, []byte(box))
}

// CredentialMetadata holds the fields shown when listing a namespace.
type CredentialMetadata struct {
	Username     string
	SSHPublicKey string
	FileName     string
	Notes        string
}

// CredentialSecret holds the fields only revealed by a single-credential read.
// The buffers are owned by the holder; call Wipe once they are no longer needed.
type CredentialSecret struct {
	Password      []byte
	SSHPrivateKey []byte
	SecretText    []byte
	FileContent   []byte
}

// Wipe zeroes every secret buffer.
func (s *CredentialSecret) Wipe() {
	if s == nil {
		return
	}
	cryptoDomain.Zero(s.Password)
	cryptoDomain.Zero(s.SSHPrivateKey)
	cryptoDomain.Zero(s.SecretText)
	cryptoDomain.Zero(s.FileContent)
}

// Normalize clears the fields the type does not carry.
func Normalize(spec CredentialTypeSpec, meta *CredentialMetadata, secret *CredentialSecret) {
	if !spec.Allows(FieldUsername) {
		meta.Username = ""
	}
	if !spec.Allows(FieldSSHPublicKey) {
		meta.SSHPublicKey = ""
	}
	if !spec.Allows(FieldFileName) {
		meta.FileName = ""
	}
	if !spec.Allows(FieldPassword) {
		cryptoDomain.Zero(secret.Password)
		secret.Password = nil
	}
	if !spec.Allows(FieldSSHPrivateKey) {
		cryptoDomain.Zero(secret.SSHPrivateKey)
		secret.SSHPrivateKey = nil
	}
	if !spec.Allows(FieldSecretText) {
		cryptoDomain.Zero(secret.SecretText)
		secret.SecretText = nil
	}
	if !spec.Allows(FieldFileContent) {
		cryptoDomain.Zero(secret.FileContent)
		secret.FileContent = nil
	}
}

func required(spec CredentialTypeSpec, f Field) validation.Rule {
	return validation.Required.When(spec.Requires(f)).Error("is required for " + string(spec.Key))
}

// ValidateFields checks the payload against the required fields of the type, the file
// name pattern and the file size ceiling (maxFileSize <= 0 disables it).
func ValidateFields(
	spec CredentialTypeSpec,
	meta *CredentialMetadata,
	secret *CredentialSecret,
	maxFileSize int,
) error {
	err := validation.Errors{
		string(FieldUsername): validation.Validate(meta.Username,
			required(spec, FieldUsername),
			validation.Length(0, 255),
		),
		string(FieldSSHPublicKey): validation.Validate(meta.SSHPublicKey,
			required(spec, FieldSSHPublicKey),
			validation.Length(0, 16384),
		),
		string(FieldFileName): validation.Validate(meta.FileName,
			required(spec, FieldFileName),
			validation.Length(0, 255),
			appValidation.FileName,
		),
		string(FieldNotes): validation.Validate(meta.Notes, validation.Length(0, 5000)),
		string(FieldPassword): validation.Validate(secret.Password,
			required(spec, FieldPassword),
		),
		string(FieldSSHPrivateKey): validation.Validate(secret.SSHPrivateKey,
			required(spec, FieldSSHPrivateKey),
		),
		string(FieldSecretText): validation.Validate(secret.SecretText,
			required(spec, FieldSecretText),
		),
		string(FieldFileContent): validation.Validate(secret.FileContent,
			required(spec, FieldFileContent),
			appValidation.MaxBytes(maxFileSize),
		),
	}.Filter()

	return appValidation.WrapValidationError(err)
}

// EncodeMetadata serialises metadata for sealing.
func EncodeMetadata(m *CredentialMetadata) []byte {
	return encodeFields(
		[]byte(m.Username),
		[]byte(m.SSHPublicKey),
		[]byte(m.FileName),
		[]byte(m.Notes),
	)
}

// DecodeMetadata reverses EncodeMetadata.
func DecodeMetadata(b []byte) (*CredentialMetadata, error) {
	fields, err := decodeFields(b, 4)
	if err != nil {
		return nil, err
	}
	return &CredentialMetadata{
		Username:     string(fields[0]),
		SSHPublicKey: string(fields[1]),
		FileName:     string(fields[2]),
		Notes:        string(fields[3]),
	}, nil
}

// EncodeSecret serialises secret fields into a new buffer the caller must zero.
func EncodeSecret(s *CredentialSecret) []byte {
	return encodeFields(s.Password, s.SSHPrivateKey, s.SecretText, s.FileContent)
}

// DecodeSecret reverses EncodeSecret. The returned buffers are copies of b's content.
func DecodeSecret(b []byte) (*CredentialSecret, error) {
	fields, err := decodeFields(b, 4)
	if err != nil {
		return nil, err
	}
	return &CredentialSecret{
		Password:      fields[0],
		SSHPrivateKey: fields[1],
		SecretText:    fields[2],
		FileContent:   fields[3],
	}, nil
}

func appendField(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func encodeFields(fields ...[]byte) []byte {
	size := 0
	for _, f := range fields {
		size += 4 + len(f)
	}
	buf := make([]byte, 0, size)
	for _, f := range fields {
		buf = appendField(buf, f)
	}
	return buf
}

func decodeFields(b []byte, n int) ([][]byte, error) {
	fields := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if len(b) < 4 {
			return nil, ErrMalformedPayload
		}
		size := binary.BigEndian.Uint32(b)
		b = b[4:]
		if uint64(size) > uint64(len(b)) {
			return nil, ErrMalformedPayload
		}

		var field []byte
		if size > 0 {
			field = append([]byte(nil), b[:size]...)
		}
		fields = append(fields, field)
		b = b[size:]
	}
	if len(b) != 0 {
		return nil, ErrMalformedPayload
	}
	return fields, nil
}
