package domain

import (
	"github.com/google/uuid"
)

// CredentialType identifies which fields a credential carries.
type CredentialType string

const (
	CredentialUsernamePassword CredentialType = "username_password"
	CredentialSSHUsername      CredentialType = "ssh_username"
	CredentialSecretText       CredentialType = "secret_text"
	CredentialFile             CredentialType = "file"
)

// Field names a member of the credential payload.
type Field string

const (
	FieldUsername      Field = "username"
	FieldPassword      Field = "password"
	FieldSSHPublicKey  Field = "sshPublicKey"
	FieldSSHPrivateKey Field = "sshPrivateKey"
	FieldSecretText    Field = "secretText"
	FieldFileName      Field = "fileName"
	FieldFileContent   Field = "fileContent"
	FieldNotes         Field = "notes"
)

// CredentialTypeSpec is one entry of the catalog.
type CredentialTypeSpec struct {
	Key      CredentialType
	Name     string
	Zrn      string
	Required []Field
	Optional []Field
}

// Requires reports whether f must be present for the type.
func (s CredentialTypeSpec) Requires(f Field) bool {
	for _, r := range s.Required {
		if r == f {
			return true
		}
	}
	return false
}

// Allows reports whether f is required or optional for the type.
func (s CredentialTypeSpec) Allows(f Field) bool {
	if s.Requires(f) {
		return true
	}
	for _, o := range s.Optional {
		if o == f {
			return true
		}
	}
	return false
}

// catalogDate is the date segment of every credential type zrn.
const catalogDate = "20250715"

// credtypeNamespace seeds the UUIDv5 suffix of credential type zrns.
var credtypeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://zekret.io/credential-types"))

func newSpec(key CredentialType, name string, required, optional []Field) CredentialTypeSpec {
	return CredentialTypeSpec{
		Key:      key,
		Name:     name,
		Zrn:      formatZrn(ResourceCredentialType, catalogDate, uuid.NewSHA1(credtypeNamespace, []byte(key))),
		Required: required,
		Optional: optional,
	}
}

var catalog = []CredentialTypeSpec{
	newSpec(CredentialUsernamePassword, "Username/Password",
		[]Field{FieldUsername, FieldPassword},
		[]Field{FieldNotes}),
	newSpec(CredentialSSHUsername, "SSH Username",
		[]Field{FieldUsername, FieldSSHPrivateKey},
		[]Field{FieldSSHPublicKey, FieldNotes}),
	newSpec(CredentialSecretText, "Secret Text",
		[]Field{FieldSecretText},
		[]Field{FieldNotes}),
	newSpec(CredentialFile, "File",
		[]Field{FieldFileName, FieldFileContent},
		[]Field{FieldNotes}),
}

// CredentialTypes returns the catalog in display order.
func CredentialTypes() []CredentialTypeSpec {
	out := make([]CredentialTypeSpec, len(catalog))
	copy(out, catalog)
	return out
}

// LookupCredentialType resolves a catalog entry by key or by zrn.
func LookupCredentialType(keyOrZrn string) (CredentialTypeSpec, error) {
	for _, spec := range catalog {
		if string(spec.Key) == keyOrZrn || spec.Zrn == keyOrZrn {
			return spec, nil
		}
	}
	return CredentialTypeSpec{}, ErrUnknownCredentialType
}
