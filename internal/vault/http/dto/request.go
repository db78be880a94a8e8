// Package dto provides data transfer objects for the vault HTTP layer.
package dto

import (
	"encoding/base64"
	"strings"

	validation "github.com/jellydator/validation"

	appValidation "github.com/zekret/vault/internal/validation"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
	"github.com/zekret/vault/internal/vault/usecase"
)

// NamespaceRequest is the body of namespace create and update calls.
type NamespaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToInput converts the request into use case input.
func (r *NamespaceRequest) ToInput() usecase.NamespaceInput {
	return usecase.NamespaceInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
	}
}

// Validate applies the use case rules.
func (r *NamespaceRequest) Validate() error {
	return usecase.ValidateNamespaceInput(r.ToInput())
}

// CredentialRequest is the body of credential create and update calls. Fields that
// the credential type does not carry are ignored. FileContent is base64.
type CredentialRequest struct {
	Title             string `json:"title"`
	CredentialTypeZrn string `json:"credentialTypeZrn"`
	NamespaceZrn      string `json:"namespaceZrn"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	SSHPublicKey      string `json:"sshPublicKey"`
	SSHPrivateKey     string `json:"sshPrivateKey"`
	SecretText        string `json:"secretText"`
	FileName          string `json:"fileName"`
	FileContent       string `json:"fileContent"`
	Notes             string `json:"notes"`
}

// Validate checks the shape of the request. Type specific rules run in the use case.
func (r *CredentialRequest) Validate(requireNamespace bool) error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, appValidation.NotBlank),
		validation.Field(&r.CredentialTypeZrn, validation.Required),
		validation.Field(&r.NamespaceZrn,
			validation.Required.When(requireNamespace),
			validation.By(func(value interface{}) error {
				s, _ := value.(string)
				if s != "" && !vaultDomain.IsZrn(s, vaultDomain.ResourceNamespace) {
					return validation.NewError("validation_zrn", "must be a namespace zrn")
				}
				return nil
			}),
		),
		validation.Field(&r.FileContent, appValidation.Base64),
	)
	return appValidation.WrapValidationError(err)
}

// ToInput converts the request into use case input, decoding FileContent.
func (r *CredentialRequest) ToInput() (usecase.CredentialInput, error) {
	input := usecase.CredentialInput{
		Title:          r.Title,
		CredentialType: r.CredentialTypeZrn,
		NamespaceZrn:   r.NamespaceZrn,
		Metadata: vaultDomain.CredentialMetadata{
			Username:     r.Username,
			SSHPublicKey: r.SSHPublicKey,
			FileName:     r.FileName,
			Notes:        r.Notes,
		},
		Secret: vaultDomain.CredentialSecret{
			Password:      optionalBytes(r.Password),
			SSHPrivateKey: optionalBytes(r.SSHPrivateKey),
			SecretText:    optionalBytes(r.SecretText),
		},
	}

	if r.FileContent != "" {
		content, err := base64.StdEncoding.DecodeString(r.FileContent)
		if err != nil {
			return usecase.CredentialInput{}, appValidation.WrapValidationError(err)
		}
		input.Secret.FileContent = content
	}
	return input, nil
}

func optionalBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}
