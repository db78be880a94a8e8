package dto

import (
	"encoding/base64"
	"time"

	vaultDomain "github.com/zekret/vault/internal/vault/domain"
	"github.com/zekret/vault/internal/vault/usecase"
)

// NamespaceResponse is the API view of a namespace.
type NamespaceResponse struct {
	Zrn              string    `json:"zrn"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ActiveKeyVersion int       `json:"activeKeyVersion"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MapNamespaceToResponse converts a domain namespace to its API representation.
func MapNamespaceToResponse(ns *vaultDomain.Namespace) NamespaceResponse {
	return NamespaceResponse{
		Zrn:              ns.Zrn,
		Name:             ns.Name,
		Description:      ns.Description,
		ActiveKeyVersion: ns.ActiveKeyVersion,
		CreatedAt:        ns.CreatedAt,
		UpdatedAt:        ns.UpdatedAt,
	}
}

// MapNamespacesToResponse converts a list of namespaces.
func MapNamespacesToResponse(namespaces []*vaultDomain.Namespace) []NamespaceResponse {
	out := make([]NamespaceResponse, 0, len(namespaces))
	for _, ns := range namespaces {
		out = append(out, MapNamespaceToResponse(ns))
	}
	return out
}

// CredentialTypeResponse describes one catalog entry.
type CredentialTypeResponse struct {
	Zrn            string   `json:"zrn"`
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	RequiredFields []string `json:"requiredFields"`
	OptionalFields []string `json:"optionalFields"`
}

// MapCredentialTypesToResponse converts the catalog.
func MapCredentialTypesToResponse(specs []vaultDomain.CredentialTypeSpec) []CredentialTypeResponse {
	out := make([]CredentialTypeResponse, 0, len(specs))
	for _, spec := range specs {
		out = append(out, CredentialTypeResponse{
			Zrn:            spec.Zrn,
			Key:            string(spec.Key),
			Name:           spec.Name,
			RequiredFields: fieldNames(spec.Required),
			OptionalFields: fieldNames(spec.Optional),
		})
	}
	return out
}

func fieldNames(fields []vaultDomain.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}

// CredentialResponse is the API view of a credential. Secret fields are present only
// on single reads.
type CredentialResponse struct {
	Zrn               string    `json:"zrn"`
	Title             string    `json:"title"`
	CredentialType    string    `json:"credentialType"`
	CredentialTypeZrn string    `json:"credentialTypeZrn"`
	NamespaceZrn      string    `json:"namespaceZrn"`
	KeyVersion        int       `json:"keyVersion"`
	Username          string    `json:"username,omitempty"`
	SSHPublicKey      string    `json:"sshPublicKey,omitempty"`
	FileName          string    `json:"fileName,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Password          string    `json:"password,omitempty"`
	SSHPrivateKey     string    `json:"sshPrivateKey,omitempty"`
	SecretText        string    `json:"secretText,omitempty"`
	FileContent       string    `json:"fileContent,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MapCredentialToResponse converts a credential view.
func MapCredentialToResponse(view *usecase.CredentialView) CredentialResponse {
	resp := CredentialResponse{
		Zrn:               view.Zrn,
		Title:             view.Title,
		CredentialType:    string(view.Type.Key),
		CredentialTypeZrn: view.Type.Zrn,
		NamespaceZrn:      view.NamespaceZrn,
		KeyVersion:        view.KeyVersion,
		CreatedAt:         view.CreatedAt,
		UpdatedAt:         view.UpdatedAt,
	}

	if m := view.Metadata; m != nil {
		resp.Username = m.Username
		resp.SSHPublicKey = m.SSHPublicKey
		resp.FileName = m.FileName
		resp.Notes = m.Notes
	}

	if s := view.Secret; s != nil {
		resp.Password = string(s.Password)
		resp.SSHPrivateKey = string(s.SSHPrivateKey)
		resp.SecretText = string(s.SecretText)
		if len(s.FileContent) > 0 {
			resp.FileContent = base64.StdEncoding.EncodeToString(s.FileContent)
		}
	}
	return resp
}

// MapCredentialsToResponse converts a list of credential views.
func MapCredentialsToResponse(views []*usecase.CredentialView) []CredentialResponse {
	out := make([]CredentialResponse, 0, len(views))
	for _, view := range views {
		out = append(out, MapCredentialToResponse(view))
	}
	return out
}
