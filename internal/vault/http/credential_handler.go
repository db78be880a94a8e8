package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zekret/vault/internal/httputil"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
	"github.com/zekret/vault/internal/vault/http/dto"
	"github.com/zekret/vault/internal/vault/usecase"
)

// CredentialHandler handles credential and credential type HTTP requests.
type CredentialHandler struct {
	credentialUseCase usecase.CredentialUseCase
	logger            *slog.Logger
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(credentialUseCase usecase.CredentialUseCase, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		logger:            logger,
	}
}

func (h *CredentialHandler) bind(c *gin.Context, requireNamespace bool) (usecase.CredentialInput, bool) {
	var req dto.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return usecase.CredentialInput{}, false
	}

	if err := req.Validate(requireNamespace); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return usecase.CredentialInput{}, false
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return usecase.CredentialInput{}, false
	}
	return input, true
}

// CreateHandler seals and stores a credential. The response carries metadata only.
// POST /v1/credentials - Returns 201 Created.
func (h *CredentialHandler) CreateHandler(c *gin.Context) {
	input, ok := h.bind(c, true)
	if !ok {
		return
	}
	defer input.Secret.Wipe()

	view, err := h.credentialUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusCreated, "Credential created successfully.", dto.MapCredentialToResponse(view))
}

// GetHandler returns a credential with its secret fields.
// GET /v1/credentials/:zrn
func (h *CredentialHandler) GetHandler(c *gin.Context) {
	view, err := h.credentialUseCase.Get(c.Request.Context(), c.Param("zrn"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer view.Secret.Wipe()

	httputil.Respond(c, http.StatusOK, "Credential retrieved successfully.", dto.MapCredentialToResponse(view))
}

// ListByNamespaceHandler lists the credentials of a namespace without secret fields.
// GET /v1/credentials/namespace/:zrn?offset=0&limit=50
func (h *CredentialHandler) ListByNamespaceHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	views, err := h.credentialUseCase.ListByNamespace(c.Request.Context(), c.Param("zrn"), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Credentials listed successfully.",
		httputil.NewPage(dto.MapCredentialsToResponse(views), offset, limit))
}

// ListHandler lists the caller's credentials across all namespaces without secret fields.
// GET /v1/credentials?offset=0&limit=50
func (h *CredentialHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	views, err := h.credentialUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Credentials listed successfully.",
		httputil.NewPage(dto.MapCredentialsToResponse(views), offset, limit))
}

// UpdateHandler replaces a credential. namespaceZrn may move it to another namespace
// of the caller.
// PUT /v1/credentials/:zrn
func (h *CredentialHandler) UpdateHandler(c *gin.Context) {
	input, ok := h.bind(c, false)
	if !ok {
		return
	}
	defer input.Secret.Wipe()

	view, err := h.credentialUseCase.Update(c.Request.Context(), c.Param("zrn"), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Credential updated successfully.", dto.MapCredentialToResponse(view))
}

// DeleteHandler removes a credential.
// DELETE /v1/credentials/:zrn
func (h *CredentialHandler) DeleteHandler(c *gin.Context) {
	if err := h.credentialUseCase.Delete(c.Request.Context(), c.Param("zrn")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Credential deleted successfully.", nil)
}

// ListTypesHandler returns the credential type catalog.
// GET /v1/credential-types
func (h *CredentialHandler) ListTypesHandler(c *gin.Context) {
	httputil.Respond(c, http.StatusOK, "Credential types retrieved successfully.",
		dto.MapCredentialTypesToResponse(vaultDomain.CredentialTypes()))
}
