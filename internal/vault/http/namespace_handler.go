// Package http provides HTTP handlers for namespaces, credentials and the credential
// type catalog.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zekret/vault/internal/httputil"
	"github.com/zekret/vault/internal/vault/http/dto"
	"github.com/zekret/vault/internal/vault/usecase"
)

// NamespaceHandler handles namespace HTTP requests.
type NamespaceHandler struct {
	namespaceUseCase usecase.NamespaceUseCase
	logger           *slog.Logger
}

// NewNamespaceHandler creates a new NamespaceHandler.
func NewNamespaceHandler(namespaceUseCase usecase.NamespaceUseCase, logger *slog.Logger) *NamespaceHandler {
	return &NamespaceHandler{
		namespaceUseCase: namespaceUseCase,
		logger:           logger,
	}
}

// CreateHandler creates a namespace for the caller.
// POST /v1/namespaces - Returns 201 Created.
func (h *NamespaceHandler) CreateHandler(c *gin.Context) {
	var req dto.NamespaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	ns, err := h.namespaceUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusCreated, "Namespace created successfully.", dto.MapNamespaceToResponse(ns))
}

// ListHandler lists the caller's namespaces.
// GET /v1/namespaces?offset=0&limit=50
func (h *NamespaceHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	namespaces, err := h.namespaceUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Namespaces retrieved successfully.",
		httputil.NewPage(dto.MapNamespacesToResponse(namespaces), offset, limit))
}

// GetHandler returns one namespace.
// GET /v1/namespaces/:zrn
func (h *NamespaceHandler) GetHandler(c *gin.Context) {
	ns, err := h.namespaceUseCase.Get(c.Request.Context(), c.Param("zrn"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Namespace retrieved successfully.", dto.MapNamespaceToResponse(ns))
}

// UpdateHandler replaces name and description.
// PUT /v1/namespaces/:zrn
func (h *NamespaceHandler) UpdateHandler(c *gin.Context) {
	var req dto.NamespaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	ns, err := h.namespaceUseCase.Update(c.Request.Context(), c.Param("zrn"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Namespace updated successfully.", dto.MapNamespaceToResponse(ns))
}

// DeleteHandler removes a namespace.
// DELETE /v1/namespaces/:zrn
func (h *NamespaceHandler) DeleteHandler(c *gin.Context) {
	if err := h.namespaceUseCase.Delete(c.Request.Context(), c.Param("zrn")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Namespace deleted successfully.", nil)
}

// RotateKeyHandler issues a new data key version. Existing credentials keep opening
// under the version they were sealed with.
// POST /v1/namespaces/:zrn/rotate-key
func (h *NamespaceHandler) RotateKeyHandler(c *gin.Context) {
	ns, err := h.namespaceUseCase.RotateKey(c.Request.Context(), c.Param("zrn"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Namespace key rotated successfully.", dto.MapNamespaceToResponse(ns))
}
