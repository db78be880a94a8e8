// Package http provides the HTTP handler for listing the caller's audit trail.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zekret/vault/internal/audit/http/dto"
	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
	authDomain "github.com/zekret/vault/internal/auth/domain"
	"github.com/zekret/vault/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler.
func NewAuditLogHandler(auditLogUseCase auditUseCase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler returns the caller's own audit entries, newest first.
// GET /v1/audit-logs?offset=0&limit=50&created_at_from=2026-02-01T00:00:00Z&created_at_to=2026-02-14T23:59:59Z
// Both bounds are optional RFC3339 timestamps and inclusive.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	identity, ok := authDomain.IdentityFrom(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidToken, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtFrom, err := parseTimeQuery(c, "created_at_from")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	createdAtTo, err := parseTimeQuery(c, "created_at_to")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if createdAtFrom != nil && createdAtTo != nil && createdAtFrom.After(*createdAtTo) {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("created_at_from must be before or equal to created_at_to"),
			h.logger)
		return
	}

	logs, err := h.auditLogUseCase.List(
		c.Request.Context(), identity.UserID, offset, limit, createdAtFrom, createdAtTo,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Audit logs retrieved successfully.",
		httputil.NewPage(dto.MapAuditLogsToResponse(logs), offset, limit))
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)", name)
	}

	utc := parsed.UTC()
	return &utc, nil
}
