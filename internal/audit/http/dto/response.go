// Package dto provides data transfer objects for audit log HTTP responses.
package dto

import (
	"time"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
)

// AuditLogResponse is the public view of an audit entry. The signature is not exposed.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	RequestID   string         `json:"requestId"`
	Action      string         `json:"action"`
	ResourceZrn string         `json:"resourceZrn"`
	Outcome     string         `json:"outcome"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Signed      bool           `json:"signed"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// MapAuditLogsToResponse converts domain entries to their public view.
func MapAuditLogsToResponse(logs []*auditDomain.AuditLog) []AuditLogResponse {
	items := make([]AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		items = append(items, AuditLogResponse{
			ID:          log.ID.String(),
			RequestID:   log.RequestID.String(),
			Action:      log.Action,
			ResourceZrn: log.ResourceZrn,
			Outcome:     string(log.Outcome),
			Metadata:    log.Metadata,
			Signed:      log.IsSigned(),
			CreatedAt:   log.CreatedAt,
		})
	}
	return items
}
