package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/zekret/vault/internal/audit/domain"
)

// CustomLoggerMiddleware logs every request once it completes, tagged with its request id.
// Query strings are left out since they may carry filters on user data.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("http request", attrs...)
		case status >= 400:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	}
}

// RequestContextMiddleware copies the request id into the request context so audit
// entries written further down the chain carry it. Client supplied ids that are not
// UUIDs are replaced.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(requestid.Get(c))
		if err != nil {
			id = uuid.Must(uuid.NewV7())
		}

		c.Request = c.Request.WithContext(auditDomain.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
