// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zekret/vault/internal/errors"
)

// Envelope is the wrapper every API response is written in.
type Envelope struct {
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
	Data       any       `json:"data"`
}

// ErrorData is the data member of a failed response.
type ErrorData struct {
	Error string `json:"error"`
}

// Respond writes data wrapped in the response envelope.
func Respond(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{
		StatusCode: statusCode,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	})
}

// RespondError writes an error envelope carrying only the machine readable error code.
func RespondError(c *gin.Context, statusCode int, code, message string) {
	Respond(c, statusCode, message, ErrorData{Error: code})
}

// AbortWithError writes an error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, statusCode int, code, message string) {
	RespondError(c, statusCode, code, message)
	c.Abort()
}

// HandleErrorGin maps domain errors to HTTP status codes and writes the error envelope.
// Unknown errors, including every cryptographic fault, collapse into a generic 500 so
// callers cannot tell a missing record from one that failed to decrypt.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var code, message string

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		code = "not_found"
		message = "The requested resource was not found"

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		code = "conflict"
		message = "A conflict occurred with existing data"

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		code = "invalid_input"
		message = err.Error()

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		code = "unauthorized"
		message = "Authentication is required"

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		code = "forbidden"
		message = "You don't have permission to access this resource"

	case apperrors.Is(err, apperrors.ErrTimeout):
		statusCode = http.StatusServiceUnavailable
		code = "timeout"
		message = "The operation timed out, try again later"

	default:
		statusCode = http.StatusInternalServerError
		code = "internal_error"
		message = "An internal error occurred"
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	RespondError(c, statusCode, code, message)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	RespondError(c, http.StatusBadRequest, "bad_request", err.Error())
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	RespondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error())
}
