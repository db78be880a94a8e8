// Package http provides HTTP handlers for user-related operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	"github.com/zekret/vault/internal/httputil"
	"github.com/zekret/vault/internal/user/http/dto"
	"github.com/zekret/vault/internal/user/usecase"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/users/register - Returns 201 Created with the public user view.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusCreated, "User registered successfully.", dto.MapUserToResponse(user))
}

// MeHandler returns the authenticated user.
// GET /v1/users/me
func (h *UserHandler) MeHandler(c *gin.Context) {
	identity, ok := authDomain.IdentityFrom(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidToken, h.logger)
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), identity.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "User retrieved successfully.", dto.MapUserToResponse(user))
}
