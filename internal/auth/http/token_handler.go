package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	"github.com/zekret/vault/internal/auth/http/dto"
	authUseCase "github.com/zekret/vault/internal/auth/usecase"
	"github.com/zekret/vault/internal/httputil"
	customValidation "github.com/zekret/vault/internal/validation"
)

// TokenHandler handles login, token refresh and logout.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// LoginHandler authenticates a user by username or e-mail and password.
// POST /v1/auth/login - Returns 200 OK with an access/refresh token pair.
func (h *TokenHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.tokenUseCase.Login(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Login successful", dto.MapTokenPairToResponse(pair))
}

// RefreshHandler exchanges a refresh token for a new pair.
// POST /v1/auth/refresh
func (h *TokenHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.tokenUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Token refreshed successfully.", dto.MapTokenPairToResponse(pair))
}

// LogoutHandler revokes every token of the caller.
// POST /v1/auth/logout - Requires authentication.
func (h *TokenHandler) LogoutHandler(c *gin.Context) {
	identity, ok := authDomain.IdentityFrom(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidToken, h.logger)
		return
	}

	if err := h.tokenUseCase.Logout(c.Request.Context(), identity.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.Respond(c, http.StatusOK, "Logout successful", nil)
}
