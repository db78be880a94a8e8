// Package http provides the authentication endpoints and middleware.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	authUseCase "github.com/zekret/vault/internal/auth/usecase"
	apperrors "github.com/zekret/vault/internal/errors"
	"github.com/zekret/vault/internal/httputil"
)

const bearerPrefix = "bearer "

// AuthenticationMiddleware authenticates requests with an access token in the
// Authorization header ("Bearer <token>", scheme matched case-insensitively) and stores
// the resolved identity in the request context.
//
// Every failure is answered with 401 and the same body.
func AuthenticationMiddleware(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		identity, err := tokenUseCase.Authenticate(c.Request.Context(), accessToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(authDomain.WithIdentity(c.Request.Context(), identity))

		logger.Debug("authentication successful", slog.String("user_id", identity.UserID.String()))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
