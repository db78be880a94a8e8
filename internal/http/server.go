// Package http provides the API server: router, middleware chain and health endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/zekret/vault/internal/audit/http"
	authHTTP "github.com/zekret/vault/internal/auth/http"
	authUseCase "github.com/zekret/vault/internal/auth/usecase"
	"github.com/zekret/vault/internal/config"
	"github.com/zekret/vault/internal/httputil"
	"github.com/zekret/vault/internal/metrics"
	userHTTP "github.com/zekret/vault/internal/user/http"
	vaultHTTP "github.com/zekret/vault/internal/vault/http"
)

// readinessTimeout bounds the database ping of /ready.
const readinessTimeout = 2 * time.Second

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// Handlers groups the endpoint handlers mounted by SetupRouter.
type Handlers struct {
	Token      *authHTTP.TokenHandler
	User       *userHTTP.UserHandler
	Namespace  *vaultHTTP.NamespaceHandler
	Credential *vaultHTTP.CredentialHandler
	AuditLog   *auditHTTP.AuditLogHandler
}

// NewServer creates a new HTTP server. db is pinged by the readiness endpoint.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with every route and middleware.
//
// ctx bounds the background sweepers of the rate limiters. meterProvider may be nil,
// in which case no HTTP metrics are collected.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	tokenUseCase authUseCase.TokenUseCase,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.CustomRecovery(s.recoveryHandler))
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(RequestContextMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	if cors := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); cors != nil {
		router.Use(cors)
	}

	if cfg.MetricsEnabled && metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.NoRoute(func(c *gin.Context) {
		httputil.RespondError(c, http.StatusNotFound, "not_found", "The requested route was not found")
	})

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	var ipLimit []gin.HandlerFunc
	if cfg.RateLimitLoginEnabled {
		ipLimit = append(ipLimit, authHTTP.IPRateLimitMiddleware(
			ctx,
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			s.logger,
		))
	}

	authenticated := []gin.HandlerFunc{authHTTP.AuthenticationMiddleware(tokenUseCase, s.logger)}
	if cfg.RateLimitEnabled {
		authenticated = append(authenticated, authHTTP.RateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}

	v1 := router.Group("/v1")

	// Public endpoints
	public := v1.Group("", ipLimit...)
	public.POST("/auth/login", handlers.Token.LoginHandler)
	public.POST("/auth/refresh", handlers.Token.RefreshHandler)
	public.POST("/users/register", handlers.User.RegisterHandler)
	v1.GET("/credential-types", handlers.Credential.ListTypesHandler)

	protected := v1.Group("", authenticated...)
	protected.POST("/auth/logout", handlers.Token.LogoutHandler)
	protected.GET("/users/me", handlers.User.MeHandler)
	protected.GET("/audit-logs", handlers.AuditLog.ListHandler)

	namespaces := protected.Group("/namespaces")
	{
		namespaces.POST("", handlers.Namespace.CreateHandler)
		namespaces.GET("", handlers.Namespace.ListHandler)
		namespaces.GET("/:zrn", handlers.Namespace.GetHandler)
		namespaces.PUT("/:zrn", handlers.Namespace.UpdateHandler)
		namespaces.DELETE("/:zrn", handlers.Namespace.DeleteHandler)
		namespaces.POST("/:zrn/rotate-key", handlers.Namespace.RotateKeyHandler)
	}

	credentials := protected.Group("/credentials")
	{
		credentials.POST("", handlers.Credential.CreateHandler)
		credentials.GET("", handlers.Credential.ListHandler)
		credentials.GET("/namespace/:zrn", handlers.Credential.ListByNamespaceHandler)
		credentials.GET("/:zrn", handlers.Credential.GetHandler)
		credentials.PUT("/:zrn", handlers.Credential.UpdateHandler)
		credentials.DELETE("/:zrn", handlers.Credential.DeleteHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must have been called.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	status, code := "ready", http.StatusOK
	if database != "ok" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"database": database},
	})
}

func (s *Server) recoveryHandler(c *gin.Context, recovered any) {
	s.logger.Error("panic recovered",
		slog.Any("error", recovered),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)
	httputil.AbortWithError(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
}
