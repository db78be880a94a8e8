// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditHTTP "github.com/zekret/vault/internal/audit/http"
	auditService "github.com/zekret/vault/internal/audit/service"
	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
	authHTTP "github.com/zekret/vault/internal/auth/http"
	authService "github.com/zekret/vault/internal/auth/service"
	authUseCase "github.com/zekret/vault/internal/auth/usecase"
	"github.com/zekret/vault/internal/config"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
	cryptoUseCase "github.com/zekret/vault/internal/crypto/usecase"
	"github.com/zekret/vault/internal/database"
	"github.com/zekret/vault/internal/http"
	"github.com/zekret/vault/internal/metrics"
	userHTTP "github.com/zekret/vault/internal/user/http"
	userUseCase "github.com/zekret/vault/internal/user/usecase"
	vaultHTTP "github.com/zekret/vault/internal/vault/http"
	vaultUseCase "github.com/zekret/vault/internal/vault/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	kmsService        cryptoService.KMSService
	masterKeyChain    *cryptoDomain.MasterKeyChain
	aeadManager       cryptoService.AEADManager
	keyManager        cryptoService.KeyManager
	cipherEngine      cryptoService.CipherEngine
	dataKeyRepository cryptoUseCase.DataKeyRepository
	keyUseCase        cryptoUseCase.KeyUseCase
	keyUseCaseClose   func()

	// Auth
	passwordService    authService.PasswordService
	tokenService       authService.TokenService
	accessTokenService authService.AccessTokenService
	tokenRepository    authUseCase.TokenRepository
	tokenUseCase       authUseCase.TokenUseCase
	authorizer         authUseCase.Authorizer
	tokenHandler       *authHTTP.TokenHandler

	// Users
	userRepository userUseCase.UserRepository
	userUseCase    userUseCase.UseCase
	userHandler    *userHTTP.UserHandler

	// Audit
	auditLogRepository auditUseCase.AuditLogRepository
	auditSigner        auditService.AuditSigner
	auditLogUseCase    auditUseCase.AuditLogUseCase
	auditLogHandler    *auditHTTP.AuditLogHandler

	// Vault
	namespaceRepository  vaultUseCase.NamespaceRepository
	credentialRepository vaultUseCase.CredentialRepository
	namespaceUseCase     vaultUseCase.NamespaceUseCase
	credentialUseCase    vaultUseCase.CredentialUseCase
	namespaceHandler     *vaultHTTP.NamespaceHandler
	credentialHandler    *vaultHTTP.CredentialHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                       sync.Mutex
	loggerInit               sync.Once
	dbInit                   sync.Once
	txManagerInit            sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	kmsServiceInit           sync.Once
	masterKeyChainInit       sync.Once
	aeadManagerInit          sync.Once
	keyManagerInit           sync.Once
	cipherEngineInit         sync.Once
	dataKeyRepositoryInit    sync.Once
	keyUseCaseInit           sync.Once
	passwordServiceInit      sync.Once
	tokenServiceInit         sync.Once
	accessTokenServiceInit   sync.Once
	tokenRepositoryInit      sync.Once
	tokenUseCaseInit         sync.Once
	authorizerInit           sync.Once
	tokenHandlerInit         sync.Once
	userRepositoryInit       sync.Once
	userUseCaseInit          sync.Once
	userHandlerInit          sync.Once
	auditLogRepositoryInit   sync.Once
	auditSignerInit          sync.Once
	auditLogUseCaseInit      sync.Once
	auditLogHandlerInit      sync.Once
	namespaceRepositoryInit  sync.Once
	credentialRepositoryInit sync.Once
	namespaceUseCaseInit     sync.Once
	credentialUseCaseInit    sync.Once
	namespaceHandlerInit     sync.Once
	credentialHandlerInit    sync.Once
	httpServerInit           sync.Once
	metricsServerInit        sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// OperationPolicy returns the timeout and retry policy applied to store operations.
func (c *Container) OperationPolicy() database.OperationPolicy {
	return database.NewOperationPolicy(c.config.DBOperationTimeout, c.config.DBRetryBackoff)
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op recorder when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with its router set up. ctx bounds the background
// work of the router's middleware.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Cached data keys and master keys are wiped before the connection goes away.
	if c.keyUseCaseClose != nil {
		c.keyUseCaseClose()
	}
	if c.masterKeyChain != nil {
		c.masterKeyChain.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return bm, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, err
	}
	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, err
	}
	namespaceHandler, err := c.NamespaceHandler()
	if err != nil {
		return nil, err
	}
	credentialHandler, err := c.CredentialHandler()
	if err != nil {
		return nil, err
	}
	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return nil, err
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(ctx, c.config, http.Handlers{
		Token:      tokenHandler,
		User:       userHandler,
		Namespace:  namespaceHandler,
		Credential: credentialHandler,
		AuditLog:   auditLogHandler,
	}, tokenUseCase, metricsProvider)

	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}

// repositoryFor picks the implementation matching the configured driver.
func repositoryFor[T any](driver string, postgres, mysql func() T) (T, error) {
	switch driver {
	case database.DriverPostgres:
		return postgres(), nil
	case database.DriverMySQL:
		return mysql(), nil
	default:
		var zero T
		return zero, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
