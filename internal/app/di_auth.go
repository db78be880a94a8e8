package app

import (
	"fmt"

	authHTTP "github.com/zekret/vault/internal/auth/http"
	authRepository "github.com/zekret/vault/internal/auth/repository"
	authService "github.com/zekret/vault/internal/auth/service"
	authUseCase "github.com/zekret/vault/internal/auth/usecase"
)

// PasswordService returns the Argon2id password service.
func (c *Container) PasswordService() (authService.PasswordService, error) {
	var err error
	c.passwordServiceInit.Do(func() {
		c.passwordService, err = authService.NewPasswordService()
		if err != nil {
			c.initErrors["passwordService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["passwordService"]; exists {
		return nil, storedErr
	}
	return c.passwordService, nil
}

// TokenService returns the opaque token service.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// AccessTokenService returns the JWT service. Tokens are signed with keys derived from
// the master key chain.
func (c *Container) AccessTokenService() (authService.AccessTokenService, error) {
	var err error
	c.accessTokenServiceInit.Do(func() {
		c.accessTokenService, err = c.initAccessTokenService()
		if err != nil {
			c.initErrors["accessTokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessTokenService"]; exists {
		return nil, storedErr
	}
	return c.accessTokenService, nil
}

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepository"]; exists {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// Authorizer returns the ownership authorizer.
func (c *Container) Authorizer() authUseCase.Authorizer {
	c.authorizerInit.Do(func() {
		c.authorizer = authUseCase.NewAuthorizer()
	})
	return c.authorizer
}

// TokenHandler returns the HTTP handler for login, refresh and logout.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		var tokenUseCase authUseCase.TokenUseCase
		tokenUseCase, err = c.TokenUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get token use case for token handler: %w", err)
			c.initErrors["tokenHandler"] = err
			return
		}
		c.tokenHandler = authHTTP.NewTokenHandler(tokenUseCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

func (c *Container) initAccessTokenService() (authService.AccessTokenService, error) {
	masterKeys, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for access token service: %w", err)
	}
	return authService.NewAccessTokenService(c.config.AuthTokenIssuer, masterKeys), nil
}

func (c *Container) initTokenRepository() (authUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	return repositoryFor[authUseCase.TokenRepository](c.config.DBDriver,
		func() authUseCase.TokenRepository { return authRepository.NewPostgreSQLTokenRepository(db) },
		func() authUseCase.TokenRepository { return authRepository.NewMySQLTokenRepository(db) },
	)
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for token use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	passwordService, err := c.PasswordService()
	if err != nil {
		return nil, fmt.Errorf("failed to get password service for token use case: %w", err)
	}

	accessTokenService, err := c.AccessTokenService()
	if err != nil {
		return nil, err
	}

	useCase := authUseCase.NewTokenUseCase(authUseCase.TokenUseCaseConfig{
		TxManager:          txManager,
		Policy:             c.OperationPolicy(),
		UserRepo:           userRepo,
		TokenRepo:          tokenRepo,
		PasswordService:    passwordService,
		TokenService:       c.TokenService(),
		AccessTokenService: accessTokenService,
		AccessTokenTTL:     c.config.AuthTokenExpiration,
		RefreshTokenTTL:    c.config.AuthRefreshTokenExpiration,
	})

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}
	return authUseCase.NewTokenUseCaseWithMetrics(useCase, bm), nil
}
