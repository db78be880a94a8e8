package app

import (
	"fmt"

	vaultHTTP "github.com/zekret/vault/internal/vault/http"
	vaultRepository "github.com/zekret/vault/internal/vault/repository"
	vaultUseCase "github.com/zekret/vault/internal/vault/usecase"
)

// NamespaceRepository returns the namespace repository based on database driver.
func (c *Container) NamespaceRepository() (vaultUseCase.NamespaceRepository, error) {
	var err error
	c.namespaceRepositoryInit.Do(func() {
		c.namespaceRepository, err = c.initNamespaceRepository()
		if err != nil {
			c.initErrors["namespaceRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["namespaceRepository"]; exists {
		return nil, storedErr
	}
	return c.namespaceRepository, nil
}

// CredentialRepository returns the credential repository based on database driver.
func (c *Container) CredentialRepository() (vaultUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		c.credentialRepository, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// NamespaceUseCase returns the namespace use case.
func (c *Container) NamespaceUseCase() (vaultUseCase.NamespaceUseCase, error) {
	var err error
	c.namespaceUseCaseInit.Do(func() {
		c.namespaceUseCase, err = c.initNamespaceUseCase()
		if err != nil {
			c.initErrors["namespaceUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["namespaceUseCase"]; exists {
		return nil, storedErr
	}
	return c.namespaceUseCase, nil
}

// CredentialUseCase returns the credential use case.
func (c *Container) CredentialUseCase() (vaultUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// NamespaceHandler returns the HTTP handler for namespaces.
func (c *Container) NamespaceHandler() (*vaultHTTP.NamespaceHandler, error) {
	var err error
	c.namespaceHandlerInit.Do(func() {
		var useCase vaultUseCase.NamespaceUseCase
		useCase, err = c.NamespaceUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get namespace use case for namespace handler: %w", err)
			c.initErrors["namespaceHandler"] = err
			return
		}
		c.namespaceHandler = vaultHTTP.NewNamespaceHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["namespaceHandler"]; exists {
		return nil, storedErr
	}
	return c.namespaceHandler, nil
}

// CredentialHandler returns the HTTP handler for credentials.
func (c *Container) CredentialHandler() (*vaultHTTP.CredentialHandler, error) {
	var err error
	c.credentialHandlerInit.Do(func() {
		var useCase vaultUseCase.CredentialUseCase
		useCase, err = c.CredentialUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get credential use case for credential handler: %w", err)
			c.initErrors["credentialHandler"] = err
			return
		}
		c.credentialHandler = vaultHTTP.NewCredentialHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialHandler"]; exists {
		return nil, storedErr
	}
	return c.credentialHandler, nil
}

func (c *Container) initNamespaceRepository() (vaultUseCase.NamespaceRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for namespace repository: %w", err)
	}

	return repositoryFor[vaultUseCase.NamespaceRepository](c.config.DBDriver,
		func() vaultUseCase.NamespaceRepository { return vaultRepository.NewPostgreSQLNamespaceRepository(db) },
		func() vaultUseCase.NamespaceRepository { return vaultRepository.NewMySQLNamespaceRepository(db) },
	)
}

func (c *Container) initCredentialRepository() (vaultUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	return repositoryFor[vaultUseCase.CredentialRepository](c.config.DBDriver,
		func() vaultUseCase.CredentialRepository { return vaultRepository.NewPostgreSQLCredentialRepository(db) },
		func() vaultUseCase.CredentialRepository { return vaultRepository.NewMySQLCredentialRepository(db) },
	)
}

// vaultDependencies are shared by the namespace and credential use cases.
type vaultDependencies struct {
	namespaceRepo  vaultUseCase.NamespaceRepository
	credentialRepo vaultUseCase.CredentialRepository
	audit          vaultUseCase.AuditRecorder
}

func (c *Container) vaultDependencies() (*vaultDependencies, error) {
	namespaceRepo, err := c.NamespaceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get namespace repository: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository: %w", err)
	}

	audit, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case: %w", err)
	}

	return &vaultDependencies{namespaceRepo: namespaceRepo, credentialRepo: credentialRepo, audit: audit}, nil
}

// initNamespaceUseCase creates the namespace use case with all its dependencies.
func (c *Container) initNamespaceUseCase() (vaultUseCase.NamespaceUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for namespace use case: %w", err)
	}

	deps, err := c.vaultDependencies()
	if err != nil {
		return nil, err
	}

	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for namespace use case: %w", err)
	}

	useCase := vaultUseCase.NewNamespaceUseCase(vaultUseCase.NamespaceUseCaseConfig{
		TxManager:      txManager,
		Policy:         c.OperationPolicy(),
		NamespaceRepo:  deps.namespaceRepo,
		CredentialRepo: deps.credentialRepo,
		Keys:           keys,
		Authorizer:     c.Authorizer(),
		Audit:          deps.audit,
		CascadeDelete:  c.config.CascadeNamespaceDelete(),
	})

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for namespace use case: %w", err)
	}
	return vaultUseCase.NewNamespaceUseCaseWithMetrics(useCase, bm), nil
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (vaultUseCase.CredentialUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}

	deps, err := c.vaultDependencies()
	if err != nil {
		return nil, err
	}

	keys, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for credential use case: %w", err)
	}

	useCase := vaultUseCase.NewCredentialUseCase(vaultUseCase.CredentialUseCaseConfig{
		TxManager:      txManager,
		Policy:         c.OperationPolicy(),
		NamespaceRepo:  deps.namespaceRepo,
		CredentialRepo: deps.credentialRepo,
		Keys:           keys,
		Cipher:         c.CipherEngine(),
		Authorizer:     c.Authorizer(),
		Audit:          deps.audit,
		MaxFileSize:    c.config.CredentialMaxFileSize,
	})

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
	}
	return vaultUseCase.NewCredentialUseCaseWithMetrics(useCase, bm), nil
}
