package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoRepository "github.com/zekret/vault/internal/crypto/repository"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
	cryptoUseCase "github.com/zekret/vault/internal/crypto/usecase"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// MasterKeyChain returns the master key chain decrypted through the configured KMS key.
func (c *Container) MasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	var err error
	c.masterKeyChainInit.Do(func() {
		c.masterKeyChain, err = c.initMasterKeyChain()
		if err != nil {
			c.initErrors["masterKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyChain"]; exists {
		return nil, storedErr
	}
	return c.masterKeyChain, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyManager returns the key manager service.
func (c *Container) KeyManager() cryptoService.KeyManager {
	c.keyManagerInit.Do(func() {
		c.keyManager = cryptoService.NewKeyManager(c.AEADManager())
	})
	return c.keyManager
}

// CipherEngine returns the engine that seals credential payloads.
func (c *Container) CipherEngine() cryptoService.CipherEngine {
	c.cipherEngineInit.Do(func() {
		c.cipherEngine = cryptoService.NewCipherEngine(c.AEADManager())
	})
	return c.cipherEngine
}

// DataKeyRepository returns the data key repository based on database driver.
func (c *Container) DataKeyRepository() (cryptoUseCase.DataKeyRepository, error) {
	var err error
	c.dataKeyRepositoryInit.Do(func() {
		c.dataKeyRepository, err = c.initDataKeyRepository()
		if err != nil {
			c.initErrors["dataKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dataKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.dataKeyRepository, nil
}

// KeyUseCase returns the namespace key use case.
func (c *Container) KeyUseCase() (cryptoUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// initMasterKeyChain opens the KMS keeper and decrypts MASTER_KEYS with it. The keeper
// is closed once the chain is in memory.
func (c *Container) initMasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	ctx := context.Background()

	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	defer func() { _ = keeper.Close() }()

	chain, err := cryptoDomain.LoadMasterKeyChain(ctx, keeper, c.config.MasterKeys, c.config.ActiveMasterKeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key chain: %w", err)
	}

	c.Logger().Info("master key chain loaded",
		"kms_provider", c.config.KMSProvider,
		"active_master_key_id", chain.ActiveMasterKeyID(),
	)

	return chain, nil
}

func (c *Container) initDataKeyRepository() (cryptoUseCase.DataKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for data key repository: %w", err)
	}

	return repositoryFor[cryptoUseCase.DataKeyRepository](c.config.DBDriver,
		func() cryptoUseCase.DataKeyRepository { return cryptoRepository.NewPostgreSQLDataKeyRepository(db) },
		func() cryptoUseCase.DataKeyRepository { return cryptoRepository.NewMySQLDataKeyRepository(db) },
	)
}

// initKeyUseCase creates the key use case and keeps its close function for Shutdown.
func (c *Container) initKeyUseCase() (cryptoUseCase.KeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key use case: %w", err)
	}

	repo, err := c.DataKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get data key repository for key use case: %w", err)
	}

	masterKeys, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for key use case: %w", err)
	}

	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.DEKAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid DEK_ALGORITHM: %w", err)
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
	}

	useCase, closeFn := cryptoUseCase.NewKeyUseCase(cryptoUseCase.KeyUseCaseConfig{
		TxManager:  txManager,
		Policy:     c.OperationPolicy(),
		Repository: repo,
		KeyManager: c.KeyManager(),
		MasterKeys: masterKeys,
		Algorithm:  algorithm,
		CacheTTL:   c.config.KeyCacheTTL,
		Metrics:    bm,
	})
	c.keyUseCaseClose = closeFn

	if c.config.MetricsEnabled {
		return cryptoUseCase.NewKeyUseCaseWithMetrics(useCase, bm), nil
	}
	return useCase, nil
}
