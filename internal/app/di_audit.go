package app

import (
	"fmt"

	auditHTTP "github.com/zekret/vault/internal/audit/http"
	auditRepository "github.com/zekret/vault/internal/audit/repository"
	auditService "github.com/zekret/vault/internal/audit/service"
	auditUseCase "github.com/zekret/vault/internal/audit/usecase"
)

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepositoryInit.Do(func() {
		c.auditLogRepository, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepository"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepository, nil
}

// AuditSigner returns the HMAC signer of audit entries.
func (c *Container) AuditSigner() auditService.AuditSigner {
	c.auditSignerInit.Do(func() {
		c.auditSigner = auditService.NewAuditSigner()
	})
	return c.auditSigner
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuditLogHandler returns the HTTP handler listing the caller's audit entries.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		var useCase auditUseCase.AuditLogUseCase
		useCase, err = c.AuditLogUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
			c.initErrors["auditLogHandler"] = err
			return
		}
		c.auditLogHandler = auditHTTP.NewAuditLogHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

func (c *Container) initAuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	return repositoryFor[auditUseCase.AuditLogRepository](c.config.DBDriver,
		func() auditUseCase.AuditLogRepository { return auditRepository.NewPostgreSQLAuditLogRepository(db) },
		func() auditUseCase.AuditLogRepository { return auditRepository.NewMySQLAuditLogRepository(db) },
	)
}

// initAuditLogUseCase creates the audit log use case. Entries are signed with a key
// derived from the active master key.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit log use case: %w", err)
	}

	repo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	masterKeys, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for audit log use case: %w", err)
	}

	useCase := auditUseCase.NewAuditLogUseCase(txManager, c.OperationPolicy(), repo, c.AuditSigner(), masterKeys)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
	}
	return auditUseCase.NewAuditLogUseCaseWithMetrics(useCase, bm), nil
}
