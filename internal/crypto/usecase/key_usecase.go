package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
	"github.com/zekret/vault/internal/metrics"
)

// KeyUseCaseConfig carries the dependencies of the key use case.
type KeyUseCaseConfig struct {
	TxManager  database.TxManager
	Policy     database.OperationPolicy
	Repository DataKeyRepository
	KeyManager cryptoService.KeyManager
	MasterKeys *cryptoDomain.MasterKeyChain
	Algorithm  cryptoDomain.Algorithm
	CacheTTL   time.Duration
	Metrics    metrics.BusinessMetrics
}

type keyUseCase struct {
	txManager  database.TxManager
	policy     database.OperationPolicy
	repo       DataKeyRepository
	keyManager cryptoService.KeyManager
	masterKeys *cryptoDomain.MasterKeyChain
	algorithm  cryptoDomain.Algorithm
	cache      *KeyCache
}

// NewKeyUseCase creates the key use case and its ring cache. The returned close function
// stops the cache sweeper and wipes cached keys.
func NewKeyUseCase(cfg KeyUseCaseConfig) (KeyUseCase, func()) {
	bm := cfg.Metrics
	if bm == nil {
		bm = metrics.NewNoOpBusinessMetrics()
	}

	k := &keyUseCase{
		txManager:  cfg.TxManager,
		policy:     cfg.Policy,
		repo:       cfg.Repository,
		keyManager: cfg.KeyManager,
		masterKeys: cfg.MasterKeys,
		algorithm:  cfg.Algorithm,
	}
	k.cache = NewKeyCache(k.loadRing, cfg.CacheTTL, bm)

	return k, k.cache.Close
}

// Provision creates and stores version 1 of a namespace key.
func (k *keyUseCase) Provision(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error) {
	dk, err := k.keyManager.CreateDataKey(k.masterKeys.Active(), k.algorithm, namespaceID, 1)
	if err != nil {
		return nil, err
	}
	dk.Wipe()

	if err := k.repo.Create(ctx, &dk); err != nil {
		return nil, err
	}

	return &dk, nil
}

// ActiveKey returns a copy of the active data key of the namespace.
func (k *keyUseCase) ActiveKey(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error) {
	return k.cache.Active(ctx, namespaceID)
}

// Unwrap returns a copy of the requested version.
//
// A version missing from the cached ring may have been issued by another instance
// after the ring was loaded, so the ring is reloaded once before giving up.
func (k *keyUseCase) Unwrap(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	dk, err := k.cache.Version(ctx, namespaceID, version)
	if !errors.Is(err, cryptoDomain.ErrUnknownKeyVersion) {
		return dk, err
	}

	k.cache.Invalidate(namespaceID)
	return k.cache.Version(ctx, namespaceID, version)
}

// Rotate issues the next key version under the active master key.
//
// The namespace row is locked for the duration of the transaction so concurrent
// rotations of one namespace serialize and each sees the version the other committed.
func (k *keyUseCase) Rotate(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	var newVersion int

	err := k.policy.Run(ctx, func(ctx context.Context) error {
		return k.txManager.WithTx(ctx, func(ctx context.Context) error {
			current, err := k.repo.LockActiveVersion(ctx, namespaceID)
			if err != nil {
				return err
			}

			dk, err := k.keyManager.CreateDataKey(k.masterKeys.Active(), k.algorithm, namespaceID, current+1)
			if err != nil {
				return err
			}
			dk.Wipe()

			if err := k.repo.Create(ctx, &dk); err != nil {
				return err
			}
			if err := k.repo.SetActiveVersion(ctx, namespaceID, dk.Version); err != nil {
				return err
			}

			newVersion = dk.Version
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	k.cache.Invalidate(namespaceID)
	return newVersion, nil
}

// Rewrap re-wraps a batch of data keys under the active master key.
func (k *keyUseCase) Rewrap(ctx context.Context, batchSize int) (int, error) {
	active := k.masterKeys.Active()
	var count int

	err := k.txManager.WithTx(ctx, func(ctx context.Context) error {
		dks, err := k.repo.ListNotMasterKeyID(ctx, active.ID, batchSize)
		if err != nil {
			return err
		}

		for _, dk := range dks {
			if err := k.rewrapOne(ctx, dk, active); err != nil {
				return err
			}
		}

		count = len(dks)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (k *keyUseCase) rewrapOne(ctx context.Context, dk *cryptoDomain.DataKey, active *cryptoDomain.MasterKey) error {
	old, ok := k.masterKeys.Get(dk.MasterKeyID)
	if !ok {
		return fmt.Errorf("%w: master key %s of data key %s", cryptoDomain.ErrKeyUnavailable, dk.MasterKeyID, dk.ID)
	}

	key, err := k.keyManager.UnwrapDataKey(dk, old)
	if err != nil {
		return err
	}

	dk.Key = key
	err = k.keyManager.WrapDataKey(dk, active)
	dk.Wipe()
	if err != nil {
		return err
	}

	return k.repo.Update(ctx, dk)
}

// Invalidate drops the cached ring of the namespace.
func (k *keyUseCase) Invalidate(namespaceID uuid.UUID) {
	k.cache.Invalidate(namespaceID)
}

// loadRing reads the active version and every data key of the namespace and unwraps them.
func (k *keyUseCase) loadRing(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.KeyRing, error) {
	var active int
	var dks []*cryptoDomain.DataKey

	err := k.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		if active, err = k.repo.GetActiveVersion(ctx, namespaceID); err != nil {
			return err
		}
		dks, err = k.repo.ListByNamespace(ctx, namespaceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	unwrapped := make([]*cryptoDomain.DataKey, 0, len(dks))
	discard := func() {
		for _, dk := range unwrapped {
			dk.Wipe()
		}
	}

	for _, dk := range dks {
		mk, ok := k.masterKeys.Get(dk.MasterKeyID)
		if !ok {
			discard()
			return nil, fmt.Errorf("%w: master key %s", cryptoDomain.ErrKeyUnavailable, dk.MasterKeyID)
		}

		key, err := k.keyManager.UnwrapDataKey(dk, mk)
		if err != nil {
			discard()
			return nil, apperrors.Wrap(err, fmt.Sprintf("failed to unwrap data key version %d", dk.Version))
		}

		dk.Key = key
		unwrapped = append(unwrapped, dk)
	}

	return cryptoDomain.NewKeyRing(namespaceID, active, unwrapped)
}
