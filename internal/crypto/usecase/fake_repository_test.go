package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	apperrors "github.com/zekret/vault/internal/errors"
)

// memDataKeyRepository keeps data keys in memory. Reads hand out copies so the
// use case can never mutate stored rows by accident.
type memDataKeyRepository struct {
	mu       sync.Mutex
	keys     map[uuid.UUID]map[int]*cryptoDomain.DataKey
	active   map[uuid.UUID]int
	listHits atomic.Int32
	lockErr  error
}

func newMemDataKeyRepository() *memDataKeyRepository {
	return &memDataKeyRepository{
		keys:   make(map[uuid.UUID]map[int]*cryptoDomain.DataKey),
		active: make(map[uuid.UUID]int),
	}
}

func (r *memDataKeyRepository) Create(ctx context.Context, dk *cryptoDomain.DataKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions, ok := r.keys[dk.NamespaceID]
	if !ok {
		versions = make(map[int]*cryptoDomain.DataKey)
		r.keys[dk.NamespaceID] = versions
		r.active[dk.NamespaceID] = dk.Version
	}
	if _, exists := versions[dk.Version]; exists {
		return apperrors.ErrConflict
	}
	stored := dk.Clone()
	stored.Key = nil
	versions[dk.Version] = stored
	return nil
}

func (r *memDataKeyRepository) Get(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dk, ok := r.keys[namespaceID][version]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return dk.Clone(), nil
}

func (r *memDataKeyRepository) ListByNamespace(
	ctx context.Context,
	namespaceID uuid.UUID,
) ([]*cryptoDomain.DataKey, error) {
	r.listHits.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*cryptoDomain.DataKey
	for _, dk := range r.keys[namespaceID] {
		out = append(out, dk.Clone())
	}
	return out, nil
}

func (r *memDataKeyRepository) GetActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.active[namespaceID]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	return v, nil
}

func (r *memDataKeyRepository) LockActiveVersion(ctx context.Context, namespaceID uuid.UUID) (int, error) {
	if r.lockErr != nil {
		return 0, r.lockErr
	}
	return r.GetActiveVersion(ctx, namespaceID)
}

func (r *memDataKeyRepository) SetActiveVersion(ctx context.Context, namespaceID uuid.UUID, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active[namespaceID] = version
	return nil
}

func (r *memDataKeyRepository) ListNotMasterKeyID(
	ctx context.Context,
	masterKeyID string,
	limit int,
) ([]*cryptoDomain.DataKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*cryptoDomain.DataKey
	for _, versions := range r.keys {
		for _, dk := range versions {
			if dk.MasterKeyID != masterKeyID && len(out) < limit {
				out = append(out, dk.Clone())
			}
		}
	}
	return out, nil
}

func (r *memDataKeyRepository) Update(ctx context.Context, dk *cryptoDomain.DataKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[dk.NamespaceID][dk.Version]; !ok {
		return apperrors.ErrNotFound
	}
	stored := dk.Clone()
	stored.Key = nil
	r.keys[dk.NamespaceID][dk.Version] = stored
	return nil
}

var _ DataKeyRepository = (*memDataKeyRepository)(nil)
