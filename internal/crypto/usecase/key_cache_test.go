package usecase

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/metrics"
	metricsMocks "github.com/zekret/vault/internal/metrics/mocks"
)

func ringLoader(calls *atomic.Int32, activeVersion int) RingLoader {
	return func(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.KeyRing, error) {
		n := calls.Add(1)
		keys := make([]*cryptoDomain.DataKey, 0, activeVersion)
		for v := 1; v <= activeVersion; v++ {
			keys = append(keys, &cryptoDomain.DataKey{
				NamespaceID: namespaceID,
				Version:     v,
				Key:         bytes.Repeat([]byte{byte(n)}, cryptoDomain.KeySize),
			})
		}
		return cryptoDomain.NewKeyRing(namespaceID, activeVersion, keys)
	}
}

func TestKeyCache_HitAndExpiry(t *testing.T) {
	var calls atomic.Int32
	cache := NewKeyCache(ringLoader(&calls, 1), time.Minute, metrics.NewNoOpBusinessMetrics())
	defer cache.Close()

	now := time.Now()
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	nsID := uuid.New()

	_, err := cache.Active(ctx, nsID)
	require.NoError(t, err)
	_, err = cache.Active(ctx, nsID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(2 * time.Minute)

	dk, err := cache.Active(ctx, nsID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, byte(2), dk.Key[0])
}

func TestKeyCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.KeyRing, error) {
		<-release
		return ringLoader(&calls, 1)(ctx, namespaceID)
	}

	cache := NewKeyCache(load, time.Minute, metrics.NewNoOpBusinessMetrics())
	defer cache.Close()

	ctx := context.Background()
	nsID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dk, err := cache.Active(ctx, nsID)
			assert.NoError(t, err)
			assert.Equal(t, 1, dk.Version)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestKeyCache_InvalidateDuringLoadDiscardsStaleRing(t *testing.T) {
	var calls atomic.Int32
	nsID := uuid.New()
	var cache *KeyCache

	load := func(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.KeyRing, error) {
		if calls.Load() == 0 {
			// A rotation commits while the first load is in flight.
			cache.Invalidate(namespaceID)
		}
		return ringLoader(&calls, int(calls.Load())+1)(ctx, namespaceID)
	}

	cache = NewKeyCache(load, time.Minute, metrics.NewNoOpBusinessMetrics())
	defer cache.Close()

	dk, err := cache.Active(context.Background(), nsID)
	require.NoError(t, err)
	assert.Equal(t, 2, dk.Version)
	assert.Equal(t, int32(2), calls.Load())
}

func TestKeyCache_InvalidateWipesRingButNotCopies(t *testing.T) {
	var calls atomic.Int32
	cache := NewKeyCache(ringLoader(&calls, 1), time.Minute, metrics.NewNoOpBusinessMetrics())
	defer cache.Close()

	ctx := context.Background()
	nsID := uuid.New()

	held, err := cache.Active(ctx, nsID)
	require.NoError(t, err)

	cache.mu.RLock()
	ring := cache.entries[nsID].ring
	cache.mu.RUnlock()

	cache.Invalidate(nsID)

	assert.Equal(t, bytes.Repeat([]byte{1}, cryptoDomain.KeySize), held.Key)
	wiped, err := ring.Active()
	require.NoError(t, err)
	assert.Nil(t, wiped.Key)
}

func TestKeyCache_UnknownVersion(t *testing.T) {
	var calls atomic.Int32
	cache := NewKeyCache(ringLoader(&calls, 2), time.Minute, metrics.NewNoOpBusinessMetrics())
	defer cache.Close()

	_, err := cache.Version(context.Background(), uuid.New(), 3)
	assert.ErrorIs(t, err, cryptoDomain.ErrUnknownKeyVersion)
}

func TestKeyCache_DisabledAlwaysLoads(t *testing.T) {
	var calls atomic.Int32
	cache := NewKeyCache(ringLoader(&calls, 1), 0, metrics.NewNoOpBusinessMetrics())
	defer cache.Close()

	ctx := context.Background()
	nsID := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := cache.Active(ctx, nsID)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestKeyCache_RecordsLookups(t *testing.T) {
	var calls atomic.Int32
	bm := &metricsMocks.MockBusinessMetrics{}
	bm.On("RecordKeyCacheLookup", mock.Anything, false).Return().Once()
	bm.On("RecordKeyCacheLookup", mock.Anything, true).Return().Twice()

	cache := NewKeyCache(ringLoader(&calls, 1), time.Minute, bm)
	defer cache.Close()

	ctx := context.Background()
	nsID := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := cache.Active(ctx, nsID)
		require.NoError(t, err)
	}

	bm.AssertExpectations(t)
}

func TestKeyCache_SweeperEvictsAndCloseStops(t *testing.T) {
	var calls atomic.Int32
	cache := NewKeyCache(ringLoader(&calls, 1), 10*time.Millisecond, metrics.NewNoOpBusinessMetrics())

	_, err := cache.Active(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		cache.mu.RLock()
		defer cache.mu.RUnlock()
		return len(cache.entries) == 0
	}, time.Second, 5*time.Millisecond)

	cache.Close()
	cache.Close()
}
