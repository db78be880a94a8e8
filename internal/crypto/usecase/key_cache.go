package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/metrics"
)

// RingLoader builds the key ring of a namespace from the store.
type RingLoader func(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.KeyRing, error)

// errStaleLoad marks a load that raced with Invalidate and must not be published.
var errStaleLoad = errors.New("key ring invalidated during load")

const maxRingAttempts = 3

type cacheEntry struct {
	ring      *cryptoDomain.KeyRing
	expiresAt time.Time
}

// KeyCache is the read-mostly cache of unwrapped namespace key rings.
//
// Rings are immutable and swapped whole. Keys are copied out under the read lock and
// rings are wiped only under the write lock, so a caller never sees a half-wiped key.
// Concurrent misses for one namespace share a single load. Each Invalidate bumps a
// per-namespace generation so a load that started before it is discarded.
type KeyCache struct {
	mu          sync.RWMutex
	entries     map[uuid.UUID]*cacheEntry
	generations map[uuid.UUID]uint64

	group   singleflight.Group
	load    RingLoader
	ttl     time.Duration
	now     func() time.Time
	metrics metrics.BusinessMetrics

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewKeyCache creates a cache whose entries live for ttl. A sweeper goroutine evicts
// expired rings every ttl until Close. A non-positive ttl disables caching.
func NewKeyCache(load RingLoader, ttl time.Duration, bm metrics.BusinessMetrics) *KeyCache {
	c := &KeyCache{
		entries:     make(map[uuid.UUID]*cacheEntry),
		generations: make(map[uuid.UUID]uint64),
		load:        load,
		ttl:         ttl,
		now:         time.Now,
		metrics:     bm,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	if ttl > 0 {
		go c.sweep(ttl)
	} else {
		close(c.done)
	}

	return c
}

// Active returns a copy of the active key of the namespace.
func (c *KeyCache) Active(ctx context.Context, namespaceID uuid.UUID) (*cryptoDomain.DataKey, error) {
	return c.withRing(ctx, namespaceID, func(r *cryptoDomain.KeyRing) (*cryptoDomain.DataKey, error) {
		return r.Active()
	})
}

// Version returns a copy of one key version of the namespace.
func (c *KeyCache) Version(
	ctx context.Context,
	namespaceID uuid.UUID,
	version int,
) (*cryptoDomain.DataKey, error) {
	return c.withRing(ctx, namespaceID, func(r *cryptoDomain.KeyRing) (*cryptoDomain.DataKey, error) {
		return r.Version(version)
	})
}

// Invalidate drops and wipes the cached ring of the namespace.
func (c *KeyCache) Invalidate(namespaceID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[namespaceID]++
	if e, ok := c.entries[namespaceID]; ok {
		delete(c.entries, namespaceID)
		e.ring.Wipe()
	}
}

// Close stops the sweeper and wipes every cached ring.
func (c *KeyCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done

		c.mu.Lock()
		defer c.mu.Unlock()
		for id, e := range c.entries {
			delete(c.entries, id)
			e.ring.Wipe()
		}
	})
}

func (c *KeyCache) withRing(
	ctx context.Context,
	namespaceID uuid.UUID,
	pick func(*cryptoDomain.KeyRing) (*cryptoDomain.DataKey, error),
) (*cryptoDomain.DataKey, error) {
	if c.ttl <= 0 {
		ring, err := c.load(ctx, namespaceID)
		if err != nil {
			return nil, err
		}
		defer ring.Wipe()
		return pick(ring)
	}

	for attempt := 0; attempt < maxRingAttempts; attempt++ {
		c.mu.RLock()
		if e, ok := c.entries[namespaceID]; ok && c.now().Before(e.expiresAt) {
			dk, err := pick(e.ring)
			c.mu.RUnlock()
			c.metrics.RecordKeyCacheLookup(ctx, true)
			return dk, err
		}
		generation := c.generations[namespaceID]
		c.mu.RUnlock()

		c.metrics.RecordKeyCacheLookup(ctx, false)

		ring, err := c.fill(ctx, namespaceID, generation)
		if errors.Is(err, errStaleLoad) {
			continue
		}
		if err != nil {
			return nil, err
		}

		c.mu.RLock()
		if e, ok := c.entries[namespaceID]; ok && e.ring == ring {
			dk, err := pick(ring)
			c.mu.RUnlock()
			return dk, err
		}
		c.mu.RUnlock()
	}

	return nil, fmt.Errorf("%w: key ring of namespace %s kept changing", cryptoDomain.ErrKeyUnavailable, namespaceID)
}

func (c *KeyCache) fill(
	ctx context.Context,
	namespaceID uuid.UUID,
	generation uint64,
) (*cryptoDomain.KeyRing, error) {
	key := fmt.Sprintf("%s/%d", namespaceID, generation)

	v, err, _ := c.group.Do(key, func() (any, error) {
		ring, err := c.load(ctx, namespaceID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.generations[namespaceID] != generation {
			ring.Wipe()
			return nil, errStaleLoad
		}
		if old, ok := c.entries[namespaceID]; ok {
			old.ring.Wipe()
		}
		c.entries[namespaceID] = &cacheEntry{ring: ring, expiresAt: c.now().Add(c.ttl)}
		return ring, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cryptoDomain.KeyRing), nil
}

func (c *KeyCache) sweep(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *KeyCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
			e.ring.Wipe()
		}
	}
}
