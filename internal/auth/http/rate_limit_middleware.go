package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	apperrors "github.com/zekret/vault/internal/errors"
	"github.com/zekret/vault/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = time.Hour
)

// rateLimiterStore holds keyed token-bucket limiters. Idle limiters are dropped by a
// background sweep that stops when the store's context is cancelled.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newRateLimiterStore(ctx context.Context, rps float64, burst int) *rateLimiterStore {
	store := &rateLimiterStore{rps: rps, burst: burst}
	go store.cleanupStale(ctx, limiterCleanupInterval, limiterIdleTimeout)
	return store
}

// RateLimitMiddleware enforces per-user rate limiting on authenticated requests.
// It must run after AuthenticationMiddleware. The sweep goroutine lives until ctx is
// cancelled.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(ctx, rps, burst)

	return func(c *gin.Context) {
		identity, ok := authDomain.IdentityFrom(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated user in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !store.allow(c, identity.UserID.String()) {
			logger.Debug("rate limit exceeded", slog.String("user_id", identity.UserID.String()))
			httputil.AbortWithError(
				c,
				http.StatusTooManyRequests,
				"rate_limit_exceeded",
				"Too many requests. Please retry after the specified delay.",
			)
			return
		}

		c.Next()
	}
}

// IPRateLimitMiddleware enforces per-IP rate limiting on the unauthenticated login,
// refresh and registration endpoints. c.ClientIP honours X-Forwarded-For and
// X-Real-IP according to the engine's trusted proxies.
func IPRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(ctx, rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !store.allow(c, clientIP) {
			logger.Debug("ip rate limit exceeded", slog.String("client_ip", clientIP))
			httputil.AbortWithError(
				c,
				http.StatusTooManyRequests,
				"rate_limit_exceeded",
				"Too many requests from this IP. Please retry after the specified delay.",
			)
			return
		}

		c.Next()
	}
}

// allow consumes a token for key. When the bucket is empty it sets Retry-After.
func (s *rateLimiterStore) allow(c *gin.Context, key string) bool {
	limiter := s.getLimiter(key)
	if limiter.Allow() {
		return true
	}

	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	return false
}

func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*rateLimiterEntry).limiter
}

func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now().Add(-idle))
		}
	}
}

func (s *rateLimiterStore) sweep(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*rateLimiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			s.limiters.Delete(key)
		}
		return true
	})
}
