package ratelimit

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRetryInterval = time.Minute

// FailoverStore sends checks to primary until it fails, then to fallback.
// The primary is retried once per retry interval.
type FailoverStore struct {
	primary       domain.RateLimitStore
	fallback      domain.RateLimitStore
	logger        *zerolog.Logger
	retryInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	isDown    bool
	lastCheck time.Time
}

func NewFailoverStore(primary, fallback domain.RateLimitStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:       primary,
		fallback:      fallback,
		logger:        logger,
		retryInterval: defaultRetryInterval,
		now:           time.Now,
	}
}

func (f *FailoverStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if f.shouldTryPrimary() {
		allowed, err := f.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			f.markUp()
			return allowed, nil
		}
		f.markDown(err)
	}

	return f.fallback.CheckRateLimit(ctx, key, limit, window)
}

func (f *FailoverStore) shouldTryPrimary() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.isDown || f.now().Sub(f.lastCheck) > f.retryInterval
}

func (f *FailoverStore) markUp() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isDown {
		f.logger.Info().Msg("Primary rate limit store recovered")
	}
	f.isDown = false
}

func (f *FailoverStore) markDown(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isDown {
		f.logger.Error().Err(err).Msg("Primary rate limit store failed, falling back to memory")
	}
	f.isDown = true
	f.lastCheck = f.now()
}
