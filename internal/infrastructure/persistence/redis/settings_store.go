package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/pkg/circuitbreaker"
)

// ErrCacheInvalidation is returned by SettingsStore.Set when the cached copy
// of a setting could not be dropped.
var ErrCacheInvalidation = errors.New("cache: invalidation failed")

// StringCache is the part of Cache the settings store needs.
type StringCache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SettingsStore is a read-through cache in front of the system settings
// table. Redis failures never fail a read: the breaker opens and reads go
// straight to the backing store until Redis recovers. Writes are refused
// while the cached copy cannot be dropped, since a stale deadline would keep
// the enrollment window open.
type SettingsStore struct {
	cache   StringCache
	backing sysconfig.Store
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewSettingsStore creates a SettingsStore over backing.
func NewSettingsStore(cache StringCache, backing sysconfig.Store, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "settings_cache")

	breaker := circuitbreaker.CacheBreaker(
		func(err error) bool { return !errors.Is(err, ErrCacheMiss) },
		func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	)
	return &SettingsStore{
		cache:   cache,
		backing: backing,
		breaker: breaker,
		ttl:     TTLSetting,
		logger:  logger,
	}
}

// Get implements sysconfig.Store. Only keys that exist are cached.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var cached string
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		v, err := s.cache.GetString(ctx, SettingKey(key))
		cached = v
		return err
	})
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		s.logger.Debug("cache read failed, using database", "key", key, "error", err)
	}

	value, found, err := s.backing.Get(ctx, key)
	if err != nil || !found {
		return value, found, err
	}
	s.populate(ctx, key, value)
	return value, true, nil
}

// populate caches value and then re-reads the database. A Set that landed
// between the first read and the cache write leaves a different value
// behind, in which case the entry just written is dropped again.
func (s *SettingsStore) populate(ctx context.Context, key, value string) {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.SetString(ctx, SettingKey(key), value, s.ttl)
	})
	if err != nil {
		return
	}

	current, found, err := s.backing.Get(ctx, key)
	if err == nil && found && current == value {
		return
	}
	if err := s.invalidate(ctx, key); err != nil {
		s.logger.Warn("failed to drop raced cache entry", "key", key, "error", err)
	}
}

// Set implements sysconfig.Store. The cached copy is dropped before and after
// the database write; the first drop failing leaves both stores untouched.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	if err := s.invalidate(ctx, key); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.backing.Set(ctx, key, value); err != nil {
		return err
	}
	if err := s.invalidate(ctx, key); err != nil {
		s.logger.Error("setting stored but cached copy may be stale", "key", key, "error", err)
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) invalidate(ctx context.Context, key string) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Delete(ctx, SettingKey(key))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheInvalidation, err)
	}
	return nil
}
