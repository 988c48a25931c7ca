package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

// CacheStore abstracts the backing store for cached payloads. Two
// implementations exist: an in-process map (default) and Redis.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is the read-side memo: get-or-compute keyed by composite
// query parameters with a fixed TTL per call site. It is constructed once at
// process start and injected into the services that need it.
type CacheService struct {
	store      CacheStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCacheService constructs a cache service.
func NewCacheService(store CacheStore, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		store:      store,
		metrics:    metrics,
		defaultTTL: defaultTTL,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.store != nil
}

// GetOrCompute returns the cached payload for key when it is younger than
// ttl; otherwise it invokes compute, stores the result with a fresh
// timestamp, and fills dest with it. Concurrent callers on the same key are
// serialized so the compute function runs at most once per expiry window.
// A failing store degrades to computing every time rather than erroring.
func (s *CacheService) GetOrCompute(ctx context.Context, key string, dest interface{}, ttl time.Duration, compute func(context.Context) (interface{}, error)) error {
	if !s.Enabled() {
		value, err := compute(ctx)
		if err != nil {
			return err
		}
		return assign(value, dest)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	err := s.store.Get(ctx, key, dest)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(true, time.Since(start))
		}
		return nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(false, time.Since(start))
	}

	value, err := compute(ctx)
	if err != nil {
		return err
	}

	writeStart := time.Now()
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(writeStart))
	}

	return assign(value, dest)
}

// Invalidate removes cached values for the provided key prefix.
func (s *CacheService) Invalidate(ctx context.Context, prefix string) {
	if !s.Enabled() {
		return
	}
	if err := s.store.DeleteByPattern(ctx, prefix+"*"); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

func (s *CacheService) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func assign(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
