package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/repository"
)

func TestCacheServiceComputeAtMostOnceWithinTTL(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, zap.NewNop())

	var calls int32
	compute := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"QA101"}, nil
	}

	var first, second []string
	require.NoError(t, cache.GetOrCompute(context.Background(), "courses:list", &first, time.Minute, compute))
	require.NoError(t, cache.GetOrCompute(context.Background(), "courses:list", &second, time.Minute, compute))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)
}

func TestCacheServiceRecomputesAfterExpiry(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, zap.NewNop())

	var calls int32
	compute := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "payload", nil
	}

	var out string
	require.NoError(t, cache.GetOrCompute(context.Background(), "blog:feed", &out, 10*time.Millisecond, compute))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cache.GetOrCompute(context.Background(), "blog:feed", &out, 10*time.Millisecond, compute))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheServiceIndependentKeys(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, zap.NewNop())

	var calls int32
	compute := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "x", nil
	}

	var out string
	require.NoError(t, cache.GetOrCompute(context.Background(), "blog:1:10::", &out, time.Minute, compute))
	require.NoError(t, cache.GetOrCompute(context.Background(), "blog:2:10::", &out, time.Minute, compute))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheServiceConcurrentSingleCompute(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, zap.NewNop())

	var calls int32
	compute := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(5 * time.Millisecond)
		return "slow", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out string
			_ = cache.GetOrCompute(context.Background(), "courses:list", &out, time.Minute, compute)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCacheServiceInvalidatePrefix(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, zap.NewNop())

	var calls int32
	compute := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "x", nil
	}

	var out string
	require.NoError(t, cache.GetOrCompute(context.Background(), "courses:list", &out, time.Minute, compute))
	cache.Invalidate(context.Background(), "courses:")
	require.NoError(t, cache.GetOrCompute(context.Background(), "courses:list", &out, time.Minute, compute))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
