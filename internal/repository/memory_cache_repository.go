package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

type memoryEntry struct {
	payload    []byte
	insertedAt time.Time
	ttl        time.Duration
}

// MemoryCacheRepository is the default in-process cache store: a mutex-guarded
// map of serialized payloads with per-entry TTL, checked on read. Entries live
// for the process lifetime only and the key space is unbounded; that is an
// accepted limitation at this scale.
type MemoryCacheRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCacheRepository constructs the in-process store.
func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves a live entry into dest, or reports a miss. Entries past their
// TTL are treated as absent and dropped.
func (r *MemoryCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return appErrors.ErrCacheMiss
	}
	if r.now().Sub(entry.insertedAt) >= entry.ttl {
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		return appErrors.ErrCacheMiss
	}

	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores the value with a fresh timestamp.
func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	r.mu.Lock()
	r.entries[key] = memoryEntry{payload: payload, insertedAt: r.now(), ttl: ttl}
	r.mu.Unlock()
	return nil
}

// DeleteByPattern removes entries whose key starts with the pattern prefix.
// Only the trailing-star form used by the services is supported.
func (r *MemoryCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")

	r.mu.Lock()
	for key := range r.entries {
		if strings.HasPrefix(key, prefix) {
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()
	return nil
}
