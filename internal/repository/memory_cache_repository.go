package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryCacheRepository keeps JSON payloads in an in-process TTL map.
// When maxEntries is reached the oldest stored entry is evicted.
type MemoryCacheRepository struct {
	store      *gocache.Cache
	maxEntries int
	now        func() time.Time

	mu sync.Mutex
}

// NewMemoryCacheRepository wraps a go-cache instance.
func NewMemoryCacheRepository(store *gocache.Cache, maxEntries int) *MemoryCacheRepository {
	return &MemoryCacheRepository{store: store, maxEntries: maxEntries, now: time.Now}
}

// Get decodes the cached payload into dest.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	value, ok := r.store.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	entry, ok := value.(memoryEntry)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores a copy of value encoded as JSON so callers never share mutable state with the cache.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxEntries > 0 {
		if _, exists := r.store.Get(key); !exists && r.store.ItemCount() >= r.maxEntries {
			r.evictOldest()
		}
	}
	r.store.Set(key, memoryEntry{payload: payload, storedAt: r.now()}, ttl)
	return nil
}

func (r *MemoryCacheRepository) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for key, item := range r.store.Items() {
		entry, ok := item.Object.(memoryEntry)
		if !ok {
			continue
		}
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.storedAt
		}
	}
	if oldestKey != "" {
		r.store.Delete(oldestKey)
	}
}

// DeleteByPattern removes entries whose key matches the glob pattern.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %q: %w", pattern, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.store.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			r.store.Delete(key)
		}
	}
	return nil
}

// Len returns the number of live entries.
func (r *MemoryCacheRepository) Len() int {
	return r.store.ItemCount()
}

// Close drops every entry.
func (r *MemoryCacheRepository) Close() error {
	r.store.Flush()
	return nil
}
