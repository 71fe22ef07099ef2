package netsync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Static errors for cache misses.
var (
	ErrCacheKeyNotFound  = fmt.Errorf("key not found")
	ErrCacheEntryExpired = fmt.Errorf("entry expired")
)

// CacheEntry is a stored response with its expiry.
type CacheEntry struct {
	Data      []byte
	StoredAt  time.Time
	ExpiresAt time.Time
	ETag      string
}

// Cache is the backend contract shared by all cache implementations.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryCache is an in-memory cache with lazy TTL expiry and a fixed
// maximum size. When full, the entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get returns a copy of the entry for key, so callers may mutate the
// result without corrupting the stored value. Expired entries are removed
// and reported as expired.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(c.entries, key)

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	copied := *entry
	copied.Data = append([]byte(nil), entry.Data...)

	return &copied, nil
}

// Set stores an entry, evicting the entry closest to expiry when full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry

	return nil
}

// evictOldest removes the entry with the earliest expiry. Caller holds the
// lock.
func (c *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldestExp time.Time
	)

	for key, entry := range c.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestExp) {
			oldestKey = key
			oldestExp = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}

	return !time.Now().After(entry.ExpiresAt)
}

// Cleanup removes all expired entries eagerly.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}

// CacheStats counts cache manager activity.
type CacheStats struct {
	Hits          int64 `json:"hits"          yaml:"hits"`
	Misses        int64 `json:"misses"        yaml:"misses"`
	Sets          int64 `json:"sets"          yaml:"sets"`
	Invalidations int64 `json:"invalidations" yaml:"invalidations"`
}

// GetHitRate returns hits / (hits + misses), or zero with no requests.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager wraps a cache backend with canonical key construction and
// hit/miss statistics. Statistics belong to the manager instance; there is
// no process-wide state.
type CacheManager struct {
	backend Cache
	logger  Logger

	mu    sync.Mutex
	stats CacheStats
}

// NewCacheManager creates a cache manager. A nil cache defaults to a
// memory cache, a nil logger to no logging.
func NewCacheManager(cache Cache, logger Logger) *CacheManager {
	if cache == nil {
		cache = NewMemoryCache(defaultManagerCacheSize)
	}

	return &CacheManager{
		backend: cache,
		logger:  logger,
	}
}

const defaultManagerCacheSize = 512

// GetCacheKey builds the canonical key for (operation, path, params).
// Params are sorted so identical requests always produce identical keys.
func (m *CacheManager) GetCacheKey(operation, path string, params map[string]string) string {
	if len(params) == 0 {
		return operation + ":" + path
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	return operation + ":" + path + ":" + strings.Join(pairs, "&")
}

// Get returns the cached data for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.backend.Get(ctx, key)
	if err != nil {
		m.count(func(s *CacheStats) { s.Misses++ })

		return nil, err
	}

	m.count(func(s *CacheStats) { s.Hits++ })

	return entry.Data, nil
}

// Set stores data under key for ttl.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data with an entity tag for conditional requests.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	now := time.Now()

	err := m.backend.Set(ctx, key, &CacheEntry{
		Data:      data,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
		ETag:      etag,
	})
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	m.count(func(s *CacheStats) { s.Sets++ })

	return nil
}

// Delete removes one entry.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	err := m.backend.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	m.count(func(s *CacheStats) { s.Invalidations++ })

	return nil
}

// Clear removes all entries.
func (m *CacheManager) Clear(ctx context.Context) error {
	err := m.backend.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	m.count(func(s *CacheStats) { s.Invalidations++ })

	return nil
}

// Has reports whether a live entry exists.
func (m *CacheManager) Has(ctx context.Context, key string) bool {
	return m.backend.Has(ctx, key)
}

// GetStats returns a copy of the manager's counters.
func (m *CacheManager) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}

func (m *CacheManager) count(update func(*CacheStats)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	update(&m.stats)
}

// CachingPolicy decides which responses enter the cache.
type CachingPolicy struct {
	// CacheGET enables caching of read responses.
	CacheGET bool

	// CacheWrites enables caching of write responses (used by the write
	// dedup layer, not by gateway read caches).
	CacheWrites bool

	// CacheErrors enables caching of non-2xx responses.
	CacheErrors bool

	// ExcludePaths lists path prefixes never cached.
	ExcludePaths []string

	// IncludePaths, when non-empty, restricts caching to these prefixes.
	IncludePaths []string
}

// DefaultCachingPolicy caches successful reads only and excludes the
// narrow projections that trade consistency for freshness.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET: true,
	}
}

// ShouldCache reports whether a response may be stored.
func (p *CachingPolicy) ShouldCache(method, path string, status int) bool {
	if !p.CacheErrors && (status < 200 || status >= 300) {
		return false
	}

	switch method {
	case "GET":
		if !p.CacheGET {
			return false
		}
	default:
		if !p.CacheWrites {
			return false
		}
	}

	for _, prefix := range p.ExcludePaths {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}

	if len(p.IncludePaths) > 0 {
		for _, prefix := range p.IncludePaths {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}

		return false
	}

	return true
}
