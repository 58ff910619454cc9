package querytpl

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStorage wraps any QueryStorage with a TTL-bounded LRU cache of the
// latest version per query name. Writes through the wrapper invalidate the
// affected name.
type CachedStorage struct {
	storage QueryStorage
	config  CacheConfig
	latest  *expirable.LRU[string, *StoredQuery]

	mu     sync.RWMutex
	closed bool
}

// CacheConfig configures CachedStorage.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached queries.
	// Least recently used entries are evicted first.
	// Default: 1000.
	MaxEntries int
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        DefaultStorageCacheTTL,
		MaxEntries: DefaultStorageCacheMaxEntries,
	}
}

// NewCachedStorage wraps storage with caching.
func NewCachedStorage(storage QueryStorage, config CacheConfig) *CachedStorage {
	if config.TTL <= 0 {
		config.TTL = DefaultStorageCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultStorageCacheMaxEntries
	}

	return &CachedStorage{
		storage: storage,
		config:  config,
		latest:  expirable.NewLRU[string, *StoredQuery](config.MaxEntries, nil, config.TTL),
	}
}

// Get retrieves the latest version of a query, from cache when possible.
func (s *CachedStorage) Get(ctx context.Context, name string) (*StoredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if q, ok := s.latest.Get(name); ok {
		return copyStoredQuery(q), nil
	}

	q, err := s.storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.latest.Add(name, copyStoredQuery(q))
	return q, nil
}

// GetVersion retrieves a specific version, bypassing the cache.
func (s *CachedStorage) GetVersion(ctx context.Context, name string, version int) (*StoredQuery, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.storage.GetVersion(ctx, name, version)
}

// Save stores a query and invalidates its cache entry.
func (s *CachedStorage) Save(ctx context.Context, query *StoredQuery) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.storage.Save(ctx, query); err != nil {
		return err
	}
	s.latest.Remove(query.Name)
	return nil
}

// Delete removes a query and invalidates its cache entry.
func (s *CachedStorage) Delete(ctx context.Context, name string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, name); err != nil {
		return err
	}
	s.latest.Remove(name)
	return nil
}

// List bypasses the cache.
func (s *CachedStorage) List(ctx context.Context, filter *QueryFilter) ([]*StoredQuery, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.storage.List(ctx, filter)
}

// Exists answers from cache when the name is cached.
func (s *CachedStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if s.latest.Contains(name) {
		return true, nil
	}
	return s.storage.Exists(ctx, name)
}

// ListVersions bypasses the cache.
func (s *CachedStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.storage.ListVersions(ctx, name)
}

// Close purges the cache and closes the underlying storage.
func (s *CachedStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	s.closed = true
	s.latest.Purge()
	return s.storage.Close()
}

// Invalidate drops a single name from the cache.
func (s *CachedStorage) Invalidate(name string) {
	s.latest.Remove(name)
}

// InvalidateAll empties the cache.
func (s *CachedStorage) InvalidateAll() {
	s.latest.Purge()
}

// Len returns the number of cached entries.
func (s *CachedStorage) Len() int {
	return s.latest.Len()
}

// Unwrap returns the underlying storage.
func (s *CachedStorage) Unwrap() QueryStorage {
	return s.storage
}

func (s *CachedStorage) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return NewStorageClosedError()
	}
	return nil
}
