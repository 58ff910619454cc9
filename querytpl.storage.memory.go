package querytpl

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory QueryStorage.
// It is intended for tests and development; data is lost on exit.
type MemoryStorage struct {
	mu      sync.RWMutex
	queries map[string][]*StoredQuery // name -> versions, newest first
	closed  bool
}

// MemoryStorageDriver creates MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage. The connection string is ignored.
func (d *MemoryStorageDriver) Open(connectionString string) (QueryStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates a new in-memory query catalog.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		queries: make(map[string][]*StoredQuery),
	}
}

// Get retrieves the latest version of a query by name.
func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, ok := s.queries[name]
	if !ok || len(versions) == 0 {
		return nil, NewQueryNotFoundError(name)
	}
	return copyStoredQuery(versions[0]), nil
}

// GetVersion retrieves a specific version of a query.
func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	for _, q := range s.queries[name] {
		if q.Version == version {
			return copyStoredQuery(q), nil
		}
	}
	return nil, NewStorageVersionNotFoundError(name, version)
}

// Save stores a query as a new version.
func (s *MemoryStorage) Save(ctx context.Context, query *StoredQuery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if query.Name == "" {
		return NewInvalidQueryNameError(query.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions := s.queries[query.Name]
	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0].Version + 1
	}

	stored := stampQuery(query, nextVersion, time.Now())
	s.queries[query.Name] = append([]*StoredQuery{stored}, versions...)
	return nil
}

// Delete removes all versions of a query.
func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	if _, ok := s.queries[name]; !ok {
		return NewQueryNotFoundError(name)
	}
	delete(s.queries, name)
	return nil
}

// List returns queries matching the filter.
func (s *MemoryStorage) List(ctx context.Context, filter *QueryFilter) ([]*StoredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if filter == nil {
		filter = &QueryFilter{}
	}

	results := []*StoredQuery{}
	for _, versions := range s.queries {
		if len(versions) == 0 {
			continue
		}
		candidates := versions[:1]
		if filter.IncludeAllVersions {
			candidates = versions
		}
		for _, q := range candidates {
			if matchesFilter(q, filter) {
				results = append(results, copyStoredQuery(q))
			}
		}
	}
	return sortAndPage(results, filter), nil
}

// Exists checks if a query with the given name exists.
func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}
	return len(s.queries[name]) > 0, nil
}

// ListVersions returns all version numbers for a query, newest first.
func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.queries[name]
	result := make([]int, len(versions))
	for i, q := range versions {
		result[i] = q.Version
	}
	return result, nil
}

// Close marks the storage as closed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.queries = nil
	return nil
}
