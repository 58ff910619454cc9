package querytpl

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QueryID is a unique identifier for a stored query version (e.g. "qry_3f0c...").
type QueryID string

// StoredQuery is a named, versioned query template kept in a catalog.
type StoredQuery struct {
	// ID is the unique identifier for this version.
	ID QueryID `json:"id" yaml:"id"`

	// Name is the query name used for lookups.
	Name string `json:"name" yaml:"name"`

	// Source is the template text.
	Source string `json:"source" yaml:"source"`

	// Description is free-form documentation for the query.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version is the version number (1, 2, 3, ...). Higher is newer.
	Version int `json:"version" yaml:"version"`

	// Metadata contains arbitrary user-defined key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Tags for categorization and filtering.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// CreatedBy identifies who saved this version (optional).
	CreatedBy string `json:"created_by,omitempty" yaml:"created_by,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// QueryFilter defines filters for listing stored queries.
type QueryFilter struct {
	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// NameContains filters to names containing this substring.
	NameContains string

	// Tags filters to queries having ALL specified tags.
	Tags []string

	// CreatedBy filters by author.
	CreatedBy string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// IncludeAllVersions includes every version, not just the latest.
	IncludeAllVersions bool
}

// QueryStorage is the interface for query catalog backends.
// Implementations must be safe for concurrent use.
type QueryStorage interface {
	// Get retrieves the latest version of a query by name.
	// Returns an error matching ErrQueryNotFound if it doesn't exist.
	Get(ctx context.Context, name string) (*StoredQuery, error)

	// GetVersion retrieves a specific version of a query.
	GetVersion(ctx context.Context, name string, version int) (*StoredQuery, error)

	// Save stores a query as a new version. ID, Version, CreatedAt and
	// UpdatedAt are set by the storage and written back to query.
	Save(ctx context.Context, query *StoredQuery) error

	// Delete removes all versions of a query.
	Delete(ctx context.Context, name string) error

	// List returns queries matching the filter, ordered by name then
	// version descending.
	List(ctx context.Context, filter *QueryFilter) ([]*StoredQuery, error)

	// Exists checks if a query with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns all version numbers for a query, newest first.
	// Returns an empty slice if the query doesn't exist.
	ListVersions(ctx context.Context, name string) ([]int, error)

	// Close releases any resources held by the storage.
	Close() error
}

// StorageDriver is a factory for creating storage instances.
// Drivers register themselves during init().
type StorageDriver interface {
	// Open creates a storage instance. The connection string is driver-specific.
	Open(connectionString string) (QueryStorage, error)
}

// Storage driver registry
var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]StorageDriver)
)

// RegisterStorageDriver registers a storage driver by name.
// Panics if driver is nil or the name is already registered.
func RegisterStorageDriver(name string, driver StorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenStorage opens a storage connection using the named driver.
//
//	storage, err := querytpl.OpenStorage("memory", "")
//	storage, err := querytpl.OpenStorage("filesystem", "/var/lib/queries")
//	storage, err := querytpl.OpenStorage("postgres", "postgres://...")
func OpenStorage(driverName, connectionString string) (QueryStorage, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, NewStorageDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the names of all registered drivers, sorted.
func ListStorageDrivers() []string {
	storageDriversMu.RLock()
	defer storageDriversMu.RUnlock()

	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Storage error message constants
const (
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgQueryNotFound           = "query not found"
	ErrMsgVersionNotFound         = "query version not found"
	ErrMsgInvalidQueryName        = "invalid query name"
)

// ErrQueryNotFound is matched by every not-found error from a storage backend.
var ErrQueryNotFound = errors.New(ErrMsgQueryNotFound)

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	if e.Name != "" && e.Version > 0 {
		msg += ": " + e.Name + " " + FilesystemVersionPrefix + strconv.Itoa(e.Version)
	} else if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports not-found errors as ErrQueryNotFound.
func (e *StorageError) Is(target error) bool {
	if target != ErrQueryNotFound {
		return false
	}
	return e.Message == ErrMsgQueryNotFound || e.Message == ErrMsgVersionNotFound
}

// NewStorageDriverNotFoundError creates an error for a missing storage driver.
func NewStorageDriverNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgStorageDriverNotFound, Name: name}
}

// NewQueryNotFoundError creates an error for a query name with no versions.
func NewQueryNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgQueryNotFound, Name: name}
}

// NewStorageVersionNotFoundError creates an error for a missing version.
func NewStorageVersionNotFoundError(name string, version int) error {
	return &StorageError{Message: ErrMsgVersionNotFound, Name: name, Version: version}
}

// NewStorageClosedError creates an error for operations on closed storage.
func NewStorageClosedError() error {
	return &StorageError{Message: ErrMsgStorageClosed}
}

// NewInvalidQueryNameError creates an error for an empty or unsafe query name.
func NewInvalidQueryNameError(name string) error {
	return &StorageError{Message: ErrMsgInvalidQueryName, Name: name}
}

func generateQueryID() QueryID {
	return QueryID(QueryIDPrefix + uuid.NewString())
}

// stampQuery builds the stored copy of a new version and writes the generated
// fields back to the caller's query.
func stampQuery(query *StoredQuery, version int, now time.Time) *StoredQuery {
	stored := copyStoredQuery(query)
	stored.ID = generateQueryID()
	stored.Version = version
	stored.CreatedAt = now
	stored.UpdatedAt = now

	query.ID = stored.ID
	query.Version = stored.Version
	query.CreatedAt = stored.CreatedAt
	query.UpdatedAt = stored.UpdatedAt
	return stored
}

// matchesFilter checks a single query version against the filter.
func matchesFilter(q *StoredQuery, filter *QueryFilter) bool {
	if filter.NamePrefix != "" && !strings.HasPrefix(q.Name, filter.NamePrefix) {
		return false
	}
	if filter.NameContains != "" && !strings.Contains(q.Name, filter.NameContains) {
		return false
	}
	if filter.CreatedBy != "" && q.CreatedBy != filter.CreatedBy {
		return false
	}
	for _, tag := range filter.Tags {
		if !containsString(q.Tags, tag) {
			return false
		}
	}
	return true
}

// sortAndPage orders results by name then version descending and applies
// the filter's offset and limit.
func sortAndPage(results []*StoredQuery, filter *QueryFilter) []*StoredQuery {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Version > results[j].Version
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return []*StoredQuery{}
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results
}

func containsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

// copyStoredQuery creates a deep copy of a StoredQuery.
func copyStoredQuery(q *StoredQuery) *StoredQuery {
	if q == nil {
		return nil
	}
	c := *q
	c.Metadata = copyStringMap(q.Metadata)
	c.Tags = copyStringSlice(q.Tags)
	return &c
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	result := make([]string, len(s))
	copy(result, s)
	return result
}
