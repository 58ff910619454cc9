package querytpl

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FilesystemStorage stores queries as YAML files, one file per version.
//
// Directory structure:
//
//	<root>/
//	  <query-name>/
//	    v1.yaml
//	    v2.yaml
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// Filesystem storage error messages
const (
	ErrMsgInvalidStorageRoot    = "invalid storage root"
	ErrMsgCreateStorageDir      = "failed to create storage directory"
	ErrMsgReadStorageDir        = "failed to read storage directory"
	ErrMsgMarshalQuery          = "failed to marshal query"
	ErrMsgUnmarshalQuery        = "failed to unmarshal query"
	ErrMsgWriteQuery            = "failed to write query"
	ErrMsgReadQuery             = "failed to read query"
	ErrMsgDeleteQuery           = "failed to delete query"
	ErrMsgPathTraversalDetected = "path traversal detected"
)

// Characters that may not appear in a query name stored on disk
const filesystemInvalidNameChars = "/\\:*?\"<>|"

// FilesystemStorageDriver creates FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a FilesystemStorage rooted at the connection string path.
func (d *FilesystemStorageDriver) Open(connectionString string) (QueryStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a filesystem catalog, creating root if needed.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{Message: ErrMsgCreateStorageDir, Name: root, Cause: err}
	}
	return &FilesystemStorage{root: root}, nil
}

// Get retrieves the latest version of a query by name.
func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQueryNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewQueryNotFoundError(name)
	}
	return s.loadQuery(name, versions[0])
}

// GetVersion retrieves a specific version of a query.
func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQueryNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.loadQuery(name, version)
}

// Save writes the query as the next version file.
func (s *FilesystemStorage) Save(ctx context.Context, query *StoredQuery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateQueryNameForFilesystem(query.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	queryDir := filepath.Join(s.root, query.Name)
	if err := os.MkdirAll(queryDir, FilesystemDirPermissions); err != nil {
		return &StorageError{Message: ErrMsgCreateStorageDir, Name: queryDir, Cause: err}
	}

	versions, err := s.listVersionsInternal(query.Name)
	if err != nil {
		return &StorageError{Message: ErrMsgReadStorageDir, Name: queryDir, Cause: err}
	}
	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0] + 1
	}

	// Stamp a copy first so the caller's query is untouched on failure
	pending := copyStoredQuery(query)
	stored := stampQuery(pending, nextVersion, time.Now())

	data, err := yaml.Marshal(stored)
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalQuery, Name: query.Name, Cause: err}
	}
	filename := s.versionFile(query.Name, nextVersion)
	if err := os.WriteFile(filename, data, FilesystemFilePermissions); err != nil {
		return &StorageError{Message: ErrMsgWriteQuery, Name: filename, Cause: err}
	}

	query.ID = stored.ID
	query.Version = stored.Version
	query.CreatedAt = stored.CreatedAt
	query.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes all versions of a query.
func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateQueryNameForFilesystem(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	queryDir := filepath.Join(s.root, name)
	if _, err := os.Stat(queryDir); os.IsNotExist(err) {
		return NewQueryNotFoundError(name)
	}
	if err := os.RemoveAll(queryDir); err != nil {
		return &StorageError{Message: ErrMsgDeleteQuery, Name: name, Cause: err}
	}
	return nil
}

// List returns queries matching the filter.
func (s *FilesystemStorage) List(ctx context.Context, filter *QueryFilter) ([]*StoredQuery, error) {
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

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: s.root, Cause: err}
	}

	results := []*StoredQuery{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		versions, err := s.listVersionsInternal(entry.Name())
		if err != nil || len(versions) == 0 {
			continue
		}
		if !filter.IncludeAllVersions {
			versions = versions[:1]
		}
		for _, version := range versions {
			q, err := s.loadQuery(entry.Name(), version)
			if err != nil {
				continue
			}
			if matchesFilter(q, filter) {
				results = append(results, q)
			}
		}
	}
	return sortAndPage(results, filter), nil
}

// Exists checks if a query with the given name exists.
func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateQueryNameForFilesystem(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// ListVersions returns all version numbers for a query, newest first.
func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQueryNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.listVersionsInternal(name)
}

// Close marks the storage as closed. Files on disk are kept.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FilesystemStorage) versionFile(name string, version int) string {
	return filepath.Join(s.root, name, FilesystemVersionPrefix+strconv.Itoa(version)+FilesystemVersionSuffix)
}

// listVersionsInternal returns the versions on disk, newest first.
func (s *FilesystemStorage) listVersionsInternal(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, err
	}

	versions := []int{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		if !strings.HasPrefix(filename, FilesystemVersionPrefix) || !strings.HasSuffix(filename, FilesystemVersionSuffix) {
			continue
		}
		versionStr := strings.TrimSuffix(strings.TrimPrefix(filename, FilesystemVersionPrefix), FilesystemVersionSuffix)
		if version, err := strconv.Atoi(versionStr); err == nil && version > 0 {
			versions = append(versions, version)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func (s *FilesystemStorage) loadQuery(name string, version int) (*StoredQuery, error) {
	filename := s.versionFile(name, version)
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageVersionNotFoundError(name, version)
		}
		return nil, &StorageError{Message: ErrMsgReadQuery, Name: filename, Cause: err}
	}

	var q StoredQuery
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, &StorageError{Message: ErrMsgUnmarshalQuery, Name: filename, Cause: err}
	}
	return &q, nil
}

// validateQueryNameForFilesystem rejects names that would escape the root.
func validateQueryNameForFilesystem(name string) error {
	if name == "" {
		return NewInvalidQueryNameError(name)
	}
	if strings.Contains(name, "..") {
		return &StorageError{Message: ErrMsgPathTraversalDetected, Name: name}
	}
	if strings.ContainsAny(name, filesystemInvalidNameChars) {
		return NewInvalidQueryNameError(name)
	}
	return nil
}
