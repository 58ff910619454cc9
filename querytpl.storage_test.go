package querytpl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct{}

func (fakeDriver) Open(string) (QueryStorage, error) { return NewMemoryStorage(), nil }

func TestStorageDriverRegistry(t *testing.T) {
	t.Run("built-in drivers registered", func(t *testing.T) {
		drivers := ListStorageDrivers()
		assert.Contains(t, drivers, StorageDriverNameMemory)
		assert.Contains(t, drivers, StorageDriverNameFilesystem)
		assert.Contains(t, drivers, StorageDriverNamePostgres)
		assert.IsIncreasing(t, drivers)
	})

	t.Run("open memory", func(t *testing.T) {
		storage, err := OpenStorage(StorageDriverNameMemory, "")
		require.NoError(t, err)
		defer storage.Close()
		assert.IsType(t, &MemoryStorage{}, storage)
	})

	t.Run("open filesystem", func(t *testing.T) {
		storage, err := OpenStorage(StorageDriverNameFilesystem, t.TempDir())
		require.NoError(t, err)
		defer storage.Close()
		assert.IsType(t, &FilesystemStorage{}, storage)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStorage("nope", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStorageDriverNotFound)
	})

	t.Run("register custom and duplicate", func(t *testing.T) {
		RegisterStorageDriver("test-fake", fakeDriver{})
		assert.Contains(t, ListStorageDrivers(), "test-fake")

		assert.Panics(t, func() {
			RegisterStorageDriver("test-fake", fakeDriver{})
		})
		assert.Panics(t, func() {
			RegisterStorageDriver("test-nil", nil)
		})
	})
}

func TestStorageError(t *testing.T) {
	t.Run("message forms", func(t *testing.T) {
		assert.Equal(t, ErrMsgStorageClosed, NewStorageClosedError().Error())
		assert.Equal(t, ErrMsgQueryNotFound+": q", NewQueryNotFoundError("q").Error())
		assert.Equal(t, ErrMsgVersionNotFound+": q v3", NewStorageVersionNotFoundError("q", 3).Error())
	})

	t.Run("not found matches sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(NewQueryNotFoundError("q"), ErrQueryNotFound))
		assert.True(t, errors.Is(NewStorageVersionNotFoundError("q", 1), ErrQueryNotFound))
		assert.False(t, errors.Is(NewStorageClosedError(), ErrQueryNotFound))
	})

	t.Run("unwrap cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := &StorageError{Message: ErrMsgWriteQuery, Name: "q", Cause: cause}
		assert.True(t, errors.Is(err, cause))
		assert.True(t, strings.HasSuffix(err.Error(), cause.Error()))
	})
}

// storageContract runs the behaviour every QueryStorage must share.
func storageContract(t *testing.T, open func(t *testing.T) QueryStorage) {
	ctx := context.Background()

	t.Run("save assigns id and versions", func(t *testing.T) {
		storage := open(t)
		q1 := &StoredQuery{Name: "users.by_id", Source: "SELECT * FROM users WHERE id = ?d", Tags: []string{"users"}}
		require.NoError(t, storage.Save(ctx, q1))
		assert.True(t, strings.HasPrefix(string(q1.ID), QueryIDPrefix))
		assert.Equal(t, 1, q1.Version)
		assert.False(t, q1.CreatedAt.IsZero())

		q2 := &StoredQuery{Name: "users.by_id", Source: "SELECT id FROM users WHERE id = ?d"}
		require.NoError(t, storage.Save(ctx, q2))
		assert.Equal(t, 2, q2.Version)
		assert.NotEqual(t, q1.ID, q2.ID)

		latest, err := storage.Get(ctx, "users.by_id")
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Version)
		assert.Equal(t, q2.Source, latest.Source)

		first, err := storage.GetVersion(ctx, "users.by_id", 1)
		require.NoError(t, err)
		assert.Equal(t, q1.Source, first.Source)
		assert.Equal(t, []string{"users"}, first.Tags)

		versions, err := storage.ListVersions(ctx, "users.by_id")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, versions)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		storage := open(t)
		err := storage.Save(ctx, &StoredQuery{Source: "SELECT 1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidQueryName)
	})

	t.Run("not found", func(t *testing.T) {
		storage := open(t)
		_, err := storage.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrQueryNotFound))

		_, err = storage.GetVersion(ctx, "missing", 4)
		assert.True(t, errors.Is(err, ErrQueryNotFound))

		err = storage.Delete(ctx, "missing")
		assert.True(t, errors.Is(err, ErrQueryNotFound))

		exists, err := storage.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)

		versions, err := storage.ListVersions(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("delete", func(t *testing.T) {
		storage := open(t)
		require.NoError(t, storage.Save(ctx, &StoredQuery{Name: "gone", Source: "SELECT 1"}))
		require.NoError(t, storage.Save(ctx, &StoredQuery{Name: "gone", Source: "SELECT 2"}))

		require.NoError(t, storage.Delete(ctx, "gone"))
		exists, err := storage.Exists(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list and filter", func(t *testing.T) {
		storage := open(t)
		for _, q := range []*StoredQuery{
			{Name: "orders.recent", Source: "SELECT 1", Tags: []string{"orders", "hot"}, CreatedBy: "ana"},
			{Name: "users.by_id", Source: "SELECT 2", Tags: []string{"users"}},
			{Name: "users.by_email", Source: "SELECT 3", Tags: []string{"users", "hot"}},
			{Name: "users.by_id", Source: "SELECT 4", Tags: []string{"users"}},
		} {
			require.NoError(t, storage.Save(ctx, q))
		}

		all, err := storage.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"orders.recent", "users.by_email", "users.by_id"}, names(all))
		assert.Equal(t, 2, all[2].Version)

		users, err := storage.List(ctx, &QueryFilter{NamePrefix: "users."})
		require.NoError(t, err)
		assert.Equal(t, []string{"users.by_email", "users.by_id"}, names(users))

		hot, err := storage.List(ctx, &QueryFilter{Tags: []string{"hot"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"orders.recent", "users.by_email"}, names(hot))

		byAna, err := storage.List(ctx, &QueryFilter{CreatedBy: "ana"})
		require.NoError(t, err)
		assert.Equal(t, []string{"orders.recent"}, names(byAna))

		contains, err := storage.List(ctx, &QueryFilter{NameContains: "by_"})
		require.NoError(t, err)
		assert.Len(t, contains, 2)

		versions, err := storage.List(ctx, &QueryFilter{NamePrefix: "users.by_id", IncludeAllVersions: true})
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, 2, versions[0].Version)
		assert.Equal(t, 1, versions[1].Version)

		paged, err := storage.List(ctx, &QueryFilter{Offset: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"users.by_email"}, names(paged))

		past, err := storage.List(ctx, &QueryFilter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, past)
	})

	t.Run("returned copies are independent", func(t *testing.T) {
		storage := open(t)
		require.NoError(t, storage.Save(ctx, &StoredQuery{Name: "copy", Source: "SELECT 1", Tags: []string{"a"}}))

		got, err := storage.Get(ctx, "copy")
		require.NoError(t, err)
		got.Tags[0] = "mutated"

		again, err := storage.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, again.Tags)
	})

	t.Run("cancelled context", func(t *testing.T) {
		storage := open(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := storage.Get(cancelled, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		storage := open(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, storage.Save(ctx, &StoredQuery{Name: "concurrent", Source: "SELECT 1"}))
			}()
		}
		wg.Wait()

		versions, err := storage.ListVersions(ctx, "concurrent")
		require.NoError(t, err)
		assert.Len(t, versions, 10)
		assert.Equal(t, 10, versions[0])
	})

	t.Run("closed", func(t *testing.T) {
		storage := open(t)
		require.NoError(t, storage.Close())

		_, err := storage.Get(ctx, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStorageClosed)

		err = storage.Save(ctx, &StoredQuery{Name: "x", Source: "SELECT 1"})
		assert.Contains(t, err.Error(), ErrMsgStorageClosed)
	})
}

func names(queries []*StoredQuery) []string {
	out := make([]string, len(queries))
	for i, q := range queries {
		out[i] = q.Name
	}
	return out
}
