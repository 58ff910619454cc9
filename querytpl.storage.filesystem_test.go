package querytpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFilesystemStorage_Contract(t *testing.T) {
	storageContract(t, func(t *testing.T) QueryStorage {
		s, err := NewFilesystemStorage(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestNewFilesystemStorage(t *testing.T) {
	t.Run("empty root", func(t *testing.T) {
		_, err := NewFilesystemStorage("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidStorageRoot)
	})

	t.Run("creates nested root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "a", "b")
		_, err := NewFilesystemStorage(root)
		require.NoError(t, err)

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestFilesystemStorage_FileLayout(t *testing.T) {
	root := t.TempDir()
	storage, err := NewFilesystemStorage(root)
	require.NoError(t, err)
	ctx := context.Background()

	q := &StoredQuery{
		Name:        "users.by_id",
		Source:      "SELECT * FROM users WHERE id = ?d",
		Description: "one user",
		Tags:        []string{"users"},
	}
	require.NoError(t, storage.Save(ctx, q))

	data, err := os.ReadFile(filepath.Join(root, "users.by_id", "v1.yaml"))
	require.NoError(t, err)

	var onDisk StoredQuery
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, q.ID, onDisk.ID)
	assert.Equal(t, q.Source, onDisk.Source)
	assert.Equal(t, "one user", onDisk.Description)
	assert.Equal(t, 1, onDisk.Version)
}

func TestFilesystemStorage_HandWrittenFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "reports.daily")
	require.NoError(t, os.MkdirAll(dir, FilesystemDirPermissions))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v3.yaml"), []byte(
		"name: reports.daily\nsource: 'SELECT ?# FROM reports{ WHERE day = ?}'\nversion: 3\n"),
		FilesystemFilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), FilesystemFilePermissions))

	storage, err := NewFilesystemStorage(root)
	require.NoError(t, err)
	ctx := context.Background()

	versions, err := storage.ListVersions(ctx, "reports.daily")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, versions)

	engine := MustNew(WithStorage(storage))
	out, err := engine.BuildNamed(ctx, "reports.daily", List(String("id"), String("total")), Skip())
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `total` FROM reports", out)

	q := &StoredQuery{Name: "reports.daily", Source: "SELECT 1"}
	require.NoError(t, storage.Save(ctx, q))
	assert.Equal(t, 4, q.Version)
}

func TestFilesystemStorage_NameValidation(t *testing.T) {
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name     string
		expected string
	}{
		{"../escape", ErrMsgPathTraversalDetected},
		{"a/b", ErrMsgInvalidQueryName},
		{`a\b`, ErrMsgInvalidQueryName},
		{"what?", ErrMsgInvalidQueryName},
		{"", ErrMsgInvalidQueryName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.Save(ctx, &StoredQuery{Name: tt.name, Source: "SELECT 1"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)

			_, err = storage.Get(ctx, tt.name)
			require.Error(t, err)
		})
	}
}

func TestFilesystemStorage_CorruptFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(dir, FilesystemDirPermissions))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v1.yaml"), []byte("name: [unclosed"), FilesystemFilePermissions))

	storage, err := NewFilesystemStorage(root)
	require.NoError(t, err)

	_, err = storage.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnmarshalQuery)

	all, err := storage.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
