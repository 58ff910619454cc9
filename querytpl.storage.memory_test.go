package querytpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_NewMemoryStorage(t *testing.T) {
	storage := NewMemoryStorage()
	require.NotNil(t, storage)
	assert.NotNil(t, storage.queries)
	assert.False(t, storage.closed)
}

func TestMemoryStorage_Contract(t *testing.T) {
	storageContract(t, func(t *testing.T) QueryStorage {
		s := NewMemoryStorage()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMemoryStorage_SaveDoesNotAlias(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	q := &StoredQuery{Name: "alias", Source: "SELECT 1", Metadata: map[string]string{"owner": "ops"}}
	require.NoError(t, storage.Save(ctx, q))
	q.Metadata["owner"] = "changed"
	q.Source = "changed"

	got, err := storage.Get(ctx, "alias")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got.Source)
	assert.Equal(t, "ops", got.Metadata["owner"])
}

func TestMemoryStorage_Close(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Close())
	assert.True(t, storage.closed)
	assert.Nil(t, storage.queries)

	_, err := storage.List(context.Background(), nil)
	assert.Contains(t, err.Error(), ErrMsgStorageClosed)
}
