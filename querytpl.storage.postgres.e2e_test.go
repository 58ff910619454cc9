//go:build integration

package querytpl

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts an ephemeral PostgreSQL and returns its DSN.
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("querytpl_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")
	return connStr
}

func TestPostgres_E2E_Contract(t *testing.T) {
	connStr := setupPostgresContainer(t)
	var n atomic.Int32

	// Each subtest gets its own tables via a unique prefix
	storageContract(t, func(t *testing.T) QueryStorage {
		s, err := NewPostgresStorage(PostgresConfig{
			ConnectionString: connStr,
			TablePrefix:      fmt.Sprintf("t%d_", n.Add(1)),
			AutoMigrate:      true,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestPostgres_E2E_Migrations(t *testing.T) {
	connStr := setupPostgresContainer(t)
	ctx := context.Background()

	s, err := NewPostgresStorage(PostgresConfig{ConnectionString: connStr, AutoMigrate: true})
	require.NoError(t, err)
	defer s.Close()

	version, err := s.CurrentSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(s.getMigrations()), version)

	// Idempotent
	require.NoError(t, s.RunMigrations(ctx))
	again, err := s.CurrentSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, version, again)
}

func TestPostgres_E2E_DriverAndEngine(t *testing.T) {
	connStr := setupPostgresContainer(t)
	ctx := context.Background()

	storage, err := OpenStorage(StorageDriverNamePostgres, connStr)
	require.NoError(t, err)
	defer storage.Close()

	engine := MustNew(WithStorage(NewCachedStorage(storage, DefaultCacheConfig())))

	q := &StoredQuery{
		Name:     "users.update",
		Source:   "UPDATE users SET ?a WHERE user_id = ?d",
		Metadata: map[string]string{"owner": "accounts"},
		Tags:     []string{"users", "write"},
	}
	require.NoError(t, engine.SaveQuery(ctx, q))

	out, err := engine.BuildNamed(ctx, "users.update",
		Map(E("name", String("Jack")), E("email", Null())), Int(-1))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET `name` = 'Jack', `email` = NULL WHERE user_id = -1", out)

	stored, err := storage.Get(ctx, "users.update")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"owner": "accounts"}, stored.Metadata)
	assert.Equal(t, []string{"users", "write"}, stored.Tags)
}
