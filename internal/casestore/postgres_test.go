package casestore

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rif-protocol-server/internal/database"
	"github.com/rif-protocol-server/internal/domain"
)

// createPostgresStore starts a PostgreSQL container, applies the embedded
// migrations and opens a store on it.
func createPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	})

	url, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	runner, err := database.NewMigrationRunner(url, logger)
	require.NoError(t, err)
	require.NoError(t, runner.Up(ctx))
	require.NoError(t, runner.Close())

	store, err := NewPostgresStoreFromURL(url, 5, 2, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	store := createPostgresStore(t)
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		rec := testCase("Ana Lúcia Souza")
		require.NoError(t, store.Save(ctx, rec))
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Snapshot, got.Snapshot)
		assert.Equal(t, rec.CriticalAlerts, got.CriticalAlerts)
		assert.True(t, rec.EvaluatedAt.Equal(got.EvaluatedAt))
	})

	t.Run("upsert keeps one row", func(t *testing.T) {
		rec := testCase("Maria Silva")
		require.NoError(t, store.Save(ctx, rec))
		before, err := store.Count(ctx)
		require.NoError(t, err)

		rec.Recommendations = append(rec.Recommendations, "Cariótipo alterado: Aconselhamento genético + considerar PGT-SR")
		require.NoError(t, store.Save(ctx, rec))

		after, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Len(t, got.Recommendations, 2)
	})

	t.Run("list newest first", func(t *testing.T) {
		list, err := store.List(ctx, 10, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(list), 2)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
		}
	})

	t.Run("delete and not found", func(t *testing.T) {
		rec := testCase("Delete Me")
		require.NoError(t, store.Save(ctx, rec))
		require.NoError(t, store.Delete(ctx, rec.ID))

		_, err := store.Get(ctx, rec.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, rec.ID), domain.ErrNotFound)
	})

	t.Run("export and re-import skips existing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, store.ExportJSON(ctx, &buf))

		count, err := store.Count(ctx)
		require.NoError(t, err)

		imported, skipped, err := store.ImportJSON(ctx, &buf)
		require.NoError(t, err)
		assert.Zero(t, imported)
		assert.Equal(t, int(count), skipped)
	})
}
