//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cloudcrate/filegate/pkg/models"
)

// TestGORMStore_Postgres exercises the GORMStore CRUD surface against a
// real Postgres container, following the
// teacher's pkg/store/metadata/postgres/main_test.go use of a disposable
// container per run instead of a shared fixture database.
func TestGORMStore_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("filegate_test"),
		postgres.WithUsername("filegate_test"),
		postgres.WithPassword("filegate_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     port.Int(),
			Database: "filegate_test",
			User:     "filegate_test",
			Password: "filegate_test",
			SSLMode:  "disable",
		},
	}

	db, err := New(cfg)
	require.NoError(t, err)

	sc := &models.StorageConfig{
		Name:              "integration-bucket",
		Type:              models.StorageTypeS3,
		IsPublic:          true,
		TotalStorageBytes: 0,
	}
	id, err := db.CreateStorageConfig(ctx, sc)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.GetStorageConfig(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "integration-bucket", got.Name)

	mount := &models.Mount{
		MountPath:       "/integration",
		StorageConfigID: id,
		StorageType:     models.StorageTypeS3,
		IsActive:        true,
	}
	mountID, err := db.CreateMount(ctx, mount)
	require.NoError(t, err)

	require.NoError(t, db.TouchMount(ctx, mountID, time.Now()))

	require.Error(t, db.DeleteStorageConfig(ctx, id), "deleting a config with a live mount must fail")

	require.NoError(t, db.DeleteMount(ctx, mountID))
	require.NoError(t, db.DeleteStorageConfig(ctx, id))
}
