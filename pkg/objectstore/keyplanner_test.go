package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/models"
)

func TestPlanKey_OverwriteKeepsName(t *testing.T) {
	exists := func(ctx context.Context, storageConfigID, storagePath string) (bool, error) { return true, nil }
	key, err := PlanKey(context.Background(), exists, "cfg-1", "/uploads", "docs", "report.pdf", models.NamingOverwrite)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/docs/report.pdf", key)
}

func TestPlanKey_RandomSuffixOnCollision(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, storageConfigID, storagePath string) (bool, error) {
		calls++
		return calls == 1, nil // first path taken, suffixed retry is free
	}
	key, err := PlanKey(context.Background(), exists, "cfg-1", "/uploads", "", "report.pdf", models.NamingRandomSuffix)
	require.NoError(t, err)
	assert.NotEqual(t, "/uploads/report.pdf", key)
	assert.Contains(t, key, "report-")
	assert.Contains(t, key, ".pdf")
}

func TestPlanKey_NoCollisionKeepsOriginal(t *testing.T) {
	exists := func(ctx context.Context, storageConfigID, storagePath string) (bool, error) { return false, nil }
	key, err := PlanKey(context.Background(), exists, "cfg-1", "", "", "a.txt", models.NamingRandomSuffix)
	require.NoError(t, err)
	assert.Equal(t, "/a.txt", key)
}
