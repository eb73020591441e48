package drivercache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/driver"
)

type countingDriver struct {
	driver.BaseDriver
	cleanups *int32
}

func (d *countingDriver) Initialize(ctx context.Context) error { d.MarkInitialized(); return nil }
func (d *countingDriver) Cleanup(ctx context.Context) error {
	atomic.AddInt32(d.cleanups, 1)
	return nil
}

func newTestFactory(cleanups *int32) *driver.Factory {
	f := driver.NewFactory()
	f.Register(driver.Registration{
		Type: driver.TypeLocal,
		New: func(params map[string]any, credentials map[string]any) (driver.Base, error) {
			return &countingDriver{BaseDriver: driver.NewBaseDriver(driver.TypeLocal), cleanups: cleanups}, nil
		},
	})
	return f
}

func fixedLookup(storageConfigID string) ConfigLookup {
	return func(ctx context.Context, id string) (driver.Type, map[string]any, map[string]any, error) {
		return driver.TypeLocal, map[string]any{"id": id}, nil, nil
	}
}

func TestCache_GetIsCachedOnSecondCall(t *testing.T) {
	var cleanups int32
	c := New(newTestFactory(&cleanups), fixedLookup("cfg-1"))

	d1, err := c.Get(context.Background(), "cfg-1")
	require.NoError(t, err)
	d2, err := c.Get(context.Background(), "cfg-1")
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	assert.Equal(t, int64(1), c.Stats().Misses)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestCache_InvalidateEvictsAndCleansUp(t *testing.T) {
	var cleanups int32
	c := New(newTestFactory(&cleanups), fixedLookup("cfg-1"))

	_, err := c.Get(context.Background(), "cfg-1")
	require.NoError(t, err)

	c.Invalidate(driver.TypeLocal, "cfg-1")
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(context.Background(), "cfg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Stats().Misses)
}

func TestCache_EvictsLRUWhenOverCapacity(t *testing.T) {
	var cleanups int32
	f := newTestFactory(&cleanups)
	configIDs := []string{"a", "b", "c", "d"}
	idx := 0

	c := New(f, func(ctx context.Context, id string) (driver.Type, map[string]any, map[string]any, error) {
		return driver.TypeLocal, nil, nil, nil
	}, WithCapacity(2))

	for _, id := range configIDs {
		_, err := c.Get(context.Background(), id)
		require.NoError(t, err)
		idx++
	}

	assert.LessOrEqual(t, c.Len(), 2)
}
