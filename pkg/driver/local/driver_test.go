package local

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/driver"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New(Params{RootPath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, d.Initialize(context.Background()))
	return d
}

func TestDriver_UploadThenDownloadRoundTrips(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	_, err := d.UploadFile(ctx, "/docs/readme.txt", bytes.NewBufferString("hello"), driver.UploadOptions{})
	require.NoError(t, err)

	result, err := d.DownloadFile(ctx, "/docs/readme.txt", driver.DownloadRequest{})
	require.NoError(t, err)
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int64(5), result.ContentLength)
}

func TestDriver_DownloadRange(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	_, err := d.UploadFile(ctx, "/f.bin", bytes.NewBufferString("0123456789"), driver.UploadOptions{})
	require.NoError(t, err)

	result, err := d.DownloadFile(ctx, "/f.bin", driver.DownloadRequest{HasRange: true, RangeStart: 2, RangeEnd: 5})
	require.NoError(t, err)
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(body))
	assert.Equal(t, "bytes 2-5/10", result.ContentRange)
}

func TestDriver_ListDirectorySortedAndSkipsTmp(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	_, err := d.UploadFile(ctx, "/b.txt", bytes.NewBufferString("b"), driver.UploadOptions{})
	require.NoError(t, err)
	_, err = d.UploadFile(ctx, "/a.txt", bytes.NewBufferString("a"), driver.UploadOptions{})
	require.NoError(t, err)

	entries, err := d.ListDirectory(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "b.txt", entries[1].Name)
}

func TestDriver_DeleteItemsCleansEmptyDirs(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	_, err := d.UploadFile(ctx, "/nested/deep/file.txt", bytes.NewBufferString("x"), driver.UploadOptions{})
	require.NoError(t, err)

	require.NoError(t, d.DeleteItems(ctx, []string{"/nested/deep/file.txt"}))

	_, err = d.GetFileInfo(ctx, "/nested/deep")
	assert.Error(t, err)
}

func TestDriver_DotDotPathClampedUnderRoot(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	_, err := d.UploadFile(ctx, "/../../etc/passwd", bytes.NewBufferString("x"), driver.UploadOptions{})
	assert.NoError(t, err) // Clean("/../../etc/passwd") normalizes to "/etc/passwd", still under root
}

func TestDriver_RenameItem(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	_, err := d.UploadFile(ctx, "/old.txt", bytes.NewBufferString("x"), driver.UploadOptions{})
	require.NoError(t, err)

	require.NoError(t, d.RenameItem(ctx, "/old.txt", "/new.txt"))

	_, err = d.GetFileInfo(ctx, "/old.txt")
	assert.Error(t, err)
	_, err = d.GetFileInfo(ctx, "/new.txt")
	assert.NoError(t, err)
}

func TestDriver_HasCapability(t *testing.T) {
	d := newTestDriver(t)
	assert.True(t, d.HasCapability(driver.CapReader))
	assert.True(t, d.HasCapability(driver.CapWriter))
	assert.True(t, d.HasCapability(driver.CapAtomic))
	assert.False(t, d.HasCapability(driver.CapMultipart))
}
