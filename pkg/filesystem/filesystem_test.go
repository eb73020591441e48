package filesystem

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
	"github.com/cloudcrate/filegate/pkg/mount"
	gpath "github.com/cloudcrate/filegate/pkg/path"
	"github.com/cloudcrate/filegate/pkg/policy"
	"github.com/cloudcrate/filegate/pkg/principal"
)

type fakeMounts struct {
	mounts []*models.Mount
}

func (f *fakeMounts) ResolveByPath(ctx context.Context, rawPath string) (*mount.Resolution, error) {
	p := gpath.Normalize(rawPath, false)
	if p == "/" {
		return nil, apperrors.Authorization("operation on root not allowed")
	}
	for _, m := range f.mounts {
		mp := gpath.Normalize(m.MountPath, false)
		if p == mp || strings.HasPrefix(p, mp+"/") {
			sub := strings.TrimPrefix(p, mp)
			if sub == "" {
				sub = "/"
			}
			return &mount.Resolution{Mount: m, SubPath: sub, MountPath: mp}, nil
		}
	}
	return nil, apperrors.NotFound("no mount found for path %q", rawPath)
}

func (f *fakeMounts) FindAccessibleFor(ctx context.Context, pr principal.Principal) ([]*models.Mount, error) {
	return f.mounts, nil
}

type noopToucher struct{}

func (noopToucher) TouchMount(ctx context.Context, id string, at time.Time) error { return nil }

type noopInvalidator struct{ calls int }

func (n *noopInvalidator) Invalidate(storageType driver.Type, storageConfigID string) { n.calls++ }

type fakeRWDriver struct {
	driver.BaseDriver
	files map[string][]byte
}

func (f *fakeRWDriver) Initialize(ctx context.Context) error { return nil }
func (f *fakeRWDriver) Cleanup(ctx context.Context) error    { return nil }

func (f *fakeRWDriver) ListDirectory(ctx context.Context, subPath string) ([]driver.Entry, error) {
	var out []driver.Entry
	for name := range f.files {
		out = append(out, driver.Entry{Name: name})
	}
	return out, nil
}

func (f *fakeRWDriver) GetFileInfo(ctx context.Context, subPath string) (driver.Entry, error) {
	body, ok := f.files[subPath]
	if !ok {
		return driver.Entry{}, apperrors.NotFound("not found")
	}
	return driver.Entry{Name: subPath, Size: int64(len(body))}, nil
}

func (f *fakeRWDriver) DownloadFile(ctx context.Context, subPath string, req driver.DownloadRequest) (*driver.DownloadResult, error) {
	body, ok := f.files[subPath]
	if !ok {
		return nil, apperrors.NotFound("not found")
	}
	return &driver.DownloadResult{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func (f *fakeRWDriver) UploadFile(ctx context.Context, subPath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	b, _ := io.ReadAll(body)
	f.files[subPath] = b
	return &driver.UploadResult{StoragePath: subPath}, nil
}

func (f *fakeRWDriver) CreateDirectory(ctx context.Context, subPath string) error { return nil }

func (f *fakeRWDriver) DeleteItems(ctx context.Context, subPaths []string) error {
	for _, p := range subPaths {
		delete(f.files, p)
	}
	return nil
}

func (f *fakeRWDriver) RenameItem(ctx context.Context, from, to string) error {
	f.files[to] = f.files[from]
	delete(f.files, from)
	return nil
}

func adminPrincipal() principal.Principal { return principal.Admin("admin-1") }

func newTestFS(m *models.Mount, d *fakeRWDriver, inv *noopInvalidator) *FileSystem {
	mounts := &fakeMounts{mounts: []*models.Mount{m}}
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	return New(mounts, noopToucher{}, resolve, inv, policy.New())
}

func testMount() *models.Mount {
	return &models.Mount{ID: "mount-1", MountPath: "/docs", StorageConfigID: "cfg-1", StorageType: models.StorageTypeLocal, IsActive: true}
}

func TestFileSystem_UploadThenDownloadRoundTrips(t *testing.T) {
	d := &fakeRWDriver{BaseDriver: driver.NewBaseDriver(driver.TypeLocal, driver.CapReader, driver.CapWriter), files: map[string][]byte{}}
	inv := &noopInvalidator{}
	fs := newTestFS(testMount(), d, inv)
	ctx := context.Background()
	pr := adminPrincipal()

	_, err := fs.Upload(ctx, pr, "/docs/a.txt", strings.NewReader("hello"), driver.UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)

	result, err := fs.Download(ctx, pr, "/docs/a.txt", driver.DownloadRequest{})
	require.NoError(t, err)
	body, _ := io.ReadAll(result.Body)
	assert.Equal(t, "hello", string(body))
}

func TestFileSystem_DeleteInvalidatesCache(t *testing.T) {
	d := &fakeRWDriver{BaseDriver: driver.NewBaseDriver(driver.TypeLocal, driver.CapReader, driver.CapWriter), files: map[string][]byte{"/a.txt": []byte("x")}}
	inv := &noopInvalidator{}
	fs := newTestFS(testMount(), d, inv)
	ctx := context.Background()

	err := fs.Delete(ctx, adminPrincipal(), "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
	_, hasFile := d.files["/a.txt"]
	assert.False(t, hasFile)
}

func TestFileSystem_SyntheticListingAtMountAncestor(t *testing.T) {
	d := &fakeRWDriver{BaseDriver: driver.NewBaseDriver(driver.TypeLocal, driver.CapReader, driver.CapWriter), files: map[string][]byte{}}
	mounts := &fakeMounts{mounts: []*models.Mount{
		{ID: "m1", MountPath: "/team/alpha", StorageConfigID: "cfg-1", IsActive: true},
		{ID: "m2", MountPath: "/team/beta", StorageConfigID: "cfg-2", IsActive: true},
	}}
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	fs := New(mounts, noopToucher{}, resolve, &noopInvalidator{}, policy.New())

	entries, err := fs.List(context.Background(), adminPrincipal(), "/team")
	require.NoError(t, err)
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
		assert.True(t, e.IsDirectory)
	}
	assert.True(t, names["alpha"])
	assert.True(t, names["beta"])
}

func TestFileSystem_RenameRejectsCrossMount(t *testing.T) {
	d := &fakeRWDriver{BaseDriver: driver.NewBaseDriver(driver.TypeLocal, driver.CapReader, driver.CapWriter), files: map[string][]byte{}}
	mounts := &fakeMounts{mounts: []*models.Mount{
		{ID: "m1", MountPath: "/docs", StorageConfigID: "cfg-1", IsActive: true},
		{ID: "m2", MountPath: "/other", StorageConfigID: "cfg-2", IsActive: true},
	}}
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	fs := New(mounts, noopToucher{}, resolve, &noopInvalidator{}, policy.New())

	err := fs.Rename(context.Background(), adminPrincipal(), "/docs/a.txt", "/other/b.txt")
	assert.Error(t, err)
}
