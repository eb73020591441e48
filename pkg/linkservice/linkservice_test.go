package linkservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/proxysig"
)

type fakeDirectDriver struct {
	driver.BaseDriver
	url string
}

func (f *fakeDirectDriver) Initialize(ctx context.Context) error { return nil }
func (f *fakeDirectDriver) Cleanup(ctx context.Context) error    { return nil }

func (f *fakeDirectDriver) DirectLink(ctx context.Context, subPath string) (string, bool) {
	if f.url == "" {
		return "", false
	}
	return f.url, true
}

type fakeUpstreamDriver struct {
	driver.BaseDriver
}

func (f *fakeUpstreamDriver) Initialize(ctx context.Context) error { return nil }
func (f *fakeUpstreamDriver) Cleanup(ctx context.Context) error    { return nil }

func (f *fakeUpstreamDriver) GenerateUpstreamRequest(ctx context.Context, subPath string) (*driver.UpstreamRequest, error) {
	return &driver.UpstreamRequest{URL: "https://backend.example/" + subPath, Headers: map[string]string{"Authorization": "Basic xyz"}}, nil
}

func noDriverResolver(ctx context.Context, storageConfigID string) (driver.Base, error) {
	return nil, assertErr
}

var assertErr = assertError("not found")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestForShare_UseProxyGoesLocal(t *testing.T) {
	s := New(noDriverResolver, proxysig.NewSigner("secret"), "")
	link, err := s.ForShare(context.Background(), ModeClient, ShareLinkInput{Slug: "abc123", UseProxy: true})
	require.NoError(t, err)
	assert.Equal(t, "/api/s/abc123?mode=inline", link.URL)
	assert.Equal(t, "share.use_proxy", link.Reason)
}

func TestForShare_DirectLinkPreferredOverFallback(t *testing.T) {
	d := &fakeDirectDriver{BaseDriver: driver.NewBaseDriver(driver.TypeS3, driver.CapDirectLink), url: "https://cdn.example/a.txt"}
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	s := New(resolve, proxysig.NewSigner("secret"), "")

	link, err := s.ForShare(context.Background(), ModeClient, ShareLinkInput{Slug: "abc123", StorageConfigID: "cfg-1", StoragePath: "/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.txt", link.URL)
	assert.Equal(t, "share.direct_link", link.Reason)
}

func TestForShare_FallsBackToLocalWhenNoDirectCapability(t *testing.T) {
	s := New(noDriverResolver, proxysig.NewSigner("secret"), "")
	link, err := s.ForShare(context.Background(), ModeClient, ShareLinkInput{Slug: "zzz", StorageConfigID: "cfg-1", StoragePath: "/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/api/s/zzz?mode=inline", link.URL)
	assert.Equal(t, "share.fallback_local", link.Reason)
}

func TestForShare_UpstreamModePrefersUpstreamHTTP(t *testing.T) {
	d := &fakeUpstreamDriver{BaseDriver: driver.NewBaseDriver(driver.TypeWebDAV, driver.CapUpstreamHTTP)}
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	s := New(resolve, proxysig.NewSigner("secret"), "")

	link, err := s.ForShare(context.Background(), ModeUpstream, ShareLinkInput{Slug: "abc", StorageConfigID: "cfg-1", StoragePath: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "https://backend.example/a.txt", link.URL)
	assert.Equal(t, "share.upstream_http", link.Reason)
}

func TestForPath_WebProxyProducesSignedLocalURL(t *testing.T) {
	s := New(noDriverResolver, proxysig.NewSigner("secret"), "https://gw.example")
	link, err := s.ForPath(context.Background(), ModeClient, FSLinkInput{
		MountID:              "mount-1",
		VirtualPath:          "/docs/a.txt",
		MountWebProxy:        true,
		MountSignatureNeeded: true,
	})
	require.NoError(t, err)
	assert.Contains(t, link.URL, "https://gw.example/api/p/docs/a.txt?sig=")
	assert.Equal(t, "fs.web_proxy", link.Reason)
}

func TestForPath_DirectLinkWhenAvailable(t *testing.T) {
	d := &fakeDirectDriver{BaseDriver: driver.NewBaseDriver(driver.TypeS3, driver.CapDirectLink), url: "https://cdn.example/docs/a.txt"}
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	s := New(resolve, proxysig.NewSigner("secret"), "")

	link, err := s.ForPath(context.Background(), ModeClient, FSLinkInput{
		MountID:         "mount-1",
		VirtualPath:     "/docs/a.txt",
		StorageConfigID: "cfg-1",
		StoragePath:     "/docs/a.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/docs/a.txt", link.URL)
	assert.Equal(t, "fs.direct_link", link.Reason)
}

func TestForPath_FallsBackToSignedProxyWhenNoCapabilityMatches(t *testing.T) {
	s := New(noDriverResolver, proxysig.NewSigner("secret"), "")
	link, err := s.ForPath(context.Background(), ModeClient, FSLinkInput{MountID: "mount-1", VirtualPath: "/a.txt"})
	require.NoError(t, err)
	assert.Contains(t, link.URL, "/api/p/a.txt?sig=")
	assert.Equal(t, "fs.signed_fallback", link.Reason)
}
