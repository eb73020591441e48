// Package webdav implements a WebDAV storage driver (C6) on top of
// studio-b12/gowebdav. No teacher equivalent exists for this backend; the
// driver follows the same capability-interface shape as pkg/driver/local and
// pkg/driver/s3, sourced from the ecosystem client used across the retrieval
// pack for WebDAV transport.
package webdav

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// Params configures a Driver instance, sourced from StorageConfig.Config.
type Params struct {
	Endpoint  string `mapstructure:"endpoint" jsonschema:"required,description=Base URL of the WebDAV server"`
	KeyPrefix string `mapstructure:"default_folder" jsonschema:"description=Path prefix applied to every object in this mount"`
	Timeout   int    `mapstructure:"timeout_seconds" jsonschema:"description=Request timeout in seconds, default 30"`
}

// Credentials configures HTTP Basic auth against the WebDAV server.
type Credentials struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Driver is a WebDAV-backed storage driver. It does not support server-side
// presigning, so it exercises UPSTREAM_HTTP: a reverse proxy fetches the
// object on the caller's behalf using the driver's own Basic-auth header.
type Driver struct {
	driver.BaseDriver
	client    *gowebdav.Client
	endpoint  string
	keyPrefix string
	username  string
	password  string
}

// New builds an unconnected Driver; Initialize performs the handshake.
func New(p Params, creds Credentials) (*Driver, error) {
	if p.Endpoint == "" {
		return nil, apperrors.Validation("webdav driver requires endpoint")
	}
	timeout := time.Duration(p.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := gowebdav.NewClient(p.Endpoint, creds.Username, creds.Password)
	client.SetTimeout(timeout)

	return &Driver{
		BaseDriver: driver.NewBaseDriver(driver.TypeWebDAV,
			driver.CapReader, driver.CapWriter, driver.CapAtomic, driver.CapUpstreamHTTP),
		client:    client,
		endpoint:  strings.TrimRight(p.Endpoint, "/"),
		keyPrefix: strings.Trim(p.KeyPrefix, "/"),
		username:  creds.Username,
		password:  creds.Password,
	}, nil
}

func (d *Driver) Initialize(ctx context.Context) error {
	if err := d.client.Connect(); err != nil {
		return apperrors.Driver(err, "connecting to webdav server")
	}
	d.MarkInitialized()
	return nil
}

func (d *Driver) Cleanup(ctx context.Context) error { return nil }

func (d *Driver) remotePath(subPath string) string {
	clean := path.Clean("/" + subPath)
	if d.keyPrefix == "" {
		return clean
	}
	return "/" + d.keyPrefix + clean
}

func wrapNotFound(err error, subPath string) error {
	if err == nil {
		return nil
	}
	if gowebdav.IsErrNotFound(err) {
		return apperrors.NotFound("path not found: %s", subPath)
	}
	return apperrors.Driver(err, "webdav operation on %s", subPath)
}

func (d *Driver) ListDirectory(ctx context.Context, subPath string) ([]driver.Entry, error) {
	infos, err := d.client.ReadDir(d.remotePath(subPath))
	if err != nil {
		return nil, wrapNotFound(err, subPath)
	}
	out := make([]driver.Entry, 0, len(infos))
	for _, info := range infos {
		out = append(out, driver.Entry{
			Name:        info.Name(),
			IsDirectory: info.IsDir(),
			Size:        info.Size(),
			Modified:    info.ModTime(),
			MimeType:    mime.TypeByExtension(path.Ext(info.Name())),
		})
	}
	return out, nil
}

func (d *Driver) GetFileInfo(ctx context.Context, subPath string) (driver.Entry, error) {
	info, err := d.client.Stat(d.remotePath(subPath))
	if err != nil {
		return driver.Entry{}, wrapNotFound(err, subPath)
	}
	return driver.Entry{
		Name:        info.Name(),
		IsDirectory: info.IsDir(),
		Size:        info.Size(),
		Modified:    info.ModTime(),
		MimeType:    mime.TypeByExtension(path.Ext(info.Name())),
	}, nil
}

func (d *Driver) DownloadFile(ctx context.Context, subPath string, req driver.DownloadRequest) (*driver.DownloadResult, error) {
	remote := d.remotePath(subPath)
	var body io.ReadCloser
	var err error
	if req.HasRange {
		length := req.RangeEnd - req.RangeStart + 1
		if req.RangeEnd == 0 {
			length = -1
		}
		body, err = d.client.ReadStreamRange(remote, req.RangeStart, length)
	} else {
		body, err = d.client.ReadStream(remote)
	}
	if err != nil {
		return nil, wrapNotFound(err, subPath)
	}
	return &driver.DownloadResult{Body: body}, nil
}

func (d *Driver) UploadFile(ctx context.Context, subPath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	if err := d.client.WriteStream(d.remotePath(subPath), body, 0644); err != nil {
		return nil, apperrors.Driver(err, "uploading %s", subPath)
	}
	return &driver.UploadResult{StoragePath: subPath}, nil
}

func (d *Driver) CreateDirectory(ctx context.Context, subPath string) error {
	if err := d.client.MkdirAll(d.remotePath(subPath), 0755); err != nil {
		return apperrors.Driver(err, "creating directory %s", subPath)
	}
	return nil
}

func (d *Driver) DeleteItems(ctx context.Context, subPaths []string) error {
	for _, sp := range subPaths {
		if err := d.client.RemoveAll(d.remotePath(sp)); err != nil {
			return wrapNotFound(err, sp)
		}
	}
	return nil
}

func (d *Driver) RenameItem(ctx context.Context, fromSubPath, toSubPath string) error {
	if err := d.client.Rename(d.remotePath(fromSubPath), d.remotePath(toSubPath), true); err != nil {
		return wrapNotFound(err, fromSubPath)
	}
	return nil
}

func (d *Driver) BatchRemoveItems(ctx context.Context, subPaths []string) error {
	return d.DeleteItems(ctx, subPaths)
}

func (d *Driver) CopyItem(ctx context.Context, fromSubPath, toSubPath string) error {
	if err := d.client.Copy(d.remotePath(fromSubPath), d.remotePath(toSubPath), true); err != nil {
		return wrapNotFound(err, fromSubPath)
	}
	return nil
}

// GenerateUpstreamRequest hands the reverse proxy a request it can replay
// with Basic auth, since WebDAV offers no presigned-URL mechanism.
func (d *Driver) GenerateUpstreamRequest(ctx context.Context, subPath string) (*driver.UpstreamRequest, error) {
	if _, err := d.client.Stat(d.remotePath(subPath)); err != nil {
		return nil, wrapNotFound(err, subPath)
	}
	return &driver.UpstreamRequest{
		URL:     d.endpoint + d.remotePath(subPath),
		Headers: map[string]string{"Authorization": basicAuthHeader(d.username, d.password)},
	}, nil
}

func basicAuthHeader(username, password string) string {
	raw := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
