// Package local implements a filesystem-backed driver (C6). It is grounded
// on the teacher's filesystem block store: atomic writes via temp-file-then-
// rename, and directory cleanup after delete, generalized from block keys to
// arbitrary whole-object sub-paths under a configured root.
package local

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// Params configures a Driver instance, sourced from StorageConfig.Config.
type Params struct {
	RootPath string `json:"root_path" mapstructure:"root_path" jsonschema:"required,description=Absolute path of the directory tree this mount is rooted at"`
	DirMode  uint32 `json:"dir_mode,omitempty" mapstructure:"dir_mode"`
	FileMode uint32 `json:"file_mode,omitempty" mapstructure:"file_mode"`
}

// Driver is a filesystem-backed storage driver with no external credentials.
type Driver struct {
	driver.BaseDriver
	mu       sync.RWMutex
	rootPath string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// New constructs a Driver from decoded params. It satisfies driver.Constructor
// once wrapped by the registration adapter in register.go.
func New(p Params) (*Driver, error) {
	if p.RootPath == "" {
		return nil, apperrors.Validation("local driver requires root_path")
	}
	dirMode := os.FileMode(0755)
	if p.DirMode != 0 {
		dirMode = os.FileMode(p.DirMode)
	}
	fileMode := os.FileMode(0644)
	if p.FileMode != 0 {
		fileMode = os.FileMode(p.FileMode)
	}
	return &Driver{
		BaseDriver: driver.NewBaseDriver(driver.TypeLocal, driver.CapReader, driver.CapWriter, driver.CapAtomic),
		rootPath:   p.RootPath,
		dirMode:    dirMode,
		fileMode:   fileMode,
	}, nil
}

func (d *Driver) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(d.rootPath, d.dirMode); err != nil {
		return err
	}
	info, err := os.Stat(d.rootPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return apperrors.Validation("root_path %s is not a directory", d.rootPath)
	}
	d.MarkInitialized()
	return nil
}

func (d *Driver) Cleanup(ctx context.Context) error { return nil }

// resolvedPath joins subPath under rootPath, refusing to escape the root.
func (d *Driver) resolvedPath(subPath string) (string, error) {
	cleaned := filepath.Clean("/" + subPath)
	full := filepath.Join(d.rootPath, filepath.FromSlash(cleaned))
	if full != d.rootPath && !strings.HasPrefix(full, d.rootPath+string(os.PathSeparator)) {
		return "", apperrors.Validation("path escapes storage root: %s", subPath)
	}
	return full, nil
}

func (d *Driver) ListDirectory(ctx context.Context, subPath string) ([]driver.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	full, err := d.resolvedPath(subPath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("path not found: %s", subPath)
		}
		return nil, apperrors.Driver(err, "listing %s", subPath)
	}

	out := make([]driver.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, driver.Entry{
			Name:        e.Name(),
			IsDirectory: e.IsDir(),
			Size:        info.Size(),
			Modified:    info.ModTime(),
			MimeType:    mime.TypeByExtension(filepath.Ext(e.Name())),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Driver) GetFileInfo(ctx context.Context, subPath string) (driver.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	full, err := d.resolvedPath(subPath)
	if err != nil {
		return driver.Entry{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return driver.Entry{}, apperrors.NotFound("path not found: %s", subPath)
		}
		return driver.Entry{}, apperrors.Driver(err, "stat %s", subPath)
	}
	return driver.Entry{
		Name:        filepath.Base(full),
		IsDirectory: info.IsDir(),
		Size:        info.Size(),
		Modified:    info.ModTime(),
		MimeType:    mime.TypeByExtension(filepath.Ext(full)),
	}, nil
}

func (d *Driver) DownloadFile(ctx context.Context, subPath string, req driver.DownloadRequest) (*driver.DownloadResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	full, err := d.resolvedPath(subPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("path not found: %s", subPath)
		}
		return nil, apperrors.Driver(err, "open %s", subPath)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperrors.Driver(err, "stat %s", subPath)
	}

	result := &driver.DownloadResult{
		ContentType:   mime.TypeByExtension(filepath.Ext(full)),
		ContentLength: info.Size(),
		AcceptRanges:  true,
		LastModified:  info.ModTime(),
	}

	if !req.HasRange {
		result.Body = f
		return result, nil
	}

	end := req.RangeEnd
	if end == 0 || end >= info.Size() {
		end = info.Size() - 1
	}
	if req.RangeStart < 0 || req.RangeStart >= info.Size() || req.RangeStart > end {
		f.Close()
		return nil, apperrors.Validation("invalid range for %s", subPath)
	}
	if _, err := f.Seek(req.RangeStart, io.SeekStart); err != nil {
		f.Close()
		return nil, apperrors.Driver(err, "seek %s", subPath)
	}
	length := end - req.RangeStart + 1
	result.Body = &limitedReadCloser{r: io.LimitReader(f, length), c: f}
	result.ContentLength = length
	result.ContentRange = httpContentRange(req.RangeStart, end, info.Size())
	return result, nil
}

type limitedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (l *limitedReadCloser) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedReadCloser) Close() error                { return l.c.Close() }

func httpContentRange(start, end, size int64) string {
	return "bytes " + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10) + "/" + strconv.FormatInt(size, 10)
}

func (d *Driver) UploadFile(ctx context.Context, subPath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	full, err := d.resolvedPath(subPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), d.dirMode); err != nil {
		return nil, apperrors.Driver(err, "creating parent directories for %s", subPath)
	}

	tmp := full + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, d.fileMode)
	if err != nil {
		return nil, apperrors.Driver(err, "opening temp file for %s", subPath)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(tmp)
		return nil, apperrors.Driver(err, "writing %s", subPath)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return nil, apperrors.Driver(err, "closing %s", subPath)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return nil, apperrors.Driver(err, "finalizing %s", subPath)
	}

	return &driver.UploadResult{StoragePath: subPath}, nil
}

func (d *Driver) CreateDirectory(ctx context.Context, subPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	full, err := d.resolvedPath(subPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, d.dirMode); err != nil {
		return apperrors.Driver(err, "creating directory %s", subPath)
	}
	return nil
}

func (d *Driver) DeleteItems(ctx context.Context, subPaths []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, sp := range subPaths {
		full, err := d.resolvedPath(sp)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(full); err != nil {
			return apperrors.Driver(err, "deleting %s", sp)
		}
		d.cleanEmptyDirs(filepath.Dir(full))
	}
	return nil
}

func (d *Driver) RenameItem(ctx context.Context, fromSubPath, toSubPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, err := d.resolvedPath(fromSubPath)
	if err != nil {
		return err
	}
	to, err := d.resolvedPath(toSubPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(to), d.dirMode); err != nil {
		return apperrors.Driver(err, "creating parent directories for %s", toSubPath)
	}
	if err := os.Rename(from, to); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFound("path not found: %s", fromSubPath)
		}
		return apperrors.Driver(err, "renaming %s to %s", fromSubPath, toSubPath)
	}
	d.cleanEmptyDirs(filepath.Dir(from))
	return nil
}

// cleanEmptyDirs removes empty parent directories up to (not including) the
// driver root, mirroring the teacher's block-store cleanup after delete.
func (d *Driver) cleanEmptyDirs(dir string) {
	for dir != d.rootPath && strings.HasPrefix(dir, d.rootPath) {
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
}

func (d *Driver) BatchRemoveItems(ctx context.Context, subPaths []string) error {
	return d.DeleteItems(ctx, subPaths)
}

func (d *Driver) CopyItem(ctx context.Context, fromSubPath, toSubPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, err := d.resolvedPath(fromSubPath)
	if err != nil {
		return err
	}
	to, err := d.resolvedPath(toSubPath)
	if err != nil {
		return err
	}
	src, err := os.Open(from)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFound("path not found: %s", fromSubPath)
		}
		return apperrors.Driver(err, "opening %s", fromSubPath)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(to), d.dirMode); err != nil {
		return apperrors.Driver(err, "creating parent directories for %s", toSubPath)
	}
	tmp := to + ".tmp"
	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, d.fileMode)
	if err != nil {
		return apperrors.Driver(err, "opening temp file for %s", toSubPath)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return apperrors.Driver(err, "copying to %s", toSubPath)
	}
	dst.Close()
	if err := os.Rename(tmp, to); err != nil {
		os.Remove(tmp)
		return apperrors.Driver(err, "finalizing %s", toSubPath)
	}
	return nil
}
