// Package filesystem implements FileSystem (C8): the mount-view façade.
// Every operation resolves (mount, subPath) via MountRegistry, authorizes
// via PolicyEngine, obtains a driver via DriverCache, and invokes it;
// writes invalidate the driver cache entry for the containing mount.
// Successful single-mount calls touch the mount's last_used_at, except
// ResolveForLink; Search and synthetic ancestor listings do not touch.
package filesystem

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
	"github.com/cloudcrate/filegate/pkg/mount"
	gpath "github.com/cloudcrate/filegate/pkg/path"
	"github.com/cloudcrate/filegate/pkg/policy"
	"github.com/cloudcrate/filegate/pkg/principal"
)

// MountResolver is the subset of pkg/mount.Registry this façade needs.
type MountResolver interface {
	ResolveByPath(ctx context.Context, rawPath string) (*mount.Resolution, error)
	FindAccessibleFor(ctx context.Context, pr principal.Principal) ([]*models.Mount, error)
}

// MountToucher updates last_used_at bookkeeping.
type MountToucher interface {
	TouchMount(ctx context.Context, id string, at time.Time) error
}

// DriverResolver obtains a live driver for a storage config.
type DriverResolver func(ctx context.Context, storageConfigID string) (driver.Base, error)

// Invalidator drops cached driver state after a write.
type Invalidator interface {
	Invalidate(storageType driver.Type, storageConfigID string)
}

// FileSystem is the C8 orchestrator.
type FileSystem struct {
	mounts     MountResolver
	toucher    MountToucher
	resolve    DriverResolver
	invalidate Invalidator
	policy     *policy.Engine
}

// New constructs a FileSystem.
func New(mounts MountResolver, toucher MountToucher, resolve DriverResolver, invalidate Invalidator, engine *policy.Engine) *FileSystem {
	return &FileSystem{mounts: mounts, toucher: toucher, resolve: resolve, invalidate: invalidate, policy: engine}
}

// resolved bundles the outcome of a successful resolve+authorize+driver
// acquisition, shared by every mutating operation below.
type resolved struct {
	mount   *models.Mount
	subPath string
	driver  driver.Base
}

func (fs *FileSystem) prepare(ctx context.Context, pr principal.Principal, virtualPath string, required principal.Authority, mode policy.PathCheckMode) (*resolved, error) {
	res, err := fs.mounts.ResolveByPath(ctx, virtualPath)
	if err != nil {
		return nil, err
	}

	pol := policy.NewPolicy(required, "not permitted on this mount").WithPathCheck(mode, virtualPath)
	if err := fs.policy.Evaluate(pr, pol); err != nil {
		return nil, err
	}

	d, err := fs.resolve(ctx, res.Mount.StorageConfigID)
	if err != nil {
		return nil, err
	}
	return &resolved{mount: res.Mount, subPath: res.SubPath, driver: d}, nil
}

func (fs *FileSystem) touch(ctx context.Context, m *models.Mount) {
	_ = fs.toucher.TouchMount(ctx, m.ID, time.Now())
}

func (fs *FileSystem) invalidateMount(m *models.Mount) {
	if fs.invalidate != nil {
		fs.invalidate.Invalidate(driver.Type(m.StorageType), m.StorageConfigID)
	}
}

// List returns the directory listing at virtualPath, synthesizing a
// virtual listing at paths that are strict ancestors of one or more mounts
// but are not themselves a mount root.
func (fs *FileSystem) List(ctx context.Context, pr principal.Principal, virtualPath string) ([]driver.Entry, error) {
	norm := gpath.Normalize(virtualPath, true)

	res, err := fs.mounts.ResolveByPath(ctx, norm)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeAuthorization) || apperrors.Is(err, apperrors.CodeNotFound) {
			return fs.syntheticListing(ctx, pr, norm)
		}
		return nil, err
	}

	pol := policy.NewPolicy(policy.MountView, "view not permitted on this mount").WithPathCheck(policy.ModeNavigation, norm)
	if err := fs.policy.Evaluate(pr, pol); err != nil {
		return nil, err
	}

	d, err := fs.resolve(ctx, res.Mount.StorageConfigID)
	if err != nil {
		return nil, err
	}
	reader, ok := d.(driver.Reader)
	if !ok || !d.HasCapability(driver.CapReader) {
		return nil, apperrors.Validation("mount %s's driver does not support listing", res.Mount.ID)
	}
	entries, err := reader.ListDirectory(ctx, res.SubPath)
	if err != nil {
		return nil, err
	}
	fs.touch(ctx, res.Mount)
	return entries, nil
}

func (fs *FileSystem) syntheticListing(ctx context.Context, pr principal.Principal, norm string) ([]driver.Entry, error) {
	mounts, err := fs.mounts.FindAccessibleFor(ctx, pr)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []driver.Entry
	for _, m := range mounts {
		mp := gpath.Normalize(m.MountPath, false)
		if mp == norm || !gpath.IsSelfOrSub(norm, mp) {
			continue
		}
		rel := strings.TrimPrefix(mp, strings.TrimSuffix(norm, "/"))
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			continue
		}
		segment := rel
		if idx := strings.Index(rel, "/"); idx >= 0 {
			segment = rel[:idx]
		}
		if seen[segment] {
			continue
		}
		seen[segment] = true
		out = append(out, driver.Entry{Name: segment, IsDirectory: true})
	}

	if out == nil && len(mounts) > 0 {
		return nil, apperrors.NotFound("no path found at %q", norm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetInfo returns file/directory metadata at virtualPath.
func (fs *FileSystem) GetInfo(ctx context.Context, pr principal.Principal, virtualPath string) (driver.Entry, error) {
	r, err := fs.prepare(ctx, pr, virtualPath, policy.MountView, policy.ModeNavigation)
	if err != nil {
		return driver.Entry{}, err
	}
	reader, ok := r.driver.(driver.Reader)
	if !ok || !r.driver.HasCapability(driver.CapReader) {
		return driver.Entry{}, apperrors.Validation("mount %s's driver does not support stat", r.mount.ID)
	}
	info, err := reader.GetFileInfo(ctx, r.subPath)
	if err != nil {
		return driver.Entry{}, err
	}
	fs.touch(ctx, r.mount)
	return info, nil
}

// Download streams the object at virtualPath.
func (fs *FileSystem) Download(ctx context.Context, pr principal.Principal, virtualPath string, req driver.DownloadRequest) (*driver.DownloadResult, error) {
	r, err := fs.prepare(ctx, pr, virtualPath, policy.MountView, policy.ModeNavigation)
	if err != nil {
		return nil, err
	}
	reader, ok := r.driver.(driver.Reader)
	if !ok || !r.driver.HasCapability(driver.CapReader) {
		return nil, apperrors.Validation("mount %s's driver does not support downloading", r.mount.ID)
	}
	result, err := reader.DownloadFile(ctx, r.subPath, req)
	if err != nil {
		return nil, err
	}
	fs.touch(ctx, r.mount)
	return result, nil
}

// Upload streams body to virtualPath.
func (fs *FileSystem) Upload(ctx context.Context, pr principal.Principal, virtualPath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	r, err := fs.prepare(ctx, pr, virtualPath, policy.MountUpload, policy.ModeNavigation)
	if err != nil {
		return nil, err
	}
	writer, ok := r.driver.(driver.Writer)
	if !ok || !r.driver.HasCapability(driver.CapWriter) {
		return nil, apperrors.Validation("mount %s's driver does not support uploading", r.mount.ID)
	}
	result, err := writer.UploadFile(ctx, r.subPath, body, opts)
	if err != nil {
		return nil, err
	}
	fs.invalidateMount(r.mount)
	fs.touch(ctx, r.mount)
	return result, nil
}

// MountTarget is the (mount, backend sub-path) pair a virtualPath resolves
// to, exposed so callers orchestrating a multi-step protocol (the
// front-end-driven multipart upload flow, presigned uploads) can authorize
// once up front and then talk to UploadSessionLedger/ObjectStore directly
// by storage_config_id without re-deriving it.
type MountTarget struct {
	Mount   *models.Mount
	SubPath string
}

// ResolveForUpload authorizes virtualPath for MountUpload and returns its
// mount and backend sub-path, without touching the driver. Used by the
// multipart-init and presign entry points, which construct their own
// driver calls through UploadSessionLedger/ObjectStore rather than
// FileSystem's own Upload.
func (fs *FileSystem) ResolveForUpload(ctx context.Context, pr principal.Principal, virtualPath string) (*MountTarget, error) {
	res, err := fs.mounts.ResolveByPath(ctx, virtualPath)
	if err != nil {
		return nil, err
	}
	pol := policy.NewPolicy(policy.MountUpload, "not permitted on this mount").WithPathCheck(policy.ModeNavigation, virtualPath)
	if err := fs.policy.Evaluate(pr, pol); err != nil {
		return nil, err
	}
	fs.touch(ctx, res.Mount)
	return &MountTarget{Mount: res.Mount, SubPath: res.SubPath}, nil
}

// ResolveForLink authorizes virtualPath for MountView and returns its mount
// and backend sub-path, for callers building a link (proxy.link,
// presigned/direct URL generation) rather than streaming bytes themselves.
func (fs *FileSystem) ResolveForLink(ctx context.Context, pr principal.Principal, virtualPath string) (*MountTarget, error) {
	res, err := fs.mounts.ResolveByPath(ctx, virtualPath)
	if err != nil {
		return nil, err
	}
	pol := policy.NewPolicy(policy.MountView, "view not permitted on this mount").WithPathCheck(policy.ModeNavigation, virtualPath)
	if err := fs.policy.Evaluate(pr, pol); err != nil {
		return nil, err
	}
	return &MountTarget{Mount: res.Mount, SubPath: res.SubPath}, nil
}

// Mkdir creates a directory at virtualPath.
func (fs *FileSystem) Mkdir(ctx context.Context, pr principal.Principal, virtualPath string) error {
	r, err := fs.prepare(ctx, pr, virtualPath, policy.MountUpload, policy.ModeNavigation)
	if err != nil {
		return err
	}
	writer, ok := r.driver.(driver.Writer)
	if !ok || !r.driver.HasCapability(driver.CapWriter) {
		return apperrors.Validation("mount %s's driver does not support directory creation", r.mount.ID)
	}
	if err := writer.CreateDirectory(ctx, r.subPath); err != nil {
		return err
	}
	fs.invalidateMount(r.mount)
	fs.touch(ctx, r.mount)
	return nil
}

// Delete removes the item at virtualPath.
func (fs *FileSystem) Delete(ctx context.Context, pr principal.Principal, virtualPath string) error {
	r, err := fs.prepare(ctx, pr, virtualPath, policy.MountDelete, policy.ModeNavigation)
	if err != nil {
		return err
	}
	writer, ok := r.driver.(driver.Writer)
	if !ok || !r.driver.HasCapability(driver.CapWriter) {
		return apperrors.Validation("mount %s's driver does not support deletion", r.mount.ID)
	}
	if err := writer.DeleteItems(ctx, []string{r.subPath}); err != nil {
		return err
	}
	fs.invalidateMount(r.mount)
	fs.touch(ctx, r.mount)
	return nil
}

// Rename moves fromVirtualPath to toVirtualPath within the same mount.
func (fs *FileSystem) Rename(ctx context.Context, pr principal.Principal, fromVirtualPath, toVirtualPath string) error {
	fromRes, err := fs.mounts.ResolveByPath(ctx, fromVirtualPath)
	if err != nil {
		return err
	}
	toRes, err := fs.mounts.ResolveByPath(ctx, toVirtualPath)
	if err != nil {
		return err
	}
	if fromRes.Mount.ID != toRes.Mount.ID {
		return apperrors.Validation("rename cannot cross mount boundaries")
	}

	pol := policy.NewPolicy(policy.MountRename, "rename not permitted on this mount").
		WithPathCheck(policy.ModeNavigation, fromVirtualPath)
	if err := fs.policy.Evaluate(pr, pol); err != nil {
		return err
	}

	d, err := fs.resolve(ctx, fromRes.Mount.StorageConfigID)
	if err != nil {
		return err
	}
	writer, ok := d.(driver.Writer)
	if !ok || !d.HasCapability(driver.CapWriter) {
		return apperrors.Validation("mount %s's driver does not support renaming", fromRes.Mount.ID)
	}
	if err := writer.RenameItem(ctx, fromRes.SubPath, toRes.SubPath); err != nil {
		return err
	}
	fs.invalidateMount(fromRes.Mount)
	fs.touch(ctx, fromRes.Mount)
	return nil
}

// Copy duplicates fromVirtualPath to toVirtualPath within the same mount,
// requiring the driver's ATOMIC capability.
func (fs *FileSystem) Copy(ctx context.Context, pr principal.Principal, fromVirtualPath, toVirtualPath string) error {
	fromRes, err := fs.mounts.ResolveByPath(ctx, fromVirtualPath)
	if err != nil {
		return err
	}
	toRes, err := fs.mounts.ResolveByPath(ctx, toVirtualPath)
	if err != nil {
		return err
	}
	if fromRes.Mount.ID != toRes.Mount.ID {
		return apperrors.Validation("copy cannot cross mount boundaries")
	}

	pol := policy.NewPolicy(policy.MountCopy, "copy not permitted on this mount").
		WithPathCheck(policy.ModeNavigation, fromVirtualPath)
	if err := fs.policy.Evaluate(pr, pol); err != nil {
		return err
	}

	d, err := fs.resolve(ctx, fromRes.Mount.StorageConfigID)
	if err != nil {
		return err
	}
	atomic, ok := d.(driver.Atomic)
	if !ok || !d.HasCapability(driver.CapAtomic) {
		return apperrors.Validation("mount %s's driver does not support atomic copy", fromRes.Mount.ID)
	}
	if err := atomic.CopyItem(ctx, fromRes.SubPath, toRes.SubPath); err != nil {
		return err
	}
	fs.invalidateMount(fromRes.Mount)
	fs.touch(ctx, fromRes.Mount)
	return nil
}
