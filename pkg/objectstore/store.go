package objectstore

import (
	"context"
	"io"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// DriverResolver obtains the live driver for a storage config, normally
// pkg/drivercache.Cache.Get.
type DriverResolver func(ctx context.Context, storageConfigID string) (driver.Base, error)

// Invalidator is implemented by pkg/drivercache.Cache, used to drop any
// cached directory-listing state a write might have staled. ObjectStore
// itself caches nothing; this exists so callers wiring C7 into C8 share one
// invalidation path.
type Invalidator interface {
	Invalidate(storageType driver.Type, storageConfigID string)
}

// Store is the C7 façade.
type Store struct {
	resolve DriverResolver
}

// New constructs a Store.
func New(resolve DriverResolver) *Store {
	return &Store{resolve: resolve}
}

func (s *Store) reader(ctx context.Context, storageConfigID string) (driver.Reader, error) {
	d, err := s.resolve(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	r, ok := d.(driver.Reader)
	if !ok || !d.HasCapability(driver.CapReader) {
		return nil, apperrors.Validation("storage config %s's driver does not support reading", storageConfigID)
	}
	return r, nil
}

func (s *Store) writer(ctx context.Context, storageConfigID string) (driver.Writer, error) {
	d, err := s.resolve(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	w, ok := d.(driver.Writer)
	if !ok || !d.HasCapability(driver.CapWriter) {
		return nil, apperrors.Validation("storage config %s's driver does not support writing", storageConfigID)
	}
	return w, nil
}

func (s *Store) presigner(ctx context.Context, storageConfigID string) (driver.Presigner, error) {
	d, err := s.resolve(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	p, ok := d.(driver.Presigner)
	if !ok || !d.HasCapability(driver.CapPresigned) {
		return nil, apperrors.Validation("storage config %s's driver does not support presigned URLs", storageConfigID)
	}
	return p, nil
}

// PresignUpload returns a client-usable upload URL when the driver supports
// PRESIGNED; callers without that capability should fall back to
// UploadDirect or the multipart ledger.
func (s *Store) PresignUpload(ctx context.Context, storageConfigID, storagePath string, opts driver.UploadOptions) (*driver.PresignResult, error) {
	p, err := s.presigner(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	result, err := p.GenerateUploadURL(ctx, storagePath, opts)
	if err != nil {
		return nil, apperrors.Driver(err, "presigning upload for %s", storagePath)
	}
	return result, nil
}

// UploadDirect streams body straight to the backend (no multipart ledger
// involvement), used for fs.upload (stream, PUT) and small share uploads.
func (s *Store) UploadDirect(ctx context.Context, storageConfigID, storagePath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	w, err := s.writer(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	result, err := w.UploadFile(ctx, storagePath, body, opts)
	if err != nil {
		return nil, apperrors.Driver(err, "uploading %s", storagePath)
	}
	return result, nil
}

// UploadFileForShare is the form/blob upload path for share.upload; it is a
// thin alias over UploadDirect kept distinct because the two callers differ
// in the quota/size checks performed before this is reached (pkg/share).
func (s *Store) UploadFileForShare(ctx context.Context, storageConfigID, storagePath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	return s.UploadDirect(ctx, storageConfigID, storagePath, body, opts)
}

// CommitUpload finalizes a client-reported presigned-PUT upload: it simply
// confirms the object exists and returns its metadata, since the backend
// already received the bytes directly from the client.
func (s *Store) CommitUpload(ctx context.Context, storageConfigID, storagePath string) (driver.Entry, error) {
	r, err := s.reader(ctx, storageConfigID)
	if err != nil {
		return driver.Entry{}, err
	}
	info, err := r.GetFileInfo(ctx, storagePath)
	if err != nil {
		return driver.Entry{}, apperrors.Driver(err, "confirming committed upload %s", storagePath)
	}
	return info, nil
}

// DownloadByStoragePath streams an object's bytes, honoring an optional
// byte range.
func (s *Store) DownloadByStoragePath(ctx context.Context, storageConfigID, storagePath string, req driver.DownloadRequest) (*driver.DownloadResult, error) {
	r, err := s.reader(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	result, err := r.DownloadFile(ctx, storagePath, req)
	if err != nil {
		return nil, apperrors.Driver(err, "downloading %s", storagePath)
	}
	return result, nil
}

// DeleteByStoragePath removes an object, invalidating caches tied to the
// storage config on success.
func (s *Store) DeleteByStoragePath(ctx context.Context, storageConfigID, storagePath string, invalidate Invalidator) error {
	d, err := s.resolve(ctx, storageConfigID)
	if err != nil {
		return err
	}
	w, ok := d.(driver.Writer)
	if !ok || !d.HasCapability(driver.CapWriter) {
		return apperrors.Validation("storage config %s's driver does not support writing", storageConfigID)
	}
	if err := w.DeleteItems(ctx, []string{storagePath}); err != nil {
		return apperrors.Driver(err, "deleting %s", storagePath)
	}
	if invalidate != nil {
		invalidate.Invalidate(d.GetType(), storageConfigID)
	}
	return nil
}

// LinkCandidate is what generateLinksByStoragePath hands to pkg/linkservice
// to make its client/upstream URL decision: a summary of what the backend
// driver can offer for this object.
type LinkCandidate struct {
	DirectLink   string
	HasDirect    bool
	Presigned    *driver.PresignResult
	HasPresigned bool
	Upstream     *driver.UpstreamRequest
	HasUpstream  bool
}

// GenerateLinksByStoragePath gathers every link-producing capability the
// driver offers for an object, leaving the client/upstream decision itself
// to LinkService.
func (s *Store) GenerateLinksByStoragePath(ctx context.Context, storageConfigID, storagePath string) (LinkCandidate, error) {
	d, err := s.resolve(ctx, storageConfigID)
	if err != nil {
		return LinkCandidate{}, err
	}

	var cand LinkCandidate
	if dl, ok := d.(driver.DirectLinkProvider); ok && d.HasCapability(driver.CapDirectLink) {
		if url, ok := dl.DirectLink(ctx, storagePath); ok {
			cand.DirectLink = url
			cand.HasDirect = true
		}
	}
	if p, ok := d.(driver.Presigner); ok && d.HasCapability(driver.CapPresigned) {
		result, err := p.GenerateDownloadURL(ctx, storagePath)
		if err == nil {
			cand.Presigned = result
			cand.HasPresigned = true
		}
	}
	if u, ok := d.(driver.UpstreamHTTP); ok && d.HasCapability(driver.CapUpstreamHTTP) {
		result, err := u.GenerateUpstreamRequest(ctx, storagePath)
		if err == nil {
			cand.Upstream = result
			cand.HasUpstream = true
		}
	}
	return cand, nil
}
