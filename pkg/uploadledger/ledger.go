// Package uploadledger implements UploadSessionLedger (C9): the
// front-end-driven multipart upload state machine. It owns fingerprint-based
// idempotence and the active->{completed,aborted,failed,expired}
// transitions, delegating the actual part-transfer protocol to a driver's
// Multipart capability.
package uploadledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
)

// Store is the subset of pkg/store.Store this package depends on.
type Store interface {
	CreateUploadSession(ctx context.Context, sess *models.UploadSession) error
	GetUploadSession(ctx context.Context, id string) (*models.UploadSession, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.UploadSession, error)
	UpdateStatusConditional(ctx context.Context, id string, requiredCurrent, newStatus models.UploadSessionStatus, fields map[string]any) (bool, error)
	ExpireStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// DriverResolver obtains the live driver for a storage config, normally
// pkg/drivercache.Cache.Get.
type DriverResolver func(ctx context.Context, storageConfigID string) (driver.Base, error)

// Ledger is the C9 orchestrator.
type Ledger struct {
	store      Store
	resolve    DriverResolver
	sessionTTL time.Duration
}

// New constructs a Ledger. sessionTTL sets ExpiresAt on each new session
// (default 24h if zero); ExpireStale does not use it.
func New(store Store, resolve DriverResolver, sessionTTL time.Duration) *Ledger {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Ledger{store: store, resolve: resolve, sessionTTL: sessionTTL}
}

// InitializeInput describes a new (or resumed) upload.
type InitializeInput struct {
	PrincipalID     string
	StorageType     models.StorageType
	StorageConfigID string
	MountID         string
	FSPath          string
	Source          models.UploadSource
	FileName        string
	FileSize        int64
	MimeType        string
	PartSize        int64 // optional caller hint
}

// Initialize resumes an existing active session sharing in's fingerprint,
// or opens a new one via the backend driver's Multipart capability.
func (l *Ledger) Initialize(ctx context.Context, in InitializeInput) (*models.UploadSession, *driver.MultipartInitResult, error) {
	fp := Fingerprint(FingerprintInput{
		PrincipalID:     in.PrincipalID,
		StorageType:     string(in.StorageType),
		StorageConfigID: in.StorageConfigID,
		MountID:         in.MountID,
		FSPath:          in.FSPath,
		FileName:        in.FileName,
		FileSize:        in.FileSize,
	})

	if existing, err := l.store.FindByFingerprint(ctx, fp); err == nil && !existing.IsTerminal() {
		mp, err := l.multipartDriver(ctx, existing.StorageConfigID)
		if err != nil {
			return nil, nil, err
		}
		parts, err := mp.ListMultipartParts(ctx, existing.FSPath, existing.ProviderUploadID)
		if err != nil {
			return nil, nil, apperrors.Driver(err, "listing resumed upload parts")
		}
		if parts.UploadNotFound {
			// Backend lifecycle rule reclaimed the draft; fall through and
			// start a fresh session instead of resuming a dead one.
		} else {
			return existing, &driver.MultipartInitResult{
				UploadID:   existing.ProviderUploadID,
				Strategy:   existing.Strategy,
				PartSize:   existing.PartSize,
				TotalParts: existing.TotalParts,
				SessionURL: existing.ProviderUploadURL,
			}, nil
		}
	}

	partSize, totalParts, err := PlanParts(in.FileSize, in.PartSize)
	if err != nil {
		return nil, nil, err
	}

	mp, err := l.multipartDriver(ctx, in.StorageConfigID)
	if err != nil {
		return nil, nil, err
	}

	initResult, err := mp.InitializeFrontendMultipartUpload(ctx, in.FSPath, in.FileSize, partSize)
	if err != nil {
		return nil, nil, apperrors.Driver(err, "initializing multipart upload")
	}

	sess := &models.UploadSession{
		ID:                initResult.UploadID,
		Fingerprint:       fp,
		StorageType:       in.StorageType,
		StorageConfigID:   in.StorageConfigID,
		MountID:           in.MountID,
		FSPath:            in.FSPath,
		Source:            in.Source,
		FileName:          in.FileName,
		FileSize:          in.FileSize,
		MimeType:          in.MimeType,
		Strategy:          initResult.Strategy,
		PartSize:          initResult.PartSize,
		TotalParts:        initResult.TotalParts,
		ProviderUploadID:  initResult.UploadID,
		ProviderUploadURL: initResult.SessionURL,
		Status:            models.UploadStatusActive,
		ExpiresAt:         time.Now().Add(l.sessionTTL),
	}
	if totalParts > 0 && sess.TotalParts == 0 {
		sess.TotalParts = totalParts
	}
	if sess.ID == "" {
		return nil, nil, apperrors.DriverContract("driver returned empty upload id from InitializeFrontendMultipartUpload")
	}

	if err := l.store.CreateUploadSession(ctx, sess); err != nil {
		return nil, nil, apperrors.Repository(err, "persisting upload session")
	}
	return sess, initResult, nil
}

// RefreshUrls re-signs URLs for in-progress parts, used when a client's
// presigned URLs expire mid-upload.
func (l *Ledger) RefreshUrls(ctx context.Context, sessionID string, partNumbers []int) (map[int]string, error) {
	sess, err := l.getActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	mp, err := l.multipartDriver(ctx, sess.StorageConfigID)
	if err != nil {
		return nil, err
	}
	urls, err := mp.RefreshMultipartUrls(ctx, sess.FSPath, sess.ProviderUploadID, partNumbers)
	if err != nil {
		return nil, apperrors.Driver(err, "refreshing multipart urls")
	}
	return urls, nil
}

// RecordProgress updates bytes-uploaded bookkeeping after the client
// confirms a part finished, without transitioning status. It is a best-
// effort progress marker: loss of this update does not affect correctness,
// only the bytesUploaded figure shown to the client.
func (l *Ledger) RecordProgress(ctx context.Context, sessionID string, partNumber int, etag string, partSize int64) error {
	sess, err := l.getActive(ctx, sessionID)
	if err != nil {
		return err
	}

	uploaded := map[int]string{}
	if sess.UploadedPartsJSON != "" {
		_ = json.Unmarshal([]byte(sess.UploadedPartsJSON), &uploaded)
	}
	if _, already := uploaded[partNumber]; !already {
		sess.BytesUploaded += partSize
	}
	uploaded[partNumber] = etag
	blob, err := json.Marshal(uploaded)
	if err != nil {
		return err
	}

	ok, err := l.store.UpdateStatusConditional(ctx, sess.ID, models.UploadStatusActive, models.UploadStatusActive, map[string]any{
		"bytes_uploaded":  sess.BytesUploaded,
		"uploaded_parts":  string(blob),
	})
	if err != nil {
		return apperrors.Repository(err, "recording upload progress")
	}
	if !ok {
		return apperrors.Conflict("upload session %s is no longer active", sessionID)
	}
	return nil
}

// Complete finalizes an active session by submitting the client-reported
// part list to the driver, then transitions active->completed.
func (l *Ledger) Complete(ctx context.Context, sessionID string, parts []driver.CompletedPart) (*driver.UploadResult, error) {
	sess, err := l.getActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	mp, err := l.multipartDriver(ctx, sess.StorageConfigID)
	if err != nil {
		return nil, err
	}

	result, err := mp.CompleteFrontendMultipartUpload(ctx, sess.FSPath, sess.ProviderUploadID, parts)
	if err != nil {
		_, _ = l.store.UpdateStatusConditional(ctx, sess.ID, models.UploadStatusActive, models.UploadStatusFailed, map[string]any{
			"error_message": err.Error(),
		})
		return nil, apperrors.Driver(err, "completing multipart upload")
	}

	ok, err := l.store.UpdateStatusConditional(ctx, sess.ID, models.UploadStatusActive, models.UploadStatusCompleted, map[string]any{
		"bytes_uploaded": sess.FileSize,
	})
	if err != nil {
		return nil, apperrors.Repository(err, "completing upload session")
	}
	if !ok {
		return nil, apperrors.Conflict("upload session %s was already finalized by a concurrent request", sessionID)
	}
	return result, nil
}

// Abort transitions active->aborted and tells the driver to discard any
// partial upload state.
func (l *Ledger) Abort(ctx context.Context, sessionID string) error {
	sess, err := l.getActive(ctx, sessionID)
	if err != nil {
		return err
	}
	mp, err := l.multipartDriver(ctx, sess.StorageConfigID)
	if err != nil {
		return err
	}
	if err := mp.AbortFrontendMultipartUpload(ctx, sess.FSPath, sess.ProviderUploadID); err != nil {
		return apperrors.Driver(err, "aborting multipart upload")
	}

	ok, err := l.store.UpdateStatusConditional(ctx, sess.ID, models.UploadStatusActive, models.UploadStatusAborted, nil)
	if err != nil {
		return apperrors.Repository(err, "aborting upload session")
	}
	if !ok {
		return apperrors.Conflict("upload session %s was already finalized by a concurrent request", sessionID)
	}
	return nil
}

// ExpireStale flips active sessions last updated before olderThan to
// "expired". Nothing in the module calls it on a schedule.
func (l *Ledger) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return l.store.ExpireStale(ctx, olderThan)
}

// Session returns the ledger row for sessionID regardless of status, for
// callers (the list-parts wire operation) that need to resolve its
// storage config and provider upload id without requiring it be active.
func (l *Ledger) Session(ctx context.Context, sessionID string) (*models.UploadSession, error) {
	return l.store.GetUploadSession(ctx, sessionID)
}

// MultipartDriver exposes the active-or-not Multipart driver lookup to
// callers outside the package (the list-parts wire operation), the only
// operation that needs the capability after a session may have left the
// active state.
func (l *Ledger) MultipartDriver(ctx context.Context, storageConfigID string) (driver.Multipart, error) {
	return l.multipartDriver(ctx, storageConfigID)
}

func (l *Ledger) getActive(ctx context.Context, sessionID string) (*models.UploadSession, error) {
	sess, err := l.store.GetUploadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.UploadStatusActive {
		return nil, apperrors.Conflict("upload session %s is not active (status=%s)", sessionID, sess.Status)
	}
	return sess, nil
}

func (l *Ledger) multipartDriver(ctx context.Context, storageConfigID string) (driver.Multipart, error) {
	d, err := l.resolve(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	mp, ok := d.(driver.Multipart)
	if !ok || !d.HasCapability(driver.CapMultipart) {
		return nil, apperrors.Validation("storage config %s's driver does not support multipart upload", storageConfigID)
	}
	return mp, nil
}
