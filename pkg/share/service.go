// Package share implements ShareRecordService + LimitGuard (C12):
// createShareRecord's transactional slug/quota/naming-strategy logic, and
// password hashing for protected shares grounded on the teacher's bcrypt
// credential helpers.
package share

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/models"
)

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Store is the subset of pkg/store this service depends on.
type Store interface {
	GetShareRecordBySlug(ctx context.Context, slug string) (*models.ShareRecord, error)
	GetActiveByStoragePath(ctx context.Context, storageConfigID, storagePath string) (*models.ShareRecord, error)
	CreateShareRecord(ctx context.Context, r *models.ShareRecord) (string, error)
	UpdateShareRecord(ctx context.Context, r *models.ShareRecord) error
	IncrementViews(ctx context.Context, id string) error
	DeleteShareRecord(ctx context.Context, id string) error
}

// Service is the C12 orchestrator.
type Service struct {
	store Store
	guard *LimitGuard
}

// New constructs a Service.
func New(store Store, guard *LimitGuard) *Service {
	return &Service{store: store, guard: guard}
}

// CreateInput is the payload accepted by CreateShareRecord.
type CreateInput struct {
	Slug              string // optional; generated when empty
	StorageConfigID   string
	StoragePath       string
	MimeType          string
	Size              int64
	Remark            string
	Password          string // optional; hashed if set
	ExpiresAt         *time.Time
	MaxViews          int64
	UseProxy          bool
	CreatedBy         string
	TotalStorageBytes int64 // the owning StorageConfig's quota cap, 0 = unlimited
	NamingStrategy    models.NamingStrategy
}

// CreateShareRecord is the single-transaction operation spec.md §4.12
// describes: enforce the global file-size cap, enforce the per-config
// quota, allocate a slug, persist, and — on "overwrite" strategy with an
// existing active row at the same (storage_config_id, storage_path) —
// supersede it in place instead of creating a duplicate.
func (s *Service) CreateShareRecord(ctx context.Context, in CreateInput) (*models.ShareRecord, error) {
	if err := s.guard.CheckFileSize(ctx, in.Size); err != nil {
		return nil, err
	}

	var overwriteTarget *models.ShareRecord
	if in.NamingStrategy == models.NamingOverwrite {
		existing, err := s.store.GetActiveByStoragePath(ctx, in.StorageConfigID, in.StoragePath)
		if err == nil {
			overwriteTarget = existing
		} else if err != models.ErrShareRecordNotFound {
			return nil, apperrors.Repository(err, "looking up overwrite target")
		}
	}

	excludeID := ""
	if overwriteTarget != nil {
		excludeID = overwriteTarget.ID
	}
	if err := s.guard.CheckConfigQuota(ctx, in.StorageConfigID, in.TotalStorageBytes, in.Size, excludeID); err != nil {
		return nil, err
	}

	passwordHash := ""
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, apperrors.Validation("invalid share password: %v", err)
		}
		passwordHash = hash
	}

	if overwriteTarget != nil {
		overwriteTarget.MimeType = in.MimeType
		overwriteTarget.Size = in.Size
		overwriteTarget.Remark = in.Remark
		overwriteTarget.ExpiresAt = in.ExpiresAt
		overwriteTarget.MaxViews = in.MaxViews
		overwriteTarget.UseProxy = in.UseProxy
		if passwordHash != "" {
			overwriteTarget.PasswordHash = passwordHash
		}
		if err := s.store.UpdateShareRecord(ctx, overwriteTarget); err != nil {
			return nil, apperrors.Repository(err, "updating overwritten share record")
		}
		return overwriteTarget, nil
	}

	slug := in.Slug
	if slug == "" {
		generated, err := s.allocateSlug(ctx)
		if err != nil {
			return nil, err
		}
		slug = generated
	} else if _, err := s.store.GetShareRecordBySlug(ctx, slug); err == nil {
		return nil, apperrors.Conflict("slug %q is already in use", slug)
	} else if err != models.ErrShareRecordNotFound {
		return nil, apperrors.Repository(err, "checking slug availability")
	}

	record := &models.ShareRecord{
		Slug:            slug,
		StorageConfigID: in.StorageConfigID,
		StoragePath:     in.StoragePath,
		MimeType:        in.MimeType,
		Size:            in.Size,
		Remark:          in.Remark,
		PasswordHash:    passwordHash,
		ExpiresAt:       in.ExpiresAt,
		MaxViews:        in.MaxViews,
		UseProxy:        in.UseProxy,
		CreatedBy:       in.CreatedBy,
	}
	id, err := s.store.CreateShareRecord(ctx, record)
	if err != nil {
		return nil, apperrors.Repository(err, "creating share record")
	}
	record.ID = id
	return record, nil
}

func (s *Service) allocateSlug(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		candidate, err := randomSlug(8)
		if err != nil {
			return "", err
		}
		if _, err := s.store.GetShareRecordBySlug(ctx, candidate); err == models.ErrShareRecordNotFound {
			return candidate, nil
		}
	}
	return "", apperrors.Conflict("could not allocate a unique slug after 10 attempts")
}

func randomSlug(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}
	return string(out), nil
}

// Resolve fetches a share record by slug, checking expiry/view-count and
// password (if protected). An empty password is only accepted when the
// record carries no PasswordHash.
func (s *Service) Resolve(ctx context.Context, slug, password string) (*models.ShareRecord, error) {
	record, err := s.store.GetShareRecordBySlug(ctx, slug)
	if err != nil {
		if err == models.ErrShareRecordNotFound {
			return nil, apperrors.NotFound("share %q not found", slug)
		}
		return nil, apperrors.Repository(err, "looking up share record")
	}
	if !record.Active {
		return nil, apperrors.Gone("share %q has been superseded", slug)
	}
	if record.IsExpired(time.Now()) {
		return nil, apperrors.Gone("share %q has expired", slug)
	}
	if record.PasswordHash != "" && !VerifyPassword(password, record.PasswordHash) {
		return nil, apperrors.Authentication("incorrect share password")
	}
	return record, nil
}

// RecordView increments the share's view counter. Callers resolve the
// share first via Resolve, then call RecordView once access is granted.
func (s *Service) RecordView(ctx context.Context, id string) error {
	return s.store.IncrementViews(ctx, id)
}

// Delete removes a share record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteShareRecord(ctx, id)
}
