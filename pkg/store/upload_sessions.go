package store

import (
	"context"
	"time"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) CreateUploadSession(ctx context.Context, sess *models.UploadSession) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *GORMStore) GetUploadSession(ctx context.Context, id string) (*models.UploadSession, error) {
	return getByField[models.UploadSession](s.db, ctx, "id", id, models.ErrUploadSessionNotFound)
}

func (s *GORMStore) FindByFingerprint(ctx context.Context, fingerprint string) (*models.UploadSession, error) {
	return getByField[models.UploadSession](s.db, ctx, "fingerprint", fingerprint, models.ErrUploadSessionNotFound)
}

func (s *GORMStore) FindByUploadID(ctx context.Context, providerUploadID string) (*models.UploadSession, error) {
	return getByField[models.UploadSession](s.db, ctx, "provider_upload_id", providerUploadID, models.ErrUploadSessionNotFound)
}

// UpdateStatusConditional is the single write path through which a session
// ever leaves "active". The WHERE clause pins the current status so two
// concurrent completions/aborts of the same session cannot both succeed,
// and a completed/aborted/failed session can never be moved back to
// active (spec.md §8 property 5).
func (s *GORMStore) UpdateStatusConditional(ctx context.Context, id string, requiredCurrent, newStatus models.UploadSessionStatus, fields map[string]any) (bool, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = newStatus

	result := s.db.WithContext(ctx).
		Model(&models.UploadSession{}).
		Where("id = ? AND status = ?", id, requiredCurrent).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GORMStore) ListForPrincipalScope(ctx context.Context, storageConfigID string) ([]*models.UploadSession, error) {
	return listWhere[models.UploadSession](s.db, ctx, "storage_config_id = ? AND status = ?", storageConfigID, models.UploadStatusActive)
}

// ExpireStale flips every active session whose updated_at predates
// olderThan to "expired" and returns the count affected.
func (s *GORMStore) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.UploadSession{}).
		Where("status = ? AND updated_at < ?", models.UploadStatusActive, olderThan).
		Update("status", models.UploadStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
