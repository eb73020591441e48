package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) GetShareRecordBySlug(ctx context.Context, slug string) (*models.ShareRecord, error) {
	return getByField[models.ShareRecord](s.db, ctx, "slug", slug, models.ErrShareRecordNotFound)
}

func (s *GORMStore) GetActiveByStoragePath(ctx context.Context, storageConfigID, storagePath string) (*models.ShareRecord, error) {
	var result models.ShareRecord
	err := s.db.WithContext(ctx).
		Where("storage_config_id = ? AND storage_path = ? AND active = ?", storageConfigID, storagePath, true).
		First(&result).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrShareRecordNotFound)
	}
	return &result, nil
}

// SumActiveSizeForConfig sums the size of every active share record bound
// to storageConfigID, excluding excludeID (the overwrite target, if any) so
// LimitGuard can compute used(c) - excluded_overwrite per spec.md §4.12.
func (s *GORMStore) SumActiveSizeForConfig(ctx context.Context, storageConfigID string, excludeID string) (int64, error) {
	var total int64
	q := s.db.WithContext(ctx).Model(&models.ShareRecord{}).
		Where("storage_config_id = ? AND active = ?", storageConfigID, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Select("COALESCE(SUM(size), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *GORMStore) CreateShareRecord(ctx context.Context, r *models.ShareRecord) (string, error) {
	r.Active = true
	return createWithID(s.db, ctx, r, func(rr *models.ShareRecord, id string) { rr.ID = id }, r.ID, models.ErrDuplicateShareRecord)
}

func (s *GORMStore) UpdateShareRecord(ctx context.Context, r *models.ShareRecord) error {
	result := s.db.WithContext(ctx).Model(&models.ShareRecord{}).Where("id = ?", r.ID).Updates(r)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrShareRecordNotFound
	}
	return nil
}

func (s *GORMStore) IncrementViews(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.ShareRecord{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (s *GORMStore) DeleteShareRecord(ctx context.Context, id string) error {
	return deleteByField[models.ShareRecord](s.db, ctx, "id", id, models.ErrShareRecordNotFound)
}
