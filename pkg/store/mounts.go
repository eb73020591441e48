package store

import (
	"context"
	"time"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) GetMount(ctx context.Context, id string) (*models.Mount, error) {
	return getByField[models.Mount](s.db, ctx, "id", id, models.ErrMountNotFound)
}

// ListActiveMounts returns every active mount, longest mount_path first, so
// MountRegistry can resolve by scanning in order without re-sorting.
func (s *GORMStore) ListActiveMounts(ctx context.Context) ([]*models.Mount, error) {
	var results []*models.Mount
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("length(mount_path) DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GORMStore) ListMountsByStorageConfig(ctx context.Context, storageConfigID string) ([]*models.Mount, error) {
	return listWhere[models.Mount](s.db, ctx, "storage_config_id = ?", storageConfigID)
}

func (s *GORMStore) CreateMount(ctx context.Context, m *models.Mount) (string, error) {
	return createWithID(s.db, ctx, m, func(mm *models.Mount, id string) { mm.ID = id }, m.ID, models.ErrDuplicateMount)
}

func (s *GORMStore) UpdateMount(ctx context.Context, m *models.Mount) error {
	result := s.db.WithContext(ctx).Model(&models.Mount{}).Where("id = ?", m.ID).Updates(m)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return models.ErrDuplicateMount
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrMountNotFound
	}
	return nil
}

func (s *GORMStore) TouchMount(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Mount{}).Where("id = ?", id).Update("last_used_at", at).Error
}

func (s *GORMStore) DeleteMount(ctx context.Context, id string) error {
	return deleteByField[models.Mount](s.db, ctx, "id", id, models.ErrMountNotFound)
}
