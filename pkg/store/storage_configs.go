package store

import (
	"context"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) GetStorageConfig(ctx context.Context, id string) (*models.StorageConfig, error) {
	return getByField[models.StorageConfig](s.db, ctx, "id", id, models.ErrStorageConfigNotFound)
}

func (s *GORMStore) GetStorageConfigByName(ctx context.Context, name string) (*models.StorageConfig, error) {
	return getByField[models.StorageConfig](s.db, ctx, "name", name, models.ErrStorageConfigNotFound)
}

func (s *GORMStore) ListStorageConfigs(ctx context.Context) ([]*models.StorageConfig, error) {
	return listAll[models.StorageConfig](s.db, ctx)
}

func (s *GORMStore) ListStorageConfigsByIDs(ctx context.Context, ids []string) ([]*models.StorageConfig, error) {
	if len(ids) == 0 {
		return []*models.StorageConfig{}, nil
	}
	return listWhere[models.StorageConfig](s.db, ctx, "id IN ?", ids)
}

func (s *GORMStore) CreateStorageConfig(ctx context.Context, cfg *models.StorageConfig) (string, error) {
	return createWithID(s.db, ctx, cfg, func(c *models.StorageConfig, id string) { c.ID = id }, cfg.ID, models.ErrDuplicateStorageConfig)
}

func (s *GORMStore) UpdateStorageConfig(ctx context.Context, cfg *models.StorageConfig) error {
	result := s.db.WithContext(ctx).Model(&models.StorageConfig{}).Where("id = ?", cfg.ID).Updates(cfg)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return models.ErrDuplicateStorageConfig
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrStorageConfigNotFound
	}
	return nil
}

func (s *GORMStore) DeleteStorageConfig(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Mount{}).Where("storage_config_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.ErrStorageConfigInUse
	}
	return deleteByField[models.StorageConfig](s.db, ctx, "id", id, models.ErrStorageConfigNotFound)
}
