package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) GetSetting(ctx context.Context, key string) (string, error) {
	row, err := getByField[models.Setting](s.db, ctx, "key", key, models.ErrSettingNotFound)
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *GORMStore) SetSetting(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}
