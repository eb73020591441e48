package store

import (
	"context"
	"time"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) GetAPIKey(ctx context.Context, id string) (*models.APIKey, error) {
	return getByField[models.APIKey](s.db, ctx, "id", id, models.ErrAPIKeyNotFound)
}

func (s *GORMStore) CreateAPIKey(ctx context.Context, k *models.APIKey) (string, error) {
	return createWithID(s.db, ctx, k, func(kk *models.APIKey, id string) { kk.ID = id }, k.ID, models.ErrDuplicateAPIKey)
}

func (s *GORMStore) TouchAPIKeyUsage(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.APIKey{}).Where("id = ?", id).Update("last_used_at", at).Error
}
