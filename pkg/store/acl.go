package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/cloudcrate/filegate/pkg/models"
)

func (s *GORMStore) ListACLForSubject(ctx context.Context, subjectType models.SubjectType, subjectID string) ([]*models.PrincipalStorageACL, error) {
	return listWhere[models.PrincipalStorageACL](s.db, ctx, "subject_type = ? AND subject_id = ?", subjectType, subjectID)
}

func (s *GORMStore) AddACL(ctx context.Context, row *models.PrincipalStorageACL) (string, error) {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (s *GORMStore) RemoveACL(ctx context.Context, subjectType models.SubjectType, subjectID, storageConfigID string) error {
	return s.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ? AND storage_config_id = ?", subjectType, subjectID, storageConfigID).
		Delete(&models.PrincipalStorageACL{}).Error
}
