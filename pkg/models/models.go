package models

// AllModels returns all GORM models for auto-migration, following the
// teacher's models.AllModels pattern.
func AllModels() []any {
	return []any{
		&StorageConfig{},
		&Mount{},
		&PrincipalStorageACL{},
		&UploadSession{},
		&ShareRecord{},
		&APIKey{},
		&Setting{},
		&ScheduledJobRun{},
	}
}
