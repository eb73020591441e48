package models

import "errors"

// Sentinel errors returned by the store layer, grouped by aggregate. The
// store package converts gorm.ErrRecordNotFound into these via
// convertNotFoundError so callers never see a GORM type.
var (
	ErrStorageConfigNotFound = errors.New("storage config not found")
	ErrDuplicateStorageConfig = errors.New("storage config with that name already exists")
	ErrStorageConfigInUse    = errors.New("storage config is referenced by one or more mounts")

	ErrMountNotFound     = errors.New("mount not found")
	ErrDuplicateMount    = errors.New("mount path already in use")

	ErrUploadSessionNotFound = errors.New("upload session not found")

	ErrShareRecordNotFound  = errors.New("share record not found")
	ErrDuplicateShareRecord = errors.New("slug already in use")

	ErrAPIKeyNotFound  = errors.New("api key not found")
	ErrDuplicateAPIKey = errors.New("api key already exists")

	ErrSettingNotFound = errors.New("setting not found")
)
