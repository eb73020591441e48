package models

import "time"

// Setting is a single system-wide key/value row, following the teacher's
// settings table shape. The core reads one well-known key at runtime:
// "max_upload_size" (bytes, read by share.LimitGuard). The
// "naming_strategy" key is defined but not read, and the MAX_UPLOAD_SIZE
// env var does not override "max_upload_size".
type Setting struct {
	Key       string `gorm:"primaryKey;size:255" json:"key"`
	Value     string `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Setting) TableName() string { return "system_settings" }

// NamingStrategy is the slug/storage-path collision policy, passed by value
// to each upload-producing call (spec.md §9 open question).
type NamingStrategy string

const (
	NamingOverwrite     NamingStrategy = "overwrite"
	NamingRandomSuffix  NamingStrategy = "random_suffix"
)

const (
	SettingKeyNamingStrategy = "naming_strategy"
	SettingKeyMaxUploadSize  = "max_upload_size"
)

// DefaultMaxUploadSize (100 MiB) is applied when the "max_upload_size"
// system setting is absent or unparsable. MAX_UPLOAD_SIZE does not change it.
const DefaultMaxUploadSize int64 = 100 * 1024 * 1024
