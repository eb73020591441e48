package models

import "time"

// ShareRecord is metadata for an externally addressable object: a slug
// resolves to (storage_config_id, storage_path) plus access controls.
type ShareRecord struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`
	Slug            string `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	StorageConfigID string `gorm:"size:36;not null;index:idx_share_config_path" json:"storageConfigId"`
	StoragePath     string `gorm:"size:2048;not null;index:idx_share_config_path" json:"storagePath"`
	MimeType        string `gorm:"size:255" json:"mimeType"`
	Size            int64  `gorm:"not null" json:"size"`
	Remark          string `gorm:"size:1024" json:"remark,omitempty"`

	// PasswordHash is a bcrypt hash, or empty when the share is unprotected.
	PasswordHash string `gorm:"size:255" json:"-"`

	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	MaxViews  int64      `gorm:"not null;default:0" json:"maxViews"`
	Views     int64      `gorm:"not null;default:0" json:"views"`

	UseProxy  bool   `gorm:"not null;default:false" json:"useProxy"`
	CreatedBy string `gorm:"size:36" json:"createdBy,omitempty"`

	// Active is false once the record has been superseded by an
	// "overwrite"-strategy upload to the same (storage_config_id,
	// storage_path); ShareRecordService enforces at most one active row
	// per pair under that strategy.
	Active bool `gorm:"not null;default:true;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ShareRecord) TableName() string { return "share_records" }

// IsExpired reports whether the record has passed its expiry or view cap.
func (s *ShareRecord) IsExpired(now time.Time) bool {
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return true
	}
	if s.MaxViews > 0 && s.Views >= s.MaxViews {
		return true
	}
	return false
}
