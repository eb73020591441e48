package models

import "time"

// APIKey is the persisted principal row for a non-admin caller. It is the
// supplemented concrete shape behind spec.md's Principal.key_info, which
// the distillation references (the api_keys table, §6) but does not
// detail.
type APIKey struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	Label      string `gorm:"size:255;not null" json:"label"`
	SecretHash string `gorm:"size:255;not null" json:"-"`

	// BasicPath is the path prefix this key is scoped to; defaults to "/".
	BasicPath string `gorm:"size:1024;not null;default:/" json:"basicPath"`

	// Authorities is the TEXT_*/FILE_*/MOUNT_*/WEBDAV_* permission bitmask
	// (see pkg/policy).
	Authorities uint32 `gorm:"not null;default:0" json:"authorities"`

	Disabled bool `gorm:"not null;default:false" json:"disabled"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

func (APIKey) TableName() string { return "api_keys" }
