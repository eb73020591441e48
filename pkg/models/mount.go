package models

import "time"

// WebDAVPolicy controls how a mount is exposed to the (external) WebDAV
// protocol adapter. The core only persists the choice; enforcement of the
// policy's meaning lives in the excluded WebDAV adapter and in
// ProxySignature.needsSignature.
type WebDAVPolicy string

const (
	WebDAVPolicyDisabled    WebDAVPolicy = "disabled"
	WebDAVPolicyReadOnly    WebDAVPolicy = "read_only"
	WebDAVPolicyReadWrite   WebDAVPolicy = "read_write"
	WebDAVPolicySignedProxy WebDAVPolicy = "signed_proxy"
)

// Mount binds a virtual path prefix to a StorageConfig. MountPath is
// absolute, always starts with "/", and never ends with "/" except for the
// root mount itself (which PathResolver/MountRegistry reject as an
// operation target regardless).
type Mount struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	MountPath       string      `gorm:"uniqueIndex;size:1024;not null" json:"mountPath"`
	StorageConfigID string      `gorm:"size:36;not null;index" json:"storageConfigId"`
	StorageType     StorageType `gorm:"size:32;not null" json:"storageType"`
	IsActive        bool        `gorm:"not null;default:true" json:"isActive"`
	WebProxy        bool        `gorm:"not null;default:false" json:"webProxy"`
	WebDAVPolicy    WebDAVPolicy `gorm:"size:32;not null;default:disabled" json:"webdavPolicy"`
	LastUsedAt      *time.Time  `json:"lastUsedAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Mount) TableName() string { return "mounts" }
