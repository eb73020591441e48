package models

import (
	"encoding/json"
	"time"
)

// StorageType enumerates the backend kinds a StorageConfig may describe.
type StorageType string

const (
	StorageTypeS3       StorageType = "S3"
	StorageTypeWebDAV   StorageType = "WEBDAV"
	StorageTypeOneDrive StorageType = "ONEDRIVE"
	StorageTypeLocal    StorageType = "LOCAL"
)

// StorageConfig is a backend account: an S3 bucket, a WebDAV endpoint, a
// OneDrive/Graph application, or a local filesystem root.
//
// Config holds provider-specific parameters (endpoint, bucket, region,
// path-style, custom_host, url_proxy, default_folder...) as a JSON blob;
// Credentials holds opaque, AES-GCM-encrypted provider credentials and is
// never projected to API responses unless withSecrets is explicitly
// requested by server-internal code (see pkg/storageconfig).
type StorageConfig struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Name        string      `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Type        StorageType `gorm:"size:32;not null;index" json:"type"`
	Config      string      `gorm:"type:text" json:"-"`
	Credentials string      `gorm:"type:text" json:"-"`
	IsPublic    bool        `gorm:"not null;default:false" json:"isPublic"`
	IsDefault   bool        `gorm:"not null;default:false" json:"isDefault"`

	// TotalStorageBytes is the quota cap for this config. 0 means unlimited.
	TotalStorageBytes int64 `gorm:"not null;default:0" json:"totalStorageBytes"`

	// SignatureExpiresIn is the lifetime, in seconds, of proxy signatures
	// and presigned URLs issued against this config. 0 falls back to the
	// package default (3600s).
	SignatureExpiresIn int `gorm:"not null;default:3600" json:"signatureExpiresIn"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (StorageConfig) TableName() string { return "storage_configs" }

// StorageConfigParams is the typed, provider-agnostic subset of Config
// common to every backend. Driver-specific fields live under ProviderExtra
// and are interpreted by the matching pkg/driver/* constructor.
type StorageConfigParams struct {
	Endpoint      string         `json:"endpoint,omitempty"`
	Bucket        string         `json:"bucket,omitempty"`
	Region        string         `json:"region,omitempty"`
	PathStyle     bool           `json:"pathStyle,omitempty"`
	CustomHost    string         `json:"customHost,omitempty"`
	URLProxy      string         `json:"urlProxy,omitempty"`
	DefaultFolder string         `json:"defaultFolder,omitempty"`
	ProviderExtra map[string]any `json:"providerExtra,omitempty"`
}

// GetParams decodes the JSON Config blob into typed params.
func (c *StorageConfig) GetParams() (StorageConfigParams, error) {
	var p StorageConfigParams
	if c.Config == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(c.Config), &p); err != nil {
		return StorageConfigParams{}, err
	}
	return p, nil
}

// SetParams encodes params into the JSON Config blob.
func (c *StorageConfig) SetParams(p StorageConfigParams) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	c.Config = string(b)
	return nil
}
