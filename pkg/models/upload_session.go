package models

import "time"

// UploadSessionStatus is the state-machine status of a front-end-driven
// multipart upload. Transitions are monotonic except active->active
// (progress) updates; see pkg/uploadledger for the transition guard.
type UploadSessionStatus string

const (
	UploadStatusActive    UploadSessionStatus = "active"
	UploadStatusCompleted UploadSessionStatus = "completed"
	UploadStatusAborted   UploadSessionStatus = "aborted"
	UploadStatusFailed    UploadSessionStatus = "failed"
	UploadStatusExpired   UploadSessionStatus = "expired"
)

// UploadSource distinguishes FS-view uploads (mediated by a mount) from
// storage-first share uploads.
type UploadSource string

const (
	UploadSourceFS    UploadSource = "FS"
	UploadSourceShare UploadSource = "SHARE"
)

// UploadSession is the persistent ledger row for one front-end-driven
// multipart upload. ID equals the provider's upload id when the backend has
// one (S3); for single-session-URL providers (OneDrive) it is a
// locally-generated id and ProviderUploadURL carries the resumable session
// URL instead.
type UploadSession struct {
	ID          string `gorm:"primaryKey;size:128" json:"id"`
	Fingerprint string `gorm:"uniqueIndex;size:64;not null" json:"fingerprint"`

	StorageType     StorageType  `gorm:"size:32;not null" json:"storageType"`
	StorageConfigID string       `gorm:"size:36;not null;index" json:"storageConfigId"`
	MountID         string       `gorm:"size:36;index" json:"mountId,omitempty"`
	FSPath          string       `gorm:"size:2048" json:"fsPath,omitempty"`
	Source          UploadSource `gorm:"size:16;not null" json:"source"`

	FileName string `gorm:"size:1024;not null" json:"fileName"`
	FileSize int64  `gorm:"not null" json:"fileSize"`
	MimeType string `gorm:"size:255" json:"mimeType"`

	Strategy   string `gorm:"size:32;not null;default:per_part_url" json:"strategy"`
	PartSize   int64  `gorm:"not null" json:"partSize"`
	TotalParts int    `gorm:"not null" json:"totalParts"`

	BytesUploaded     int64  `gorm:"not null;default:0" json:"bytesUploaded"`
	UploadedPartsJSON string `gorm:"type:text;column:uploaded_parts" json:"-"`
	NextExpectedRange int64  `gorm:"not null;default:0" json:"nextExpectedRange"`

	ProviderUploadID  string `gorm:"size:512" json:"providerUploadId,omitempty"`
	ProviderUploadURL string `gorm:"type:text" json:"providerUploadUrl,omitempty"`

	Status       UploadSessionStatus `gorm:"size:16;not null;index" json:"status"`
	ErrorCode    string              `gorm:"size:64" json:"errorCode,omitempty"`
	ErrorMessage string              `gorm:"type:text" json:"errorMessage,omitempty"`

	StartedAt time.Time `gorm:"autoCreateTime" json:"startedAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (UploadSession) TableName() string { return "upload_sessions" }

// IsTerminal reports whether the session can no longer accept chunk
// operations or status transitions back to active.
func (s *UploadSession) IsTerminal() bool {
	switch s.Status {
	case UploadStatusCompleted, UploadStatusAborted, UploadStatusFailed, UploadStatusExpired:
		return true
	default:
		return false
	}
}
