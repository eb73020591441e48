package models

import "time"

// SubjectType enumerates who a PrincipalStorageACL row restricts.
type SubjectType string

// SubjectTypeAPIKey is currently the only persisted subject kind; ADMIN
// principals bypass ACL checks entirely (see pkg/policy).
const SubjectTypeAPIKey SubjectType = "API_KEY"

// PrincipalStorageACL whitelists a subject to a specific StorageConfig. If
// any row exists for a subject, MountRegistry.findAccessibleFor restricts
// that subject to the listed configs regardless of StorageConfig.IsPublic;
// with zero rows the subject falls back to IsPublic.
type PrincipalStorageACL struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	SubjectType     SubjectType `gorm:"size:16;not null;index:idx_acl_subject" json:"subjectType"`
	SubjectID       string      `gorm:"size:36;not null;index:idx_acl_subject" json:"subjectId"`
	StorageConfigID string      `gorm:"size:36;not null;index" json:"storageConfigId"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PrincipalStorageACL) TableName() string { return "principal_storage_acl" }
