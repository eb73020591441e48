package store

import (
	"context"
	"time"

	"github.com/cloudcrate/filegate/pkg/models"
)

// StorageConfigStore persists StorageConfig rows. Credentials are stored
// opaque (already encrypted by the caller, see pkg/storageconfig) and this
// layer never inspects them.
type StorageConfigStore interface {
	GetStorageConfig(ctx context.Context, id string) (*models.StorageConfig, error)
	GetStorageConfigByName(ctx context.Context, name string) (*models.StorageConfig, error)
	ListStorageConfigs(ctx context.Context) ([]*models.StorageConfig, error)
	ListStorageConfigsByIDs(ctx context.Context, ids []string) ([]*models.StorageConfig, error)
	CreateStorageConfig(ctx context.Context, cfg *models.StorageConfig) (string, error)
	UpdateStorageConfig(ctx context.Context, cfg *models.StorageConfig) error
	DeleteStorageConfig(ctx context.Context, id string) error
}

// MountStore persists Mount rows.
type MountStore interface {
	GetMount(ctx context.Context, id string) (*models.Mount, error)
	ListActiveMounts(ctx context.Context) ([]*models.Mount, error)
	ListMountsByStorageConfig(ctx context.Context, storageConfigID string) ([]*models.Mount, error)
	CreateMount(ctx context.Context, m *models.Mount) (string, error)
	UpdateMount(ctx context.Context, m *models.Mount) error
	TouchMount(ctx context.Context, id string, at time.Time) error
	DeleteMount(ctx context.Context, id string) error
}

// ACLStore persists PrincipalStorageACL rows.
type ACLStore interface {
	ListACLForSubject(ctx context.Context, subjectType models.SubjectType, subjectID string) ([]*models.PrincipalStorageACL, error)
	AddACL(ctx context.Context, row *models.PrincipalStorageACL) (string, error)
	RemoveACL(ctx context.Context, subjectType models.SubjectType, subjectID, storageConfigID string) error
}

// UploadSessionStore persists the multipart upload ledger.
type UploadSessionStore interface {
	CreateUploadSession(ctx context.Context, s *models.UploadSession) error
	GetUploadSession(ctx context.Context, id string) (*models.UploadSession, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.UploadSession, error)
	FindByUploadID(ctx context.Context, providerUploadID string) (*models.UploadSession, error)
	// UpdateStatusConditional transitions the session to newStatus only if its
	// current status is requiredCurrent, applying fields atomically in the
	// same statement. Returns false (no error) if the precondition failed.
	UpdateStatusConditional(ctx context.Context, id string, requiredCurrent, newStatus models.UploadSessionStatus, fields map[string]any) (bool, error)
	ListForPrincipalScope(ctx context.Context, storageConfigID string) ([]*models.UploadSession, error)
	ExpireStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// ShareRecordStore persists ShareRecord rows.
type ShareRecordStore interface {
	GetShareRecordBySlug(ctx context.Context, slug string) (*models.ShareRecord, error)
	GetActiveByStoragePath(ctx context.Context, storageConfigID, storagePath string) (*models.ShareRecord, error)
	SumActiveSizeForConfig(ctx context.Context, storageConfigID string, excludeID string) (int64, error)
	CreateShareRecord(ctx context.Context, r *models.ShareRecord) (string, error)
	UpdateShareRecord(ctx context.Context, r *models.ShareRecord) error
	IncrementViews(ctx context.Context, id string) error
	DeleteShareRecord(ctx context.Context, id string) error
}

// APIKeyStore persists APIKey rows.
type APIKeyStore interface {
	GetAPIKey(ctx context.Context, id string) (*models.APIKey, error)
	CreateAPIKey(ctx context.Context, k *models.APIKey) (string, error)
	TouchAPIKeyUsage(ctx context.Context, id string, at time.Time) error
}

// SettingStore persists system_settings key/value rows.
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// JobRunStore persists scheduled_job_runs rows and computes the hourly
// histogram aggregate (spec.md §4.9).
type JobRunStore interface {
	RecordRun(ctx context.Context, run *models.ScheduledJobRun) error
	HourlyHistogram(ctx context.Context, hours int) (map[string]int64, error)
}

// Store is the full persistence surface. Individual components accept the
// narrowest sub-interface they need.
type Store interface {
	StorageConfigStore
	MountStore
	ACLStore
	UploadSessionStore
	ShareRecordStore
	APIKeyStore
	SettingStore
	JobRunStore
}

var _ Store = (*GORMStore)(nil)
