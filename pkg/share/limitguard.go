package share

import (
	"context"
	"strconv"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/models"
)

// QuotaStore is the subset of pkg/store needed to enforce per-config quota.
type QuotaStore interface {
	SumActiveSizeForConfig(ctx context.Context, storageConfigID, excludeID string) (int64, error)
}

// SettingsStore resolves the system-wide max_upload_size setting.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// LimitGuard enforces the two caps createShareRecord must respect: the
// global max-upload-size setting and each StorageConfig's total quota.
type LimitGuard struct {
	quota    QuotaStore
	settings SettingsStore
}

// NewLimitGuard constructs a LimitGuard.
func NewLimitGuard(quota QuotaStore, settings SettingsStore) *LimitGuard {
	return &LimitGuard{quota: quota, settings: settings}
}

// MaxUploadSize resolves the effective system setting, default 100MiB,
// where 0 means unlimited.
func (g *LimitGuard) MaxUploadSize(ctx context.Context) (int64, error) {
	value, err := g.settings.GetSetting(ctx, models.SettingKeyMaxUploadSize)
	if err != nil {
		return models.DefaultMaxUploadSize, nil
	}
	v, parseErr := strconv.ParseInt(value, 10, 64)
	if parseErr != nil {
		return models.DefaultMaxUploadSize, nil
	}
	return v, nil
}

// CheckFileSize enforces the max_upload_size cap. size<=0 disables the
// check (unlimited).
func (g *LimitGuard) CheckFileSize(ctx context.Context, fileSize int64) error {
	max, err := g.MaxUploadSize(ctx)
	if err != nil {
		return err
	}
	if max > 0 && fileSize > max {
		return apperrors.Quota("file size %d exceeds the maximum upload size of %d bytes", fileSize, max)
	}
	return nil
}

// CheckConfigQuota enforces total_storage_bytes for a StorageConfig,
// excluding the overwrite target (if any) from the current usage sum.
func (g *LimitGuard) CheckConfigQuota(ctx context.Context, storageConfigID string, totalStorageBytes, incomingSize int64, excludeID string) error {
	if totalStorageBytes <= 0 {
		return nil
	}
	used, err := g.quota.SumActiveSizeForConfig(ctx, storageConfigID, excludeID)
	if err != nil {
		return apperrors.Repository(err, "computing storage config quota usage")
	}
	if used+incomingSize > totalStorageBytes {
		return apperrors.Quota("storage config %s quota exceeded: %d + %d > %d", storageConfigID, used, incomingSize, totalStorageBytes)
	}
	return nil
}
