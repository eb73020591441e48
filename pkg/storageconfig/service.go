// Package storageconfig implements the StorageConfig business logic sitting
// above pkg/store's plain CRUD (C3): credential encryption at rest, the
// API-safe vs. driver-facing projections, and cache invalidation on mutation.
package storageconfig

import (
	"context"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
)

// Store is the subset of pkg/store.Store this service depends on.
type Store interface {
	GetStorageConfig(ctx context.Context, id string) (*models.StorageConfig, error)
	GetStorageConfigByName(ctx context.Context, name string) (*models.StorageConfig, error)
	ListStorageConfigs(ctx context.Context) ([]*models.StorageConfig, error)
	ListStorageConfigsByIDs(ctx context.Context, ids []string) ([]*models.StorageConfig, error)
	CreateStorageConfig(ctx context.Context, cfg *models.StorageConfig) (string, error)
	UpdateStorageConfig(ctx context.Context, cfg *models.StorageConfig) error
	DeleteStorageConfig(ctx context.Context, id string) error
}

// Invalidator is implemented by pkg/drivercache.Cache. Kept as a narrow
// interface here so this package never imports drivercache directly.
type Invalidator interface {
	Invalidate(storageType driver.Type, storageConfigID string)
}

// Public is the API-safe projection of a StorageConfig: never carries
// Credentials, and Config is decoded to typed params.
type Public struct {
	ID                 string
	Name               string
	Type               models.StorageType
	Params             models.StorageConfigParams
	IsPublic           bool
	IsDefault          bool
	TotalStorageBytes  int64
	SignatureExpiresIn int
}

// WithSecrets is the driver-facing projection: decrypted credentials
// included. Never serialized to an HTTP response.
type WithSecrets struct {
	Public
	Credentials map[string]any
}

// Service is the C3 business-logic layer.
type Service struct {
	store      Store
	encryptor  *Encryptor
	invalidate Invalidator
}

// New constructs a Service. invalidate may be nil in tests that don't care
// about cache coherency.
func New(store Store, encryptor *Encryptor, invalidate Invalidator) *Service {
	return &Service{store: store, encryptor: encryptor, invalidate: invalidate}
}

func projectPublic(cfg *models.StorageConfig) (Public, error) {
	params, err := cfg.GetParams()
	if err != nil {
		return Public{}, apperrors.Repository(err, "decoding storage config params")
	}
	return Public{
		ID:                 cfg.ID,
		Name:               cfg.Name,
		Type:               cfg.Type,
		Params:             params,
		IsPublic:           cfg.IsPublic,
		IsDefault:          cfg.IsDefault,
		TotalStorageBytes:  cfg.TotalStorageBytes,
		SignatureExpiresIn: cfg.SignatureExpiresIn,
	}, nil
}

// Get returns the API-safe projection of a StorageConfig.
func (s *Service) Get(ctx context.Context, id string) (Public, error) {
	cfg, err := s.store.GetStorageConfig(ctx, id)
	if err != nil {
		return Public{}, err
	}
	return projectPublic(cfg)
}

// GetWithSecrets returns the driver-facing projection, decrypting
// Credentials. Only the driver construction path (DriverCache's
// ConfigLookup) should call this.
func (s *Service) GetWithSecrets(ctx context.Context, id string) (WithSecrets, error) {
	cfg, err := s.store.GetStorageConfig(ctx, id)
	if err != nil {
		return WithSecrets{}, err
	}
	pub, err := projectPublic(cfg)
	if err != nil {
		return WithSecrets{}, err
	}
	creds, err := s.encryptor.DecryptJSON(cfg.Credentials)
	if err != nil {
		return WithSecrets{}, apperrors.Repository(err, "decrypting storage config credentials")
	}
	return WithSecrets{Public: pub, Credentials: creds}, nil
}

// List returns every StorageConfig's API-safe projection.
func (s *Service) List(ctx context.Context) ([]Public, error) {
	rows, err := s.store.ListStorageConfigs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Public, 0, len(rows))
	for _, cfg := range rows {
		p, err := projectPublic(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// CreateInput is the payload accepted by Create.
type CreateInput struct {
	Name               string
	Type               models.StorageType
	Params             models.StorageConfigParams
	Credentials        map[string]any
	IsPublic           bool
	IsDefault          bool
	TotalStorageBytes  int64
	SignatureExpiresIn int
}

// Create encrypts credentials and persists a new StorageConfig.
func (s *Service) Create(ctx context.Context, in CreateInput) (Public, error) {
	cfg := &models.StorageConfig{
		Name:               in.Name,
		Type:               in.Type,
		IsPublic:           in.IsPublic,
		IsDefault:          in.IsDefault,
		TotalStorageBytes:  in.TotalStorageBytes,
		SignatureExpiresIn: in.SignatureExpiresIn,
	}
	if err := cfg.SetParams(in.Params); err != nil {
		return Public{}, apperrors.Validation("invalid storage config params: %v", err)
	}
	enc, err := s.encryptor.EncryptJSON(in.Credentials)
	if err != nil {
		return Public{}, apperrors.Repository(err, "encrypting storage config credentials")
	}
	cfg.Credentials = enc

	id, err := s.store.CreateStorageConfig(ctx, cfg)
	if err != nil {
		return Public{}, err
	}
	cfg.ID = id
	return projectPublic(cfg)
}

// UpdateInput is the payload accepted by Update. A nil Credentials leaves
// the stored secret unchanged.
type UpdateInput struct {
	ID                 string
	Name               string
	Params             models.StorageConfigParams
	Credentials        map[string]any
	IsPublic           bool
	IsDefault          bool
	TotalStorageBytes  int64
	SignatureExpiresIn int
}

// Update persists changes and invalidates any cached driver for this config,
// since a credential or parameter change makes the live driver stale.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Public, error) {
	cfg, err := s.store.GetStorageConfig(ctx, in.ID)
	if err != nil {
		return Public{}, err
	}

	cfg.Name = in.Name
	cfg.IsPublic = in.IsPublic
	cfg.IsDefault = in.IsDefault
	cfg.TotalStorageBytes = in.TotalStorageBytes
	cfg.SignatureExpiresIn = in.SignatureExpiresIn
	if err := cfg.SetParams(in.Params); err != nil {
		return Public{}, apperrors.Validation("invalid storage config params: %v", err)
	}
	if in.Credentials != nil {
		enc, err := s.encryptor.EncryptJSON(in.Credentials)
		if err != nil {
			return Public{}, apperrors.Repository(err, "encrypting storage config credentials")
		}
		cfg.Credentials = enc
	}

	if err := s.store.UpdateStorageConfig(ctx, cfg); err != nil {
		return Public{}, err
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(driverTypeFor(cfg.Type), cfg.ID)
	}
	return projectPublic(cfg)
}

// Delete removes a StorageConfig (rejected by the store if a Mount still
// references it) and invalidates its cached driver.
func (s *Service) Delete(ctx context.Context, id string) error {
	cfg, err := s.store.GetStorageConfig(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteStorageConfig(ctx, id); err != nil {
		return err
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(driverTypeFor(cfg.Type), id)
	}
	return nil
}

func driverTypeFor(t models.StorageType) driver.Type {
	return driver.Type(t)
}

// Lookup adapts Service into a pkg/drivercache.ConfigLookup.
func (s *Service) Lookup(ctx context.Context, storageConfigID string) (driver.Type, map[string]any, map[string]any, error) {
	ws, err := s.GetWithSecrets(ctx, storageConfigID)
	if err != nil {
		return "", nil, nil, err
	}
	params := map[string]any{
		"endpoint":       ws.Params.Endpoint,
		"bucket":         ws.Params.Bucket,
		"region":         ws.Params.Region,
		"path_style":     ws.Params.PathStyle,
		"custom_host":    ws.Params.CustomHost,
		"url_proxy":      ws.Params.URLProxy,
		"default_folder": ws.Params.DefaultFolder,
	}
	for k, v := range ws.Params.ProviderExtra {
		params[k] = v
	}
	return driverTypeFor(ws.Type), params, ws.Credentials, nil
}
