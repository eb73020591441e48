package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/models"
)

type memStore struct {
	byID   map[string]*models.ShareRecord
	bySlug map[string]string
	nextID int
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*models.ShareRecord{}, bySlug: map[string]string{}}
}

func (m *memStore) GetShareRecordBySlug(ctx context.Context, slug string) (*models.ShareRecord, error) {
	id, ok := m.bySlug[slug]
	if !ok {
		return nil, models.ErrShareRecordNotFound
	}
	return m.byID[id], nil
}

func (m *memStore) GetActiveByStoragePath(ctx context.Context, storageConfigID, storagePath string) (*models.ShareRecord, error) {
	for _, r := range m.byID {
		if r.Active && r.StorageConfigID == storageConfigID && r.StoragePath == storagePath {
			return r, nil
		}
	}
	return nil, models.ErrShareRecordNotFound
}

func (m *memStore) CreateShareRecord(ctx context.Context, r *models.ShareRecord) (string, error) {
	m.nextID++
	id := "id-" + string(rune('0'+m.nextID))
	r.ID = id
	r.Active = true
	cp := *r
	m.byID[id] = &cp
	m.bySlug[r.Slug] = id
	return id, nil
}

func (m *memStore) UpdateShareRecord(ctx context.Context, r *models.ShareRecord) error {
	if _, ok := m.byID[r.ID]; !ok {
		return models.ErrShareRecordNotFound
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memStore) IncrementViews(ctx context.Context, id string) error {
	r, ok := m.byID[id]
	if !ok {
		return models.ErrShareRecordNotFound
	}
	r.Views++
	return nil
}

func (m *memStore) DeleteShareRecord(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type fixedQuota struct{ used int64 }

func (f fixedQuota) SumActiveSizeForConfig(ctx context.Context, storageConfigID, excludeID string) (int64, error) {
	return f.used, nil
}

type emptySettings struct{}

func (emptySettings) GetSetting(ctx context.Context, key string) (string, error) {
	return "", models.ErrSettingNotFound
}

func newTestService(used int64) *Service {
	guard := NewLimitGuard(fixedQuota{used: used}, emptySettings{})
	return New(newMemStore(), guard)
}

func TestService_CreateShareRecordGeneratesSlug(t *testing.T) {
	s := newTestService(0)
	record, err := s.CreateShareRecord(context.Background(), CreateInput{
		StorageConfigID: "cfg-1",
		StoragePath:     "/a.txt",
		Size:            100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.Slug)
	assert.Len(t, record.Slug, 8)
}

func TestService_CreateShareRecordRejectsDuplicateSlug(t *testing.T) {
	s := newTestService(0)
	ctx := context.Background()
	_, err := s.CreateShareRecord(ctx, CreateInput{Slug: "mylink", StorageConfigID: "cfg-1", StoragePath: "/a.txt", Size: 10})
	require.NoError(t, err)

	_, err = s.CreateShareRecord(ctx, CreateInput{Slug: "mylink", StorageConfigID: "cfg-1", StoragePath: "/b.txt", Size: 10})
	assert.Error(t, err)
}

func TestService_CreateShareRecordEnforcesConfigQuota(t *testing.T) {
	s := newTestService(900)
	_, err := s.CreateShareRecord(context.Background(), CreateInput{
		StorageConfigID:   "cfg-1",
		StoragePath:       "/a.txt",
		Size:              200,
		TotalStorageBytes: 1000,
	})
	assert.Error(t, err)
}

func TestService_CreateShareRecordOverwriteUpdatesInPlace(t *testing.T) {
	s := newTestService(0)
	ctx := context.Background()

	first, err := s.CreateShareRecord(ctx, CreateInput{
		Slug:            "stable",
		StorageConfigID: "cfg-1",
		StoragePath:     "/report.pdf",
		Size:            100,
		NamingStrategy:  models.NamingOverwrite,
	})
	require.NoError(t, err)

	second, err := s.CreateShareRecord(ctx, CreateInput{
		StorageConfigID: "cfg-1",
		StoragePath:     "/report.pdf",
		Size:            200,
		NamingStrategy:  models.NamingOverwrite,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Slug, second.Slug)
	assert.Equal(t, int64(200), second.Size)
}

func TestService_ResolveRejectsExpiredAndWrongPassword(t *testing.T) {
	s := newTestService(0)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	expired, err := s.CreateShareRecord(ctx, CreateInput{Slug: "old", StorageConfigID: "cfg-1", StoragePath: "/x", Size: 1, ExpiresAt: &past})
	require.NoError(t, err)
	_, err = s.Resolve(ctx, expired.Slug, "")
	assert.Error(t, err)

	protected, err := s.CreateShareRecord(ctx, CreateInput{Slug: "prot", StorageConfigID: "cfg-1", StoragePath: "/y", Size: 1, Password: "correcthorse"})
	require.NoError(t, err)
	_, err = s.Resolve(ctx, protected.Slug, "wrong")
	assert.Error(t, err)
	resolved, err := s.Resolve(ctx, protected.Slug, "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, protected.ID, resolved.ID)
}
