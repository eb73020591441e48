package uploadledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
)

type memSessionStore struct {
	byID map[string]*models.UploadSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{byID: map[string]*models.UploadSession{}}
}

func (m *memSessionStore) CreateUploadSession(ctx context.Context, sess *models.UploadSession) error {
	m.byID[sess.ID] = sess
	return nil
}
func (m *memSessionStore) GetUploadSession(ctx context.Context, id string) (*models.UploadSession, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, models.ErrUploadSessionNotFound
	}
	return s, nil
}
func (m *memSessionStore) FindByFingerprint(ctx context.Context, fingerprint string) (*models.UploadSession, error) {
	for _, s := range m.byID {
		if s.Fingerprint == fingerprint {
			return s, nil
		}
	}
	return nil, models.ErrUploadSessionNotFound
}
func (m *memSessionStore) UpdateStatusConditional(ctx context.Context, id string, requiredCurrent, newStatus models.UploadSessionStatus, fields map[string]any) (bool, error) {
	s, ok := m.byID[id]
	if !ok || s.Status != requiredCurrent {
		return false, nil
	}
	s.Status = newStatus
	if bu, ok := fields["bytes_uploaded"]; ok {
		s.BytesUploaded = bu.(int64)
	}
	if up, ok := fields["uploaded_parts"]; ok {
		s.UploadedPartsJSON = up.(string)
	}
	return true, nil
}
func (m *memSessionStore) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

type fakeMultipartDriver struct {
	driver.BaseDriver
	completed bool
	aborted   bool
}

func (d *fakeMultipartDriver) Initialize(ctx context.Context) error { d.MarkInitialized(); return nil }
func (d *fakeMultipartDriver) Cleanup(ctx context.Context) error    { return nil }

func (d *fakeMultipartDriver) InitializeFrontendMultipartUpload(ctx context.Context, subPath string, fileSize, partSize int64) (*driver.MultipartInitResult, error) {
	return &driver.MultipartInitResult{UploadID: "up-1", Strategy: "per_part_url", PartSize: partSize, TotalParts: 1}, nil
}
func (d *fakeMultipartDriver) CompleteFrontendMultipartUpload(ctx context.Context, subPath, uploadID string, parts []driver.CompletedPart) (*driver.UploadResult, error) {
	d.completed = true
	return &driver.UploadResult{StoragePath: subPath}, nil
}
func (d *fakeMultipartDriver) AbortFrontendMultipartUpload(ctx context.Context, subPath, uploadID string) error {
	d.aborted = true
	return nil
}
func (d *fakeMultipartDriver) ListMultipartUploads(ctx context.Context, subPath string) ([]string, error) {
	return nil, nil
}
func (d *fakeMultipartDriver) ListMultipartParts(ctx context.Context, subPath, uploadID string) (*driver.ListPartsResult, error) {
	return &driver.ListPartsResult{}, nil
}
func (d *fakeMultipartDriver) RefreshMultipartUrls(ctx context.Context, subPath, uploadID string, partNumbers []int) (map[int]string, error) {
	out := map[int]string{}
	for _, n := range partNumbers {
		out[n] = "https://example/part/" + string(rune(n))
	}
	return out, nil
}

func newTestLedger(t *testing.T) (*Ledger, *memSessionStore, *fakeMultipartDriver) {
	t.Helper()
	store := newMemSessionStore()
	d := &fakeMultipartDriver{BaseDriver: driver.NewBaseDriver(driver.TypeS3, driver.CapMultipart)}
	require.NoError(t, d.Initialize(context.Background()))
	resolve := func(ctx context.Context, storageConfigID string) (driver.Base, error) { return d, nil }
	return New(store, resolve, time.Hour), store, d
}

func TestLedger_InitializeCreatesActiveSession(t *testing.T) {
	ledger, store, _ := newTestLedger(t)

	sess, initResult, err := ledger.Initialize(context.Background(), InitializeInput{
		PrincipalID:     "p1",
		StorageType:     models.StorageTypeS3,
		StorageConfigID: "cfg-1",
		FSPath:          "/a/b.bin",
		Source:          models.UploadSourceFS,
		FileName:        "b.bin",
		FileSize:        10 * 1024 * 1024,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusActive, sess.Status)
	assert.Equal(t, "up-1", initResult.UploadID)
	assert.Len(t, store.byID, 1)
}

func TestLedger_InitializeIsIdempotentByFingerprint(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	in := InitializeInput{
		PrincipalID: "p1", StorageType: models.StorageTypeS3, StorageConfigID: "cfg-1",
		FSPath: "/a/b.bin", Source: models.UploadSourceFS, FileName: "b.bin", FileSize: 10,
	}
	sess1, _, err := ledger.Initialize(context.Background(), in)
	require.NoError(t, err)
	sess2, _, err := ledger.Initialize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, sess1.ID, sess2.ID)
}

func TestLedger_CompleteTransitionsToCompleted(t *testing.T) {
	ledger, _, fakeDriver := newTestLedger(t)
	sess, _, err := ledger.Initialize(context.Background(), InitializeInput{
		PrincipalID: "p1", StorageType: models.StorageTypeS3, StorageConfigID: "cfg-1",
		FSPath: "/a/b.bin", Source: models.UploadSourceFS, FileName: "b.bin", FileSize: 10,
	})
	require.NoError(t, err)

	_, err = ledger.Complete(context.Background(), sess.ID, []driver.CompletedPart{{PartNumber: 1, ETag: "e1"}})
	require.NoError(t, err)
	assert.True(t, fakeDriver.completed)
	assert.Equal(t, models.UploadStatusCompleted, sess.Status)

	_, err = ledger.Complete(context.Background(), sess.ID, nil)
	assert.Error(t, err)
}

func TestLedger_AbortTransitionsToAborted(t *testing.T) {
	ledger, _, fakeDriver := newTestLedger(t)
	sess, _, err := ledger.Initialize(context.Background(), InitializeInput{
		PrincipalID: "p1", StorageType: models.StorageTypeS3, StorageConfigID: "cfg-1",
		FSPath: "/a/b.bin", Source: models.UploadSourceFS, FileName: "b.bin", FileSize: 10,
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Abort(context.Background(), sess.ID))
	assert.True(t, fakeDriver.aborted)
	assert.Equal(t, models.UploadStatusAborted, sess.Status)
}

func TestPlanParts_ClampsAndCapsPartCount(t *testing.T) {
	partSize, totalParts, err := PlanParts(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(minPartSize), partSize)
	assert.Equal(t, 1, totalParts)

	_, totalParts, err = PlanParts(100*1024*1024*1024, 0) // 100GiB
	require.NoError(t, err)
	assert.LessOrEqual(t, totalParts, maxParts)
}
