package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudcrate/filegate/internal/logger"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/share"
)

// shareUpload implements share.upload: a storage-first upload (PUT, no
// mount context) that immediately creates a ShareRecord for the result.
func (h *handler) shareUpload(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())

	storageConfigID := r.URL.Query().Get("storageConfigId")
	storagePath := r.URL.Query().Get("path")
	if storageConfigID == "" || storagePath == "" {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", "storageConfigId and path are required", "VALIDATION_ERROR")
		return
	}

	cfg, err := h.deps.StorageConfigs.Get(r.Context(), storageConfigID)
	if err != nil {
		WriteError(w, err)
		return
	}

	opts := driver.UploadOptions{
		FileName:      storagePath,
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.ContentLength,
	}
	if _, err := h.deps.Objects.UploadFileForShare(r.Context(), storageConfigID, storagePath, r.Body, opts); err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.deps.Shares.CreateShareRecord(r.Context(), share.CreateInput{
		StorageConfigID:   storageConfigID,
		StoragePath:       storagePath,
		MimeType:          opts.ContentType,
		Size:              opts.ContentLength,
		CreatedBy:         pr.ID,
		TotalStorageBytes: cfg.TotalStorageBytes,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// sharePresign implements share.presign.
func (h *handler) sharePresign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StorageConfigID string `json:"storageConfigId"`
		StoragePath     string `json:"storagePath"`
		ContentType     string `json:"contentType"`
		FileSize        int64  `json:"fileSize"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	result, err := h.deps.Objects.PresignUpload(r.Context(), body.StorageConfigID, body.StoragePath, driver.UploadOptions{
		FileName:      body.StoragePath,
		ContentType:   body.ContentType,
		ContentLength: body.FileSize,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// shareCommit implements share.commit: confirm a presigned share upload
// landed, then create its ShareRecord.
func (h *handler) shareCommit(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	var body struct {
		StorageConfigID string `json:"storageConfigId"`
		StoragePath     string `json:"storagePath"`
		Remark          string `json:"remark"`
		Password        string `json:"password"`
		MaxViews        int64  `json:"maxViews"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	cfg, err := h.deps.StorageConfigs.Get(r.Context(), body.StorageConfigID)
	if err != nil {
		WriteError(w, err)
		return
	}
	entry, err := h.deps.Objects.CommitUpload(r.Context(), body.StorageConfigID, body.StoragePath)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.deps.Shares.CreateShareRecord(r.Context(), share.CreateInput{
		StorageConfigID:   body.StorageConfigID,
		StoragePath:       body.StoragePath,
		MimeType:          entry.MimeType,
		Size:              entry.Size,
		Remark:            body.Remark,
		Password:          body.Password,
		MaxViews:          body.MaxViews,
		CreatedBy:         pr.ID,
		TotalStorageBytes: cfg.TotalStorageBytes,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// shareResolve implements GET /api/s/<slug>: resolves a share, streams its
// object, and records a view. A query-string password is accepted since
// this is a plain browser-navigable link, not a JSON API call.
func (h *handler) shareResolve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	record, err := h.deps.Shares.Resolve(r.Context(), slug, r.URL.Query().Get("password"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if r.URL.Query().Get("mode") == "meta" {
		WriteJSON(w, http.StatusOK, record)
		return
	}

	result, err := h.deps.Objects.DownloadByStoragePath(r.Context(), record.StorageConfigID, record.StoragePath, parseRange(r.Header.Get("Range")))
	if err != nil {
		WriteError(w, err)
		return
	}
	defer result.Body.Close()

	if err := h.deps.Shares.RecordView(r.Context(), record.ID); err != nil {
		logger.WarnCtx(r.Context(), "failed to record share view", "share_id", record.ID, logger.KeyError, err.Error())
	}

	writeDownloadHeaders(w, result)
	if _, err := io.Copy(w, result.Body); err != nil {
		logger.WarnCtx(r.Context(), "share download stream interrupted", "share_id", record.ID, logger.KeyError, err.Error())
	}
}
