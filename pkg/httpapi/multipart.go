package httpapi

import (
	"net/http"

	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
	"github.com/cloudcrate/filegate/pkg/uploadledger"
)

// multipartInit implements fs.multipart.init.
func (h *handler) multipartInit(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())

	var body struct {
		Path      string `json:"path"`
		FileName  string `json:"fileName"`
		FileSize  int64  `json:"fileSize"`
		PartSize  int64  `json:"partSize"`
		MimeType  string `json:"mimeType"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	target, err := h.deps.FS.ResolveForUpload(r.Context(), pr, body.Path)
	if err != nil {
		WriteError(w, err)
		return
	}

	sess, result, err := h.deps.Uploads.Initialize(r.Context(), uploadledger.InitializeInput{
		PrincipalID:     pr.ID,
		StorageType:     target.Mount.StorageType,
		StorageConfigID: target.Mount.StorageConfigID,
		MountID:         target.Mount.ID,
		FSPath:          target.SubPath,
		Source:          models.UploadSourceFS,
		FileName:        body.FileName,
		FileSize:        body.FileSize,
		MimeType:        body.MimeType,
		PartSize:        body.PartSize,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"sessionId":  sess.ID,
		"uploadId":   result.UploadID,
		"strategy":   result.Strategy,
		"partSize":   result.PartSize,
		"totalParts": result.TotalParts,
		"urls":       result.PresignedURLs,
		"sessionUrl": result.SessionURL,
	})
}

// multipartComplete implements fs.multipart.complete.
func (h *handler) multipartComplete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string                 `json:"sessionId"`
		Parts     []driver.CompletedPart `json:"parts"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	result, err := h.deps.Uploads.Complete(r.Context(), body.SessionID, body.Parts)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// multipartAbort implements fs.multipart.abort.
func (h *handler) multipartAbort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.deps.Uploads.Abort(r.Context(), body.SessionID); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// multipartListParts implements fs.multipart.list-parts. Backend GC of an
// in-flight upload is not an error: the caller sees uploadNotFound:true.
func (h *handler) multipartListParts(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	sess, err := h.deps.Uploads.Session(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	mp, err := h.deps.Uploads.MultipartDriver(r.Context(), sess.StorageConfigID)
	if err != nil {
		WriteError(w, err)
		return
	}
	result, err := mp.ListMultipartParts(r.Context(), sess.FSPath, sess.ProviderUploadID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// multipartRefreshUrls implements fs.multipart.refresh-urls.
func (h *handler) multipartRefreshUrls(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string `json:"sessionId"`
		PartNumbers []int  `json:"partNumbers"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	urls, err := h.deps.Uploads.RefreshUrls(r.Context(), body.SessionID, body.PartNumbers)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

// fsPresign implements fs.presign: a single-shot presigned upload URL,
// bypassing the multipart session machinery for backends/files too small
// to need it.
func (h *handler) fsPresign(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	var body struct {
		Path        string `json:"path"`
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
		FileSize    int64  `json:"fileSize"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	target, err := h.deps.FS.ResolveForUpload(r.Context(), pr, body.Path)
	if err != nil {
		WriteError(w, err)
		return
	}

	d, err := h.deps.Resolve(r.Context(), target.Mount.StorageConfigID)
	if err != nil {
		WriteError(w, err)
		return
	}
	presigner, ok := d.(driver.Presigner)
	if !ok {
		WriteProblem(w, http.StatusConflict, "Conflict", "mount does not support presigned uploads", "UNSUPPORTED_CAPABILITY")
		return
	}
	result, err := presigner.GenerateUploadURL(r.Context(), target.SubPath, driver.UploadOptions{
		FileName:      body.FileName,
		ContentType:   body.ContentType,
		ContentLength: body.FileSize,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	result.TargetPath = target.SubPath
	WriteJSON(w, http.StatusOK, result)
}

// fsPresignCommit implements fs.presign.commit: the client reports a
// successfully completed out-of-band presigned upload so the mount's
// driver-cache entry is invalidated and bookkeeping is updated.
func (h *handler) fsPresignCommit(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	var body struct {
		Path     string `json:"path"`
		FileSize int64  `json:"fileSize"`
		ETag     string `json:"etag"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	target, err := h.deps.FS.ResolveForUpload(r.Context(), pr, body.Path)
	if err != nil {
		WriteError(w, err)
		return
	}
	entry, err := h.deps.Objects.CommitUpload(r.Context(), target.Mount.StorageConfigID, target.SubPath)
	if err != nil {
		WriteError(w, err)
		return
	}
	if h.deps.Invalidate != nil {
		h.deps.Invalidate.Invalidate(driver.Type(target.Mount.StorageType), target.Mount.StorageConfigID)
	}
	WriteJSON(w, http.StatusOK, entry)
}
