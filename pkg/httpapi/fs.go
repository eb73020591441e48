package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/cloudcrate/filegate/internal/logger"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// fsList implements fs.list.
func (h *handler) fsList(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	entries, err := h.deps.FS.List(r.Context(), pr, r.URL.Query().Get("path"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// fsGetInfo implements fs.get.
func (h *handler) fsGetInfo(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	info, err := h.deps.FS.GetInfo(r.Context(), pr, r.URL.Query().Get("path"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// fsDownload implements fs.download, including an optional byte-range
// request per the HTTP Range header.
func (h *handler) fsDownload(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	req := parseRange(r.Header.Get("Range"))

	result, err := h.deps.FS.Download(r.Context(), pr, r.URL.Query().Get("path"), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer result.Body.Close()

	writeDownloadHeaders(w, result)
	if _, err := io.Copy(w, result.Body); err != nil {
		logger.WarnCtx(r.Context(), "download stream interrupted", logger.KeyError, err.Error())
	}
}

// fsMkdir implements fs.mkdir.
func (h *handler) fsMkdir(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	var body struct {
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.deps.FS.Mkdir(r.Context(), pr, body.Path); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// fsUpload implements fs.upload (multipart form).
func (h *handler) fsUpload(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", "missing file field", "VALIDATION_ERROR")
		return
	}
	defer file.Close()

	path := r.FormValue("path")
	opts := driver.UploadOptions{
		FileName:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		ContentLength: header.Size,
		UploadID:      r.FormValue("upload_id"),
	}

	result, err := h.deps.FS.Upload(r.Context(), pr, path, file, opts)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// fsUploadStream implements fs.upload (stream, PUT).
func (h *handler) fsUploadStream(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())

	opts := driver.UploadOptions{
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.ContentLength,
	}

	result, err := h.deps.FS.Upload(r.Context(), pr, r.URL.Query().Get("path"), r.Body, opts)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// fsDelete implements fs operations's delete.
func (h *handler) fsDelete(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	if err := h.deps.FS.Delete(r.Context(), pr, r.URL.Query().Get("path")); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// fsRename implements fs operations's move/rename.
func (h *handler) fsRename(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.deps.FS.Rename(r.Context(), pr, body.From, body.To); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// fsCopy implements fs operations's copy.
func (h *handler) fsCopy(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.deps.FS.Copy(r.Context(), pr, body.From, body.To); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parseRange(header string) driver.DownloadRequest {
	if header == "" {
		return driver.DownloadRequest{}
	}
	const prefix = "bytes="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return driver.DownloadRequest{}
	}
	spec := header[len(prefix):]
	var start, end int64
	var err error
	dash := -1
	for i, c := range spec {
		if c == '-' {
			dash = i
			break
		}
	}
	if dash < 0 {
		return driver.DownloadRequest{}
	}
	if start, err = strconv.ParseInt(spec[:dash], 10, 64); err != nil {
		return driver.DownloadRequest{}
	}
	if dash+1 < len(spec) {
		end, _ = strconv.ParseInt(spec[dash+1:], 10, 64)
	}
	return driver.DownloadRequest{RangeStart: start, RangeEnd: end, HasRange: true}
}

func writeDownloadHeaders(w http.ResponseWriter, result *driver.DownloadResult) {
	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	if result.ETag != "" {
		w.Header().Set("ETag", result.ETag)
	}
	if result.AcceptRanges {
		w.Header().Set("Accept-Ranges", "bytes")
	}
	if result.ContentRange != "" {
		w.Header().Set("Content-Range", result.ContentRange)
		w.WriteHeader(http.StatusPartialContent)
	}
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
}
