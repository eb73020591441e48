package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudcrate/filegate/internal/logger"
	"github.com/cloudcrate/filegate/pkg/linkservice"
	"github.com/cloudcrate/filegate/pkg/principal"
	"github.com/cloudcrate/filegate/pkg/proxysig"
)

// proxyLink implements proxy.link: given either an FS virtualPath or a
// share slug, return the URL (and any headers) the caller should fetch,
// per the decision table in spec.md §4.10.
func (h *handler) proxyLink(w http.ResponseWriter, r *http.Request) {
	pr := PrincipalFromContext(r.Context())

	var body struct {
		Type          string `json:"type"` // "fs" or "share"
		Path          string `json:"path,omitempty"`
		Slug          string `json:"slug,omitempty"`
		ForceDownload bool   `json:"forceDownload"`
	}
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	var (
		link *linkservice.Link
		err  error
	)
	switch body.Type {
	case "share":
		link, err = h.linkForShare(r, body.Slug, body.ForceDownload)
	case "fs":
		link, err = h.linkForPath(r, pr, body.Path, body.ForceDownload)
	default:
		WriteProblem(w, http.StatusBadRequest, "Bad Request", `type must be "fs" or "share"`, "VALIDATION_ERROR")
		return
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, link)
}

func (h *handler) linkForShare(r *http.Request, slug string, forceDownload bool) (*linkservice.Link, error) {
	record, err := h.deps.Shares.Resolve(r.Context(), slug, "")
	if err != nil {
		return nil, err
	}
	return h.deps.Links.ForShare(r.Context(), linkservice.ModeClient, linkservice.ShareLinkInput{
		Slug:            slug,
		StorageConfigID: record.StorageConfigID,
		StoragePath:     record.StoragePath,
		UseProxy:        record.UseProxy,
		ForceDownload:   forceDownload,
	})
}

func (h *handler) linkForPath(r *http.Request, pr principal.Principal, virtualPath string, forceDownload bool) (*linkservice.Link, error) {
	target, err := h.deps.FS.ResolveForLink(r.Context(), pr, virtualPath)
	if err != nil {
		return nil, err
	}
	req := proxysig.NeedsSignature(target.Mount)

	cfg, err := h.deps.StorageConfigs.Get(r.Context(), target.Mount.StorageConfigID)
	var sigExpires time.Duration
	if err == nil && cfg.SignatureExpiresIn > 0 {
		sigExpires = time.Duration(cfg.SignatureExpiresIn) * time.Second
	}

	return h.deps.Links.ForPath(r.Context(), linkservice.ModeClient, linkservice.FSLinkInput{
		MountID:              target.Mount.ID,
		VirtualPath:          virtualPath,
		StorageConfigID:      target.Mount.StorageConfigID,
		StoragePath:          target.SubPath,
		MountWebProxy:        target.Mount.WebProxy,
		MountSignatureNeeded: req.Required,
		SignatureExpiresIn:   sigExpires,
		ForceDownload:        forceDownload,
	})
}

// proxyDownload implements GET /api/p/<path>: the signed-proxy download
// endpoint a client reaches when the mount requires the core sit between
// it and the backend. Unlike every other /api/fs route this one bypasses
// principal-based authorization entirely in favor of signature
// verification, since callers may be unauthenticated browsers following a
// link generated by proxyLink.
func (h *handler) proxyDownload(w http.ResponseWriter, r *http.Request) {
	virtualPath := "/" + r.URL.Path[len("/api/p/"):]

	target, err := h.deps.FS.ResolveForLink(r.Context(), principal.Admin("proxy"), virtualPath)
	if err != nil {
		WriteError(w, err)
		return
	}

	sig := r.URL.Query().Get("sig")
	tsRaw := r.URL.Query().Get("ts")
	ts, convErr := strconv.ParseInt(tsRaw, 10, 64)
	if sig == "" || convErr != nil {
		WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "signature verification failed", "PROXY_SIGNATURE")
		return
	}

	var expiresIn time.Duration
	if cfg, err := h.deps.StorageConfigs.Get(r.Context(), target.Mount.StorageConfigID); err == nil && cfg.SignatureExpiresIn > 0 {
		expiresIn = time.Duration(cfg.SignatureExpiresIn) * time.Second
	}
	if err := h.deps.Signer.Verify(virtualPath, target.Mount.ID, sig, ts, expiresIn, time.Now()); err != nil {
		WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "signature verification failed", "PROXY_SIGNATURE")
		return
	}

	result, err := h.deps.Objects.DownloadByStoragePath(r.Context(), target.Mount.StorageConfigID, target.SubPath, parseRange(r.Header.Get("Range")))
	if err != nil {
		WriteError(w, err)
		return
	}
	defer result.Body.Close()

	writeDownloadHeaders(w, result)
	if _, err := io.Copy(w, result.Body); err != nil {
		logger.WarnCtx(r.Context(), "proxy download stream interrupted", logger.KeyError, err.Error())
	}
}
