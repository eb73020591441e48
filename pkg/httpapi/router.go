package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cloudcrate/filegate/internal/logger"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/filesystem"
	"github.com/cloudcrate/filegate/pkg/linkservice"
	"github.com/cloudcrate/filegate/pkg/objectstore"
	"github.com/cloudcrate/filegate/pkg/principal"
	"github.com/cloudcrate/filegate/pkg/proxysig"
	"github.com/cloudcrate/filegate/pkg/share"
	"github.com/cloudcrate/filegate/pkg/storageconfig"
	"github.com/cloudcrate/filegate/pkg/uploadledger"
)

// Dependencies is everything the router needs to serve spec.md §6's
// wire-protocol table. cmd/gatewayd builds one of these by wiring every
// core component together and hands it to NewRouter.
type Dependencies struct {
	FS             *filesystem.FileSystem
	Objects        *objectstore.Store
	Links          *linkservice.Service
	Uploads        *uploadledger.Ledger
	Shares         *share.Service
	StorageConfigs *storageconfig.Service
	Signer         *proxysig.Signer
	JWT            *principal.JWTService
	// Resolve obtains a live driver instance directly, normally
	// pkg/drivercache.Cache.Get. Used by the handlers that need one-off
	// capability access (fs.presign) outside FileSystem's own façade
	// methods.
	Resolve func(ctx context.Context, storageConfigID string) (driver.Base, error)
	// Invalidate drops a driver-cache entry after an ObjectStore write,
	// normally pkg/drivercache.Cache.Invalidate.
	Invalidate objectstore.Invalidator
	// Tester probes a StorageConfig's connectivity without caching a live
	// driver instance, normally pkg/driver.Factory.Test. Backs
	// GET /health/stores.
	Tester         func(storageType driver.Type, params, credentials map[string]any) (driver.ConnectivityReport, error)
	RequestTimeout time.Duration
}

// NewRouter builds the chi router exposing fs.*, share.*, proxy.link, and
// the signed-proxy download endpoint. It does not implement login, paste,
// backup/restore, or the admin UI: those are external collaborators per
// spec.md §1.
func NewRouter(deps Dependencies) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(Authenticate(deps.JWT))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	h := &handler{deps: deps}

	r.Get("/health/stores", h.healthStores)

	r.Route("/api/fs", func(r chi.Router) {
		r.Get("/", h.fsList)
		r.Get("/info", h.fsGetInfo)
		r.Get("/download", h.fsDownload)
		r.Post("/mkdir", h.fsMkdir)
		r.Post("/upload", h.fsUpload)
		r.Put("/upload", h.fsUploadStream)
		r.Delete("/", h.fsDelete)
		r.Post("/rename", h.fsRename)
		r.Post("/copy", h.fsCopy)

		r.Post("/multipart/init", h.multipartInit)
		r.Post("/multipart/complete", h.multipartComplete)
		r.Post("/multipart/abort", h.multipartAbort)
		r.Get("/multipart/parts", h.multipartListParts)
		r.Post("/multipart/refresh-urls", h.multipartRefreshUrls)

		r.Post("/presign", h.fsPresign)
		r.Post("/presign/commit", h.fsPresignCommit)
	})

	r.Route("/api/share", func(r chi.Router) {
		r.Put("/", h.shareUpload)
		r.Post("/presign", h.sharePresign)
		r.Post("/commit", h.shareCommit)
	})

	r.Route("/api/config", func(r chi.Router) {
		r.Get("/schemas", h.configSchemas)
		r.Get("/schemas/{type}", h.configSchema)
	})

	r.Get("/api/s/{slug}", h.shareResolve)

	r.Post("/api/link", h.proxyLink)

	r.Get("/api/p/*", h.proxyDownload)

	return r
}

type handler struct {
	deps Dependencies
}

func isHealthPath(path string) bool {
	return path == "/health" || path == "/health/stores"
}

// requestLogger mirrors the teacher's controlplane request logger,
// adapted to gateway log fields.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("request started",
			logger.KeyOperation, r.Method+" "+r.URL.Path,
			"request_id", requestID,
			logger.KeyClientIP, r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			logger.KeyOperation, r.Method + " " + r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, logger.Duration(start),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("request completed", logArgs...)
		} else {
			logger.Info("request completed", logArgs...)
		}
	})
}
