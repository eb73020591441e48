package httpapi

import (
	"net/http"

	"github.com/cloudcrate/filegate/internal/logger"
)

// storeHealth is one StorageConfig's connectivity probe result, the shape
// an admin UI's "test connection" list renders per row.
type storeHealth struct {
	StorageConfigID string `json:"storageConfigId"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	OK              bool   `json:"ok"`
	Message         string `json:"message,omitempty"`
}

// healthStores probes every configured StorageConfig with its driver's
// static connectivity tester, without caching a live driver instance. A
// config that fails to decrypt or whose type has no registered driver is
// reported as unhealthy rather than aborting the whole response.
func (h *handler) healthStores(w http.ResponseWriter, r *http.Request) {
	configs, err := h.deps.StorageConfigs.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	results := make([]storeHealth, 0, len(configs))
	for _, cfg := range configs {
		entry := storeHealth{StorageConfigID: cfg.ID, Name: cfg.Name, Type: string(cfg.Type)}

		storageType, params, credentials, err := h.deps.StorageConfigs.Lookup(r.Context(), cfg.ID)
		if err != nil {
			entry.Message = "credentials unavailable"
			results = append(results, entry)
			continue
		}

		report, err := h.deps.Tester(storageType, params, credentials)
		if err != nil {
			logger.WarnCtx(r.Context(), "store connectivity probe failed",
				"storage_config_id", cfg.ID, logger.KeyError, err.Error())
			entry.Message = err.Error()
			results = append(results, entry)
			continue
		}
		entry.OK = report.OK
		entry.Message = report.Message
		results = append(results, entry)
	}

	WriteJSON(w, http.StatusOK, results)
}
