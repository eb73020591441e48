package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/driverschema"
)

// configSchemas implements config.schemas: the per-storage-type JSON Schema
// documents an admin UI renders as a connection-params form.
func (h *handler) configSchemas(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, driverschema.All())
}

// configSchema implements config.schema for a single storage type.
func (h *handler) configSchema(w http.ResponseWriter, r *http.Request) {
	storageType := driver.Type(chi.URLParam(r, "type"))
	schema, ok := driverschema.ForType(storageType)
	if !ok {
		WriteProblem(w, http.StatusNotFound, "Not Found", "unknown storage type", "NOT_FOUND")
		return
	}
	WriteJSON(w, http.StatusOK, schema)
}
