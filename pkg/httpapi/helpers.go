package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cloudcrate/filegate/pkg/apperrors"
)

// decodeJSON decodes r's body into v, wrapping malformed bodies as a
// ValidationError so handlers can route every failure through WriteError.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Validation("malformed request body: %v", err)
	}
	return nil
}
