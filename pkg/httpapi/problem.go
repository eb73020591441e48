// Package httpapi wires the core components (FileSystem, ObjectStore,
// LinkService, UploadSessionLedger, ShareRecordService, ProxySignature) to
// a chi router, exposing spec.md §6's wire-protocol table. The routing,
// request-body parsing, and auth-token issuance this package performs are
// deliberately thin: it exists to drive the core end to end, not to be a
// complete public API surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloudcrate/filegate/pkg/apperrors"
)

// Problem is an RFC 7807 "problem details" response.
// https://tools.ietf.org/html/rfc7807
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, title, detail, code string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
		Code:   code,
	})
}

// WriteError translates any error into a problem response. *apperrors.Error
// values carry their own status/code/expose flag; anything else is treated
// as an opaque 500 whose message is never exposed verbatim.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		WriteProblem(w, appErr.Status, http.StatusText(appErr.Status), appErr.PublicMessage(), string(appErr.Code))
		return
	}
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", "an internal error occurred", "")
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
