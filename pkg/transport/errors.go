package transport

import (
	"encoding/json"
	"net/http"

	"github.com/vestibule-io/vestibule/pkg/api"
)

// WriteJSON writes a JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteAPIError writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api, deriving the HTTP status from the error.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteJSON(w, apiErr.Status, api.ErrorResponse{Error: apiErr})
}

// WriteRaw writes a pre-encoded JSON body with the given status code.
// Used by passthrough endpoints to mirror the backend's response shape.
func WriteRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(body) > 0 {
		w.Write(body)
	}
}
