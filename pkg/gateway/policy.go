package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/vestibule-io/vestibule/pkg/api"
	"github.com/vestibule-io/vestibule/pkg/transport"
)

// normalizer shapes a completed proxy outcome into the external response.
// Exactly one of raw/apiErr is meaningful: apiErr != nil means the call
// failed. Authorization denials never reach a normalizer; the gate writes
// them before the handler runs.
type normalizer func(w http.ResponseWriter, r *http.Request, raw json.RawMessage, apiErr *api.APIError)

// passthrough surfaces the backend outcome verbatim. Successful responses
// use okStatus since the backend's own success status is not forwarded.
func passthrough(okStatus int) normalizer {
	return func(w http.ResponseWriter, _ *http.Request, raw json.RawMessage, apiErr *api.APIError) {
		if apiErr != nil {
			transport.WriteAPIError(w, apiErr)
			return
		}
		if len(raw) == 0 {
			w.WriteHeader(okStatus)
			return
		}
		transport.WriteRaw(w, okStatus, raw)
	}
}

// statusRemap translates selected upstream statuses into fixed external
// errors. Unrecognized statuses fall through to passthrough.
func statusRemap(okStatus int, remap map[int]func() *api.APIError) normalizer {
	inner := passthrough(okStatus)
	return func(w http.ResponseWriter, r *http.Request, raw json.RawMessage, apiErr *api.APIError) {
		if apiErr != nil {
			if mapped, ok := remap[apiErr.Status]; ok {
				transport.WriteAPIError(w, mapped())
				return
			}
		}
		inner(w, r, raw, apiErr)
	}
}

// softFail hides any failure behind HTTP 200 with a safe default payload.
// The default is computed per request so it can echo the caller's
// pagination.
func softFail(defaultPayload func(r *http.Request) any) normalizer {
	return func(w http.ResponseWriter, r *http.Request, raw json.RawMessage, apiErr *api.APIError) {
		if apiErr != nil {
			transport.WriteJSON(w, http.StatusOK, defaultPayload(r))
			return
		}
		transport.WriteRaw(w, http.StatusOK, raw)
	}
}

// alwaysSuccess returns a fixed payload regardless of the backend outcome.
// Used for anti-enumeration operations where revealing failure would leak
// whether an identifier exists.
func alwaysSuccess(status int, payload any) normalizer {
	return func(w http.ResponseWriter, _ *http.Request, _ json.RawMessage, _ *api.APIError) {
		transport.WriteJSON(w, status, payload)
	}
}
