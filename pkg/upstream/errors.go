package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vestibule-io/vestibule/pkg/api"
)

// errorBody is the structured error shape the backend returns on failure.
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// MapHTTPError converts a backend response with a non-2xx status code into
// an APIError. The backend's structured {status, message} error body is
// used when present; otherwise a generic message for that status class.
func MapHTTPError(resp *http.Response) *api.APIError {
	message := ExtractErrorMessage(resp.Body)

	if message == "" {
		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		case resp.StatusCode >= http.StatusBadRequest:
			message = fmt.Sprintf("backend rejected the request (HTTP %d)", resp.StatusCode)
		default:
			message = fmt.Sprintf("unexpected backend response (HTTP %d)", resp.StatusCode)
		}
	}

	return api.NewUpstreamError(resp.StatusCode, message)
}

// MapNetworkError converts a transport-level failure (connection refused,
// timeout, DNS resolution failure) into the generic internal error. The
// caller received no backend response, so no backend detail is surfaced.
func MapNetworkError(err error) *api.APIError {
	slog.Warn("backend transport failure", "error", err)
	return api.NewInternalError("internal error")
}

// ExtractErrorMessage tries to parse the response body as the backend's
// structured error shape and returns the message if found.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}

	return ""
}
