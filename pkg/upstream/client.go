package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vestibule-io/vestibule/pkg/api"
	"github.com/vestibule-io/vestibule/pkg/observability"
	"github.com/vestibule-io/vestibule/pkg/session"
)

// TenantHeader carries the session's tenant identifier on every backend call.
const TenantHeader = "X-Tenant-ID"

// Caller is the proxy interface consumed by the gateway handlers. Tests
// substitute a recording stub.
type Caller interface {
	Do(ctx context.Context, method, path string, query url.Values, body any, sc *session.Context) (json.RawMessage, *api.APIError)
}

// Client performs HTTP requests against the identity-governance backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ Caller = (*Client)(nil)

// NewClient creates a backend client. The timeout bounds each round trip;
// on expiry the call surfaces as a transport failure.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Do issues one call to the backend with the session's credential pair.
//
// On a 2xx response the parsed JSON body is returned (nil for 204). Any
// other status is classified via MapHTTPError; a transport failure (no
// response at all, including timeout) maps to a 500 "internal error".
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, sc *session.Context) (json.RawMessage, *api.APIError) {
	// The authorization gate runs before every proxy call, so a partial
	// credential pair here is a programming error, not a client fault.
	if !sc.Authenticated() {
		return nil, api.NewInternalError("proxy invoked without full session context")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, api.NewInternalError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, api.NewInternalError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+sc.AccessToken)
	httpReq.Header.Set(TenantHeader, sc.TenantID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	observability.UpstreamLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(method, "5xx").Inc()
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	observability.UpstreamRequestsTotal.WithLabelValues(method, observability.StatusClass(httpResp.StatusCode)).Inc()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	if httpResp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, api.NewInternalError(fmt.Sprintf("failed to read backend response: %s", err.Error()))
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, api.NewInternalError("backend returned a malformed response body")
	}

	return json.RawMessage(raw), nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
