package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/vestibule-io/vestibule/pkg/api"
	"github.com/vestibule-io/vestibule/pkg/session"
	"github.com/vestibule-io/vestibule/pkg/transport"
	"github.com/vestibule-io/vestibule/pkg/upstream"
)

// maxBodyBytes bounds inbound JSON bodies forwarded to the backend.
const maxBodyBytes = 1 << 20

// dashboardDefaults is the safe payload served when the stats widget's
// backend call fails. Zeroed, so the surrounding page still renders.
type dashboardDefaults struct {
	Users             int `json:"users"`
	Roles             int `json:"roles"`
	PendingApprovals  int `json:"pending_approvals"`
	ActiveDelegations int `json:"active_delegations"`
}

// resendAccepted is the fixed anti-enumeration response for the resend
// verification operation.
var resendAccepted = map[string]string{"status": "accepted"}

// readBody drains the request body for forwarding. Syntactically invalid
// JSON is rejected locally so it can never surface as a proxy failure; the
// backend decides everything beyond syntax.
func readBody(r *http.Request) (json.RawMessage, *api.APIError) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, api.NewValidationError("failed to read request body")
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, api.NewValidationError("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// proxy issues one backend call and applies the endpoint's normalization
// policy to the outcome.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request, sc *session.Context, method, path string, query url.Values, body any, norm normalizer) {
	raw, apiErr := s.backend.Do(r.Context(), method, path, query, body, sc)
	norm(w, r, raw, apiErr)
}

// forward reads the inbound body and proxies it unchanged.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, sc *session.Context, method, path string, norm normalizer) {
	body, apiErr := readBody(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	var payload any
	if body != nil {
		payload = body
	}
	s.proxy(w, r, sc, method, path, nil, payload, norm)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	q := upstream.NormalizeQuery(r.URL.Query(), upstream.DefaultPage)
	s.proxy(w, r, sc, http.MethodGet, "/api/v1/users", q, nil, passthrough(http.StatusOK))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	path := "/api/v1/users/" + url.PathEscape(r.PathValue("id"))
	s.proxy(w, r, sc, http.MethodGet, path, nil, nil, passthrough(http.StatusOK))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	s.forward(w, r, sc, http.MethodPost, "/api/v1/users", passthrough(http.StatusCreated))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	path := "/api/v1/users/" + url.PathEscape(r.PathValue("id"))
	s.forward(w, r, sc, http.MethodPut, path, passthrough(http.StatusOK))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	path := "/api/v1/users/" + url.PathEscape(r.PathValue("id"))
	s.proxy(w, r, sc, http.MethodDelete, path, nil, nil, passthrough(http.StatusNoContent))
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	q := upstream.NormalizeQuery(r.URL.Query(), upstream.DefaultPage)
	s.proxy(w, r, sc, http.MethodGet, "/api/v1/roles", q, nil, passthrough(http.StatusOK))
}

func (s *Server) createRole(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	s.forward(w, r, sc, http.MethodPost, "/api/v1/roles", passthrough(http.StatusCreated))
}

func (s *Server) listApprovals(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	q := upstream.NormalizeQuery(r.URL.Query(), upstream.DefaultPage)
	s.proxy(w, r, sc, http.MethodGet, "/api/v1/approvals", q, nil, passthrough(http.StatusOK))
}

func (s *Server) decideApproval(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	path := "/api/v1/approvals/" + url.PathEscape(r.PathValue("id")) + "/decision"
	s.forward(w, r, sc, http.MethodPost, path, passthrough(http.StatusOK))
}

func (s *Server) getAuditRecord(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	path := "/api/v1/audit/" + url.PathEscape(r.PathValue("id"))
	norm := statusRemap(http.StatusOK, map[int]func() *api.APIError{
		http.StatusNotFound: func() *api.APIError {
			return api.NewNotFoundError("audit record not found")
		},
	})
	s.proxy(w, r, sc, http.MethodGet, path, nil, nil, norm)
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	norm := softFail(func(*http.Request) any {
		return dashboardDefaults{}
	})
	s.proxy(w, r, sc, http.MethodGet, "/api/v1/dashboard/stats", nil, nil, norm)
}

func (s *Server) roleMiningSuggestions(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	q := upstream.NormalizeQuery(r.URL.Query(), upstream.DefaultPage)
	norm := softFail(func(r *http.Request) any {
		limit, offset := upstream.PageFromQuery(r.URL.Query(), upstream.DefaultPage)
		return api.EmptyPage(limit, offset)
	})
	s.proxy(w, r, sc, http.MethodGet, "/api/v1/role-mining/suggestions", q, nil, norm)
}

func (s *Server) resendVerification(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	// The backend call is attempted exactly once; its outcome never shows.
	s.forward(w, r, sc, http.MethodPost, "/api/v1/verification/resend",
		alwaysSuccess(http.StatusAccepted, resendAccepted))
}

// sessionInfo reflects the resolved session without touching the backend.
func (s *Server) sessionInfo(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	_, delegated := s.codec.ReadStash(r)

	body := struct {
		Authenticated bool          `json:"authenticated"`
		TenantID      string        `json:"tenant_id,omitempty"`
		User          *session.User `json:"user,omitempty"`
		Delegated     bool          `json:"delegated"`
	}{
		Authenticated: sc.Authenticated(),
		Delegated:     delegated,
	}
	if sc.Authenticated() {
		body.TenantID = sc.TenantID
		body.User = sc.User
	}
	transport.WriteJSON(w, http.StatusOK, body)
}
