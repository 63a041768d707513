package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vestibule-io/vestibule/pkg/api"
	"github.com/vestibule-io/vestibule/pkg/audit"
	"github.com/vestibule-io/vestibule/pkg/observability"
	"github.com/vestibule-io/vestibule/pkg/session"
	"github.com/vestibule-io/vestibule/pkg/transport"
	"github.com/vestibule-io/vestibule/pkg/upstream"
)

// assumeRequest is the inbound body for the assume operation.
type assumeRequest struct {
	GrantID string `json:"grant_id"`
}

// assumeResult is the backend's response to a successful assume call. Only
// the delegated access token changes hands; tenant and user identity stay
// with the actor's session.
type assumeResult struct {
	AccessToken string `json:"access_token"`
}

// assumeDelegation swaps the session onto a delegated identity.
//
// Only callable from the normal state: a present stash means a delegation
// is already active and a second assume is rejected locally, before any
// backend call. On success the original token is stashed and the delegated
// token activated in the same response, so no intermediate state is ever
// observable. On upstream failure no cookie changes.
func (s *Server) assumeDelegation(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	if _, ok := s.codec.ReadStash(r); ok {
		observability.DelegationOpsTotal.WithLabelValues("assume", "rejected").Inc()
		transport.WriteAPIError(w, api.NewConflictError("delegation already active"))
		return
	}

	var req assumeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.GrantID == "" {
		transport.WriteAPIError(w, api.NewValidationError("grant_id is required"))
		return
	}

	path := "/api/v1/poa-grants/" + url.PathEscape(req.GrantID) + "/assume"
	raw, apiErr := s.backend.Do(r.Context(), http.MethodPost, path, nil, nil, sc)
	if apiErr != nil {
		observability.DelegationOpsTotal.WithLabelValues("assume", "error").Inc()
		transport.WriteAPIError(w, apiErr)
		return
	}

	var result assumeResult
	if err := json.Unmarshal(raw, &result); err != nil || result.AccessToken == "" {
		observability.DelegationOpsTotal.WithLabelValues("assume", "error").Inc()
		transport.WriteAPIError(w, api.NewInternalError("backend returned an unusable delegation response"))
		return
	}

	original := sc.AccessToken
	assumed := &session.Context{
		AccessToken: result.AccessToken,
		TenantID:    sc.TenantID,
		User:        sc.User,
	}

	// One response carries both cookie writes: the stash holding the
	// original token and the session holding the delegated one.
	if err := s.codec.WriteSession(w, assumed); err != nil {
		observability.DelegationOpsTotal.WithLabelValues("assume", "error").Inc()
		transport.WriteAPIError(w, api.NewInternalError("internal error"))
		return
	}
	s.codec.WriteStash(w, original)

	s.record(r, sc, audit.ActionAssume, req.GrantID)
	observability.DelegationOpsTotal.WithLabelValues("assume", "success").Inc()
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "assumed"})
}

// dropDelegation ends a delegation and restores the actor's own session.
//
// Only callable from the assumed state: a missing stash is rejected locally
// with 409. On upstream success the stashed token is restored into the
// session cookie and the stash deleted in the same response. On upstream
// failure no cookie changes.
func (s *Server) dropDelegation(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	original, ok := s.codec.ReadStash(r)
	if !ok {
		observability.DelegationOpsTotal.WithLabelValues("drop", "rejected").Inc()
		transport.WriteAPIError(w, api.NewConflictError("no active delegation"))
		return
	}

	_, apiErr := s.backend.Do(r.Context(), http.MethodPost, "/api/v1/poa/drop", nil, nil, sc)
	if apiErr != nil {
		observability.DelegationOpsTotal.WithLabelValues("drop", "error").Inc()
		transport.WriteAPIError(w, apiErr)
		return
	}

	restored := &session.Context{
		AccessToken: original,
		TenantID:    sc.TenantID,
		User:        sc.User,
	}

	// Restore then delete as one response; a crash between the two writes
	// cannot strand the session without a restorable token.
	if err := s.codec.WriteSession(w, restored); err != nil {
		observability.DelegationOpsTotal.WithLabelValues("drop", "error").Inc()
		transport.WriteAPIError(w, api.NewInternalError("internal error"))
		return
	}
	s.codec.ClearStash(w)

	s.record(r, sc, audit.ActionDrop, "")
	observability.DelegationOpsTotal.WithLabelValues("drop", "success").Inc()
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
}

// listDelegationEvents serves the tenant's recent delegation trail from the
// configured audit recorder. Local operation, no proxy call.
func (s *Server) listDelegationEvents(w http.ResponseWriter, r *http.Request, sc *session.Context) {
	limit, _ := upstream.PageFromQuery(r.URL.Query(), upstream.DefaultPage)

	events, err := s.recorder.List(r.Context(), sc.TenantID, limit)
	if err != nil {
		s.logger.Warn("failed to list delegation events", "tenant", sc.TenantID, "error", err)
		transport.WriteAPIError(w, api.NewInternalError("internal error"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	transport.WriteJSON(w, http.StatusOK, events)
}

// record writes a delegation audit event. Best-effort: failures are logged
// and never surface to the caller.
func (s *Server) record(r *http.Request, sc *session.Context, action audit.Action, grantID string) {
	var actor string
	if sc.User != nil {
		actor = sc.User.ID
	}
	ev := audit.Event{
		ID:        uuid.NewString(),
		TenantID:  sc.TenantID,
		ActorID:   actor,
		Action:    action,
		GrantID:   grantID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.recorder.Record(r.Context(), ev); err != nil {
		s.logger.Warn("failed to record delegation event",
			"action", string(action), "tenant", sc.TenantID, "error", err)
	}
}
