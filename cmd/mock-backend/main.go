// Command mock-backend runs a deterministic identity-governance backend
// for local development and conformance testing of the gateway. It holds a
// small seeded dataset in memory and enforces the same header contract the
// real backend does: a bearer token and a tenant header on every call.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{Addr: ":" + port, Handler: newBackend().handler()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

type user struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Verified bool     `json:"verified"`
}

type role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type approval struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Pending bool   `json:"pending"`
}

type page struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// backend is the in-memory dataset. Single tenant is enough for gateway
// development; the tenant header is validated for presence, not value.
type backend struct {
	mu        sync.Mutex
	users     []user
	roles     []role
	approvals []approval
	audits    map[string]map[string]string
	nextID    int
}

func newBackend() *backend {
	return &backend{
		users: []user{
			{ID: "u1", Email: "alice@example.com", Roles: []string{"tenant-admin"}, Verified: true},
			{ID: "u2", Email: "bob@example.com", Roles: []string{"viewer"}, Verified: false},
		},
		roles: []role{
			{ID: "r1", Name: "tenant-admin"},
			{ID: "r2", Name: "viewer"},
		},
		approvals: []approval{
			{ID: "a1", Subject: "role grant for bob", Pending: true},
			{ID: "a2", Subject: "access review", Pending: false},
		},
		audits: map[string]map[string]string{
			"rec-1": {"id": "rec-1", "action": "role-granted", "actor": "u1"},
		},
		nextID: 3,
	}
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/users", b.authed(b.listUsers))
	mux.HandleFunc("POST /api/v1/users", b.authed(b.createUser))
	mux.HandleFunc("GET /api/v1/users/{id}", b.authed(b.getUser))
	mux.HandleFunc("PUT /api/v1/users/{id}", b.authed(b.updateUser))
	mux.HandleFunc("DELETE /api/v1/users/{id}", b.authed(b.deleteUser))

	mux.HandleFunc("GET /api/v1/roles", b.authed(b.listRoles))
	mux.HandleFunc("POST /api/v1/roles", b.authed(b.createRole))

	mux.HandleFunc("GET /api/v1/approvals", b.authed(b.listApprovals))
	mux.HandleFunc("POST /api/v1/approvals/{id}/decision", b.authed(b.decideApproval))

	mux.HandleFunc("GET /api/v1/audit/{id}", b.authed(b.getAudit))
	mux.HandleFunc("GET /api/v1/dashboard/stats", b.authed(b.stats))
	mux.HandleFunc("GET /api/v1/role-mining/suggestions", b.authed(b.suggestions))
	mux.HandleFunc("POST /api/v1/verification/resend", b.authed(b.resend))

	mux.HandleFunc("POST /api/v1/poa-grants/{id}/assume", b.authed(b.assume))
	mux.HandleFunc("POST /api/v1/poa/drop", b.authed(b.drop))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	return mux
}

// authed enforces the gateway's outbound header contract.
func (b *backend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if r.Header.Get("X-Tenant-ID") == "" {
			writeError(w, http.StatusUnauthorized, "missing tenant header")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError emits the backend's structured {status, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": status, "message": message})
}

func (b *backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, page{Items: b.users, Total: len(b.users), Limit: 20, Offset: 0})
}

func (b *backend) createUser(w http.ResponseWriter, r *http.Request) {
	var u user
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil || u.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.users {
		if existing.Email == u.Email {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
	}
	u.ID = fmt.Sprintf("u%d", b.nextID)
	b.nextID++
	b.users = append(b.users, u)
	writeJSON(w, http.StatusCreated, u)
}

func (b *backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (b *backend) updateUser(w http.ResponseWriter, r *http.Request) {
	var in user
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.users {
		if b.users[i].ID == r.PathValue("id") {
			in.ID = b.users[i].ID
			b.users[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (b *backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.users {
		if b.users[i].ID == r.PathValue("id") {
			b.users = append(b.users[:i], b.users[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (b *backend) listRoles(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, page{Items: b.roles, Total: len(b.roles), Limit: 20, Offset: 0})
}

func (b *backend) createRole(w http.ResponseWriter, r *http.Request) {
	var in role
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	in.ID = fmt.Sprintf("r%d", b.nextID)
	b.nextID++
	b.roles = append(b.roles, in)
	writeJSON(w, http.StatusCreated, in)
}

func (b *backend) listApprovals(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.approvals
	if pending := r.URL.Query().Get("pending"); pending != "" {
		var filtered []approval
		for _, a := range b.approvals {
			if fmt.Sprintf("%t", a.Pending) == pending {
				filtered = append(filtered, a)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, page{Items: items, Total: len(items), Limit: 20, Offset: 0})
}

func (b *backend) decideApproval(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.approvals {
		if b.approvals[i].ID == r.PathValue("id") {
			if !b.approvals[i].Pending {
				writeError(w, http.StatusConflict, "approval already decided")
				return
			}
			b.approvals[i].Pending = false
			writeJSON(w, http.StatusOK, b.approvals[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "approval not found")
}

func (b *backend) getAudit(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rec, ok := b.audits[r.PathValue("id")]; ok {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	writeError(w, http.StatusNotFound, "no such record")
}

func (b *backend) stats(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := 0
	for _, a := range b.approvals {
		if a.Pending {
			pending++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"users":              len(b.users),
		"roles":              len(b.roles),
		"pending_approvals":  pending,
		"active_delegations": 0,
	})
}

func (b *backend) suggestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, page{
		Items: []map[string]string{
			{"role": "viewer", "candidate": "u2", "confidence": "0.87"},
		},
		Total: 1, Limit: 20, Offset: 0,
	})
}

func (b *backend) resend(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == in.Email {
			writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
			return
		}
	}
	// The gateway hides this distinction from callers; the mock keeps it so
	// the anti-enumeration behavior can be verified end to end.
	writeError(w, http.StatusNotFound, "no such user")
}

func (b *backend) assume(w http.ResponseWriter, r *http.Request) {
	grantID := r.PathValue("id")
	if grantID == "revoked" {
		writeError(w, http.StatusForbidden, "grant revoked")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": "delegated-" + grantID})
}

func (b *backend) drop(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
