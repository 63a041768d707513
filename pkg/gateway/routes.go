package gateway

import (
	"net/http"

	"github.com/vestibule-io/vestibule/pkg/auth"
	"github.com/vestibule-io/vestibule/pkg/session"
)

// handlerFunc is a route handler receiving the resolved session context.
type handlerFunc func(w http.ResponseWriter, r *http.Request, sc *session.Context)

// route binds one operation to its authorization requirement and handler.
// The table is static so the security posture is auditable by inspection.
type route struct {
	method      string
	pattern     string
	requirement auth.Requirement
	handler     handlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/api/v1/users", auth.Authenticated, s.listUsers},
		{http.MethodGet, "/api/v1/users/{id}", auth.Authenticated, s.getUser},
		{http.MethodPost, "/api/v1/users", auth.AuthenticatedAdmin, s.createUser},
		{http.MethodPut, "/api/v1/users/{id}", auth.AuthenticatedAdmin, s.updateUser},
		{http.MethodDelete, "/api/v1/users/{id}", auth.AuthenticatedAdmin, s.deleteUser},

		{http.MethodGet, "/api/v1/roles", auth.Authenticated, s.listRoles},
		{http.MethodPost, "/api/v1/roles", auth.AuthenticatedAdmin, s.createRole},

		{http.MethodGet, "/api/v1/approvals", auth.Authenticated, s.listApprovals},
		{http.MethodPost, "/api/v1/approvals/{id}/decision", auth.Authenticated, s.decideApproval},

		{http.MethodGet, "/api/v1/audit/{id}", auth.AuthenticatedAdmin, s.getAuditRecord},

		{http.MethodGet, "/api/v1/dashboard/stats", auth.Authenticated, s.dashboardStats},
		{http.MethodGet, "/api/v1/role-mining/suggestions", auth.AuthenticatedAdmin, s.roleMiningSuggestions},

		{http.MethodPost, "/api/v1/verification/resend", auth.Authenticated, s.resendVerification},

		{http.MethodPost, "/api/v1/delegation/assume", auth.Authenticated, s.assumeDelegation},
		{http.MethodPost, "/api/v1/delegation/drop", auth.Authenticated, s.dropDelegation},
		{http.MethodGet, "/api/v1/delegation/events", auth.AuthenticatedAdmin, s.listDelegationEvents},

		{http.MethodGet, "/api/v1/session", auth.Public, s.sessionInfo},
	}
}
