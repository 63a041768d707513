package auth

import (
	"github.com/vestibule-io/vestibule/pkg/api"
	"github.com/vestibule-io/vestibule/pkg/session"
)

// AdminRole is the role marker that grants access to admin-gated operations.
const AdminRole = "tenant-admin"

// Requirement is the static per-endpoint authorization declaration.
type Requirement int

const (
	// Public operations are always allowed.
	Public Requirement = iota

	// Authenticated operations require a full credential pair
	// (access token and tenant).
	Authenticated

	// AuthenticatedAdmin operations additionally require the admin role.
	AuthenticatedAdmin
)

// String returns the requirement name for logging.
func (r Requirement) String() string {
	switch r {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case AuthenticatedAdmin:
		return "authenticated-admin"
	default:
		return "unknown"
	}
}

// Authorize decides whether the session context satisfies the requirement.
// Returns nil to allow, or an unauthorized/forbidden error to deny. It is a
// pure decision: malformed input (missing user, nil context) reads as
// "no credentials" or "no role", never as an internal error.
func Authorize(sc *session.Context, req Requirement) *api.APIError {
	switch req {
	case Public:
		return nil
	case Authenticated, AuthenticatedAdmin:
		if !sc.Authenticated() {
			return api.NewUnauthorizedError("authentication required")
		}
		if req == AuthenticatedAdmin && !sc.HasRole(AdminRole) {
			return api.NewForbiddenError("admin role required")
		}
		return nil
	default:
		// Unknown requirements fail closed.
		return api.NewForbiddenError("operation not permitted")
	}
}
