package session

import (
	"context"
	"slices"
)

// User describes the principal bound to a session.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Context is the per-request session state reconstructed from the session
// cookie. It is never persisted server-side.
//
// Invariant: AccessToken and TenantID are either both present or both
// absent. A context violating that is treated as unauthenticated.
type Context struct {
	AccessToken string
	TenantID    string
	User        *User
}

// Authenticated reports whether the context carries a full credential pair.
func (c *Context) Authenticated() bool {
	return c != nil && c.AccessToken != "" && c.TenantID != ""
}

// HasRole reports whether the session user carries the given role.
// A missing user means no roles, not an error.
func (c *Context) HasRole(role string) bool {
	if c == nil || c.User == nil {
		return false
	}
	return slices.Contains(c.User.Roles, role)
}

// sessionKey is a private type for the session context key.
type sessionKey struct{}

// Set stores the resolved session context in the request context.
func Set(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, sc)
}

// FromContext retrieves the resolved session context. Returns an empty,
// unauthenticated context if none is set.
func FromContext(ctx context.Context) *Context {
	if v, ok := ctx.Value(sessionKey{}).(*Context); ok && v != nil {
		return v
	}
	return &Context{}
}
