// Package audit records identity delegation events (assume/drop) for the
// governance trail. Records hold who acted and on which grant — never
// access tokens.
//
// Recording is best-effort: a recorder failure is logged by the caller and
// never fails the delegation operation itself.
package audit

import (
	"context"
	"time"
)

// Action identifies the delegation operation recorded by an event.
type Action string

const (
	ActionAssume Action = "assume"
	ActionDrop   Action = "drop"
)

// Event is one recorded delegation operation.
type Event struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	GrantID   string    `json:"grant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists delegation events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error

	// List returns the most recent events for a tenant, newest first.
	List(ctx context.Context, tenantID string, limit int) ([]Event, error)
}

// Nop is a Recorder that discards all events, for deployments without an
// audit sink configured.
type Nop struct{}

// Record discards the event.
func (Nop) Record(context.Context, Event) error { return nil }

// List returns no events.
func (Nop) List(context.Context, string, int) ([]Event, error) { return nil, nil }
