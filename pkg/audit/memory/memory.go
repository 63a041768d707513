// Package memory provides an in-memory audit recorder for testing and
// lightweight deployments. Events are kept in a bounded ring and lost when
// the process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/vestibule-io/vestibule/pkg/audit"
)

// Recorder is an in-memory audit.Recorder with bounded capacity.
type Recorder struct {
	mu      sync.RWMutex
	events  []audit.Event
	maxSize int
}

// Ensure Recorder implements audit.Recorder at compile time.
var _ audit.Recorder = (*Recorder)(nil)

// New creates an in-memory recorder keeping at most maxSize events.
// maxSize <= 0 means unlimited.
func New(maxSize int) *Recorder {
	return &Recorder{maxSize: maxSize}
}

// Record appends an event, evicting the oldest when at capacity.
func (r *Recorder) Record(_ context.Context, ev audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
	if r.maxSize > 0 && len(r.events) > r.maxSize {
		r.events = r.events[len(r.events)-r.maxSize:]
	}
	return nil
}

// List returns the most recent events for a tenant, newest first.
func (r *Recorder) List(_ context.Context, tenantID string, limit int) ([]audit.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []audit.Event
	for i := len(r.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.events[i].TenantID == tenantID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}
