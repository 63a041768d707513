package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vestibule-io/vestibule/pkg/audit"
)

func TestRecordAndList(t *testing.T) {
	r := New(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := audit.Event{
			ID:        fmt.Sprintf("ev-%d", i),
			TenantID:  "org-1",
			ActorID:   "u1",
			Action:    audit.ActionAssume,
			GrantID:   "grant-1",
			CreatedAt: time.Now(),
		}
		if err := r.Record(ctx, ev); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	events, err := r.List(ctx, "org-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	// Newest first.
	if events[0].ID != "ev-2" {
		t.Errorf("first event = %s, want ev-2", events[0].ID)
	}
}

func TestList_ScopedByTenant(t *testing.T) {
	r := New(0)
	ctx := context.Background()

	r.Record(ctx, audit.Event{ID: "a", TenantID: "org-1", Action: audit.ActionAssume})
	r.Record(ctx, audit.Event{ID: "b", TenantID: "org-2", Action: audit.ActionDrop})

	events, err := r.List(ctx, "org-2", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].ID != "b" {
		t.Errorf("events = %v, want only org-2's event", events)
	}
}

func TestList_Limit(t *testing.T) {
	r := New(0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r.Record(ctx, audit.Event{ID: fmt.Sprintf("ev-%d", i), TenantID: "org-1"})
	}

	events, _ := r.List(ctx, "org-1", 2)
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}

func TestRecord_EvictsOldestAtCapacity(t *testing.T) {
	r := New(2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r.Record(ctx, audit.Event{ID: fmt.Sprintf("ev-%d", i), TenantID: "org-1"})
	}

	events, _ := r.List(ctx, "org-1", 10)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 after eviction", len(events))
	}
	for _, ev := range events {
		if ev.ID == "ev-0" {
			t.Error("oldest event should have been evicted")
		}
	}
}
