package postgres

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vestibule-io/vestibule/pkg/audit"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Recorder.
// Tests are skipped if a container runtime is not available.
func setupTestDB(t *testing.T) *Recorder {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	// Verify podman is running.
	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("vestibule_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	rec, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating recorder: %v", err)
	}

	t.Cleanup(func() {
		rec.Close()
	})

	return rec
}

func makeEvent(tenantID string, action audit.Action, at time.Time) audit.Event {
	return audit.Event{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ActorID:   "user-1",
		Action:    action,
		GrantID:   "grant-1",
		CreatedAt: at,
	}
}

func TestPostgres_RecordAndList(t *testing.T) {
	rec := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	first := makeEvent("org-1", audit.ActionAssume, base)
	second := makeEvent("org-1", audit.ActionDrop, base.Add(time.Second))

	if err := rec.Record(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := rec.Record(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	events, err := rec.List(ctx, "org-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].ID != second.ID {
		t.Errorf("first listed event = %s, want %s", events[0].ID, second.ID)
	}
	if events[0].Action != audit.ActionDrop {
		t.Errorf("action = %s, want drop", events[0].Action)
	}
	if !events[0].CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("created_at = %v, want %v", events[0].CreatedAt, second.CreatedAt)
	}
}

func TestPostgres_ListScopedByTenant(t *testing.T) {
	rec := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	ours := makeEvent("org-1", audit.ActionAssume, now)
	theirs := makeEvent("org-2", audit.ActionAssume, now)

	if err := rec.Record(ctx, ours); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.Record(ctx, theirs); err != nil {
		t.Fatalf("record: %v", err)
	}

	events, err := rec.List(ctx, "org-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].TenantID != "org-1" {
		t.Errorf("tenant = %s, want org-1", events[0].TenantID)
	}
}

func TestPostgres_ListLimit(t *testing.T) {
	rec := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		ev := makeEvent("org-1", audit.ActionAssume, base.Add(time.Duration(i)*time.Second))
		if err := rec.Record(ctx, ev); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	events, err := rec.List(ctx, "org-1", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
}
