// Package postgres provides a PostgreSQL-backed audit recorder.
// It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vestibule-io/vestibule/pkg/audit"
)

// Recorder is a PostgreSQL-backed audit.Recorder.
type Recorder struct {
	pool *pgxpool.Pool
}

// Ensure Recorder implements audit.Recorder at compile time.
var _ audit.Recorder = (*Recorder)(nil)

// Config holds the PostgreSQL recorder settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrateOnStart  bool
}

// defaults fills in zero-value fields.
func (c *Config) defaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 1
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = time.Hour
	}
}

// New creates a PostgreSQL recorder. If MigrateOnStart is true, the schema
// is applied automatically.
func New(ctx context.Context, cfg Config) (*Recorder, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	r := &Recorder{pool: pool}

	if cfg.MigrateOnStart {
		if err := r.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return r, nil
}

// migrate applies the delegation_events schema.
func (r *Recorder) migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS delegation_events (
			id         TEXT PRIMARY KEY,
			tenant_id  TEXT NOT NULL,
			actor_id   TEXT NOT NULL,
			action     TEXT NOT NULL,
			grant_id   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS delegation_events_tenant_created_idx
			ON delegation_events (tenant_id, created_at DESC);
	`)
	return err
}

// Record persists one delegation event.
func (r *Recorder) Record(ctx context.Context, ev audit.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO delegation_events (id, tenant_id, actor_id, action, grant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.ID, ev.TenantID, ev.ActorID, string(ev.Action), ev.GrantID, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting delegation event: %w", err)
	}
	return nil
}

// List returns the most recent events for a tenant, newest first.
func (r *Recorder) List(ctx context.Context, tenantID string, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, actor_id, action, grant_id, created_at
		FROM delegation_events
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying delegation events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var ev audit.Event
		var action string
		if err := rows.Scan(&ev.ID, &ev.TenantID, &ev.ActorID, &action, &ev.GrantID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delegation event: %w", err)
		}
		ev.Action = audit.Action(action)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (r *Recorder) Close() {
	r.pool.Close()
}
