// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dispatch-workers/internal/common/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Schema is the DDL the allocation store and the audit sink expect.
// The legacy assigned_to columns are maintained for single-assignee readers.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		skills       TEXT[] NOT NULL DEFAULT '{}',
		latitude     DOUBLE PRECISION,
		longitude    DOUBLE PRECISION,
		available    BOOLEAN NOT NULL DEFAULT TRUE,
		workload     DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id                 TEXT PRIMARY KEY,
		title              TEXT NOT NULL DEFAULT '',
		latitude           DOUBLE PRECISION,
		longitude          DOUBLE PRECISION,
		job_type           TEXT NOT NULL DEFAULT '',
		building_type      TEXT NOT NULL DEFAULT '',
		tasks              JSONB NOT NULL DEFAULT '[]',
		assigned_employees JSONB NOT NULL DEFAULT '[]',
		assigned_to        TEXT,
		assigned_to_name   TEXT,
		status             TEXT NOT NULL DEFAULT 'Pending',
		progress           INTEGER NOT NULL DEFAULT 0,
		client_rating      DOUBLE PRECISION,
		completed_at       TIMESTAMPTZ,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version            BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_assigned_employees_idx ON jobs USING GIN (assigned_employees jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS jobs_completed_idx ON jobs (status, completed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id            BIGSERIAL PRIMARY KEY,
		event_type    TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id   TEXT NOT NULL,
		details       JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates missing tables and indexes. It is safe to run on
// every start.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for i, stmt := range Schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
