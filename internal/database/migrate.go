package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of *pgxpool.Pool used to apply the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		urls TEXT[] NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_status_updated_at_idx ON jobs (status, updated_at)`,
	`CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at)`,
	`CREATE TABLE IF NOT EXISTS job_results (
		job_id TEXT NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		position INTEGER NOT NULL,
		emails TEXT[] NOT NULL DEFAULT '{}',
		facebook TEXT[] NOT NULL DEFAULT '{}',
		instagram TEXT[] NOT NULL DEFAULT '{}',
		tiktok TEXT[] NOT NULL DEFAULT '{}',
		screenshot_ref TEXT,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (job_id, url)
	)`,
}

// Migrate creates the job tables when they do not exist yet.
func Migrate(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
