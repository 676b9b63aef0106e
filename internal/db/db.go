// Package db provides PostgreSQL storage for pipeline run history.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schedule_runs (
	id            UUID PRIMARY KEY,
	source_key    TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	warnings      JSONB NOT NULL DEFAULT '[]',
	fetched_at    TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_schedule_runs_source_created
	ON schedule_runs (source_key, created_at DESC);
`

// EnsureSchema creates the run-history table when it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun inserts a run record, assigning an ID when the caller left it
// unset, and returns the stored ID.
func (db *DB) SaveRun(ctx context.Context, run *Run) (uuid.UUID, error) {
	id := run.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO schedule_runs (id, source_key, row_count, warning_count, warnings, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, run.SourceKey, run.RowCount, run.WarningCount, warnings, run.FetchedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// ListRuns retrieves the most recent runs for a source, newest first.
func (db *DB) ListRuns(ctx context.Context, sourceKey string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, source_key, row_count, warning_count, warnings, fetched_at, created_at
		 FROM schedule_runs WHERE source_key = $1
		 ORDER BY created_at DESC LIMIT $2`,
		sourceKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SourceKey, &run.RowCount, &run.WarningCount, &run.Warnings, &run.FetchedAt, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// LatestRun retrieves the newest run for a source, or nil when none exist.
func (db *DB) LatestRun(ctx context.Context, sourceKey string) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_key, row_count, warning_count, warnings, fetched_at, created_at
		 FROM schedule_runs WHERE source_key = $1
		 ORDER BY created_at DESC LIMIT 1`,
		sourceKey,
	).Scan(&run.ID, &run.SourceKey, &run.RowCount, &run.WarningCount, &run.Warnings, &run.FetchedAt, &run.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}
