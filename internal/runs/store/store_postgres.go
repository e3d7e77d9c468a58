package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bizverify/internal/runs/models"
	id "bizverify/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS dedup_runs (
	run_id            UUID PRIMARY KEY,
	source            TEXT NOT NULL,
	started_at        TIMESTAMPTZ NOT NULL,
	duration_ms       BIGINT NOT NULL,
	cache_hit         BOOLEAN NOT NULL,
	status            TEXT NOT NULL,
	error             TEXT NOT NULL DEFAULT '',
	total             INTEGER NOT NULL,
	kept_raw          INTEGER NOT NULL,
	kept_strict       INTEGER NOT NULL,
	duplicates_raw    INTEGER NOT NULL,
	duplicates_strict INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS dedup_runs_started_at_idx ON dedup_runs (started_at DESC);
`

// PostgresStore persists run history in the dedup_runs table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL-backed run store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the dedup_runs table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create dedup_runs schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, run models.RunSummary) error {
	query := `
		INSERT INTO dedup_runs (
			run_id, source, started_at, duration_ms, cache_hit, status, error,
			total, kept_raw, kept_strict, duplicates_raw, duplicates_strict
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		run.RunID.String(),
		run.Source,
		run.StartedAt,
		run.Duration.Milliseconds(),
		run.CacheHit,
		string(run.Status),
		run.Error,
		run.Total,
		run.KeptRaw,
		run.KeptStrict,
		run.DuplicatesRaw,
		run.DuplicatesStrict,
	)
	if err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, most recent first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.RunSummary, error) {
	query := `
		SELECT run_id::text, source, started_at, duration_ms, cache_hit, status, error,
			total, kept_raw, kept_strict, duplicates_raw, duplicates_strict
		FROM dedup_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list run summaries: %w", err)
	}
	defer rows.Close()

	runs := make([]models.RunSummary, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run summaries: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (models.RunSummary, error) {
	var (
		run        models.RunSummary
		runID      string
		durationMS int64
		status     string
	)
	err := rows.Scan(
		&runID,
		&run.Source,
		&run.StartedAt,
		&durationMS,
		&run.CacheHit,
		&status,
		&run.Error,
		&run.Total,
		&run.KeptRaw,
		&run.KeptStrict,
		&run.DuplicatesRaw,
		&run.DuplicatesStrict,
	)
	if err != nil {
		return models.RunSummary{}, err
	}
	run.RunID, err = id.ParseRunID(runID)
	if err != nil {
		return models.RunSummary{}, fmt.Errorf("parse run id: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Status = models.Status(status)
	return run, nil
}
