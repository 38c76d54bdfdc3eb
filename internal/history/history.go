// Package history persists batch run outcomes so skipped URLs stay
// queryable after the PDF bytes have been handed over. Enabled only
// when a database URL is configured; the pipeline runs fine without it.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s4yuba/x-card-generator/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS batch_runs (
	id           UUID PRIMARY KEY,
	succeeded    INT NOT NULL,
	failed       INT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS batch_run_failures (
	run_id UUID NOT NULL REFERENCES batch_runs(id) ON DELETE CASCADE,
	url    TEXT NOT NULL,
	code   TEXT NOT NULL,
	reason TEXT NOT NULL
);`

type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func New(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{pool: pool, logger: logger.With("component", "history")}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Record writes one finished run and its failure rows in a single
// transaction.
func (s *Store) Record(ctx context.Context, result *models.BatchResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO batch_runs (id, succeeded, failed, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		result.RunID, result.SucceededCount(), result.FailedCount(),
		result.StartedAt, result.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range result.Failed {
		_, err = tx.Exec(ctx,
			`INSERT INTO batch_run_failures (run_id, url, code, reason)
			 VALUES ($1, $2, $3, $4)`,
			result.RunID, f.URL, f.Code, f.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert failure row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Info("batch run recorded", "run_id", result.RunID)
	return nil
}

// Run is one persisted batch run summary.
type Run struct {
	ID          string             `json:"id"`
	Succeeded   int                `json:"succeeded"`
	Failed      int                `json:"failed"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
	Failures    []models.FailedURL `json:"failures,omitempty"`
}

// GetRun loads one run with its failure rows.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	run := &Run{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, succeeded, failed, started_at, completed_at
		 FROM batch_runs WHERE id = $1`, runID).
		Scan(&run.ID, &run.Succeeded, &run.Failed, &run.StartedAt, &run.CompletedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT url, code, reason FROM batch_run_failures WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get failures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.FailedURL
		if err := rows.Scan(&f.URL, &f.Code, &f.Reason); err != nil {
			continue
		}
		run.Failures = append(run.Failures, f)
	}

	return run, nil
}
