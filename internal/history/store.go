// Package history persists finished batches in a SQLite database so past
// runs can be listed with --list-history.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver for database/sql
	_ "github.com/mattn/go-sqlite3"

	"github.com/backmassage/lomux/internal/pipeline"
)

// Batch is one stored batch with its jobs in input order.
type Batch struct {
	ID         string
	Preset     string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Jobs       []Job
}

// Job is one stored job outcome.
type Job struct {
	ID          string
	Index       int
	InputPath   string
	OutputPath  string
	Status      string
	Reason      string
	ExitCode    int
	Duration    float64 // Probed source seconds.
	Elapsed     time.Duration
	OutputBytes int64
}

// Count returns how many jobs ended with status.
func (b Batch) Count(status string) int {
	n := 0
	for _, j := range b.Jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}

// Store manages batch history in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		preset TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		job_index INTEGER NOT NULL,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		exit_code INTEGER DEFAULT 0,
		source_duration REAL,
		elapsed_ms INTEGER,
		output_size INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_batches_started_at ON batches(started_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_batch_id ON jobs(batch_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Record stores a finished batch and all of its outcomes in one
// transaction.
func (s *Store) Record(ctx context.Context, res pipeline.BatchResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, preset, output_dir, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, res.ID, res.Preset.String(), res.OutputDir, res.Started.UTC(), res.Finished.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jobs (
			id, batch_id, job_index, input_path, output_path, status,
			reason, exit_code, source_duration, elapsed_ms, output_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare job insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range res.Outcomes {
		_, err = stmt.ExecContext(ctx,
			o.Job.ID, res.ID, o.Job.Index, o.Job.InputPath, o.Job.OutputPath,
			string(o.Status), o.Reason, o.ExitCode, o.Job.Duration,
			o.Elapsed.Milliseconds(), o.OutputBytes)
		if err != nil {
			return fmt.Errorf("failed to insert job %d: %w", o.Job.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Recent returns the newest limit batches, newest first, with their jobs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, preset, output_dir, started_at, finished_at
		FROM batches ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Preset, &b.OutputDir, &b.StartedAt, &b.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}

	for i := range batches {
		jobs, err := s.jobs(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Jobs = jobs
	}
	return batches, nil
}

// Get returns one batch by ID. A prefix of at least 8 characters is
// accepted, matching the short IDs printed by the CLI.
func (s *Store) Get(ctx context.Context, id string) (*Batch, error) {
	var b Batch
	pattern := likeEscaper.Replace(id) + "%"
	err := s.db.QueryRowContext(ctx, `
		SELECT id, preset, output_dir, started_at, finished_at
		FROM batches WHERE id = ? OR (length(?) >= 8 AND id LIKE ? ESCAPE '\')
		ORDER BY started_at DESC LIMIT 1
	`, id, id, pattern).Scan(&b.ID, &b.Preset, &b.OutputDir, &b.StartedAt, &b.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan batch row: %w", err)
	}
	if b.Jobs, err = s.jobs(ctx, b.ID); err != nil {
		return nil, err
	}
	return &b, nil
}

// likeEscaper makes a user-supplied prefix match literally in LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ErrNotFound is returned by Get for an unknown batch.
var ErrNotFound = errors.New("not found")

func (s *Store) jobs(ctx context.Context, batchID string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_index, input_path, output_path, status,
			COALESCE(reason, ''), COALESCE(exit_code, 0),
			COALESCE(source_duration, 0), COALESCE(elapsed_ms, 0),
			COALESCE(output_size, 0)
		FROM jobs WHERE batch_id = ? ORDER BY job_index ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var elapsedMS int64
		if err := rows.Scan(&j.ID, &j.Index, &j.InputPath, &j.OutputPath, &j.Status,
			&j.Reason, &j.ExitCode, &j.Duration, &elapsedMS, &j.OutputBytes); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		j.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}
