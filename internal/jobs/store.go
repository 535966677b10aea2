// Package jobs persists the history of generation runs in SQLite. The store
// is the daemon's source of truth for status reporting; the pipeline writes
// transitions as it moves a run through its stages.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chalkboard/internal/config"
)

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the jobs database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.DataDir, "jobs.db"))
}

// OpenPath opens the store at an explicit database path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// Create inserts a new pending job for a request.
func (s *Store) Create(ctx context.Context, requestID, topic, slug string) (*Job, error) {
	now := time.Now()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (request_id, topic, slug, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		requestID, topic, slug, string(StatusPending), timestamp(now), timestamp(now))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("job id: %w", err)
	}
	return &Job{
		ID:        id,
		RequestID: requestID,
		Topic:     topic,
		Slug:      slug,
		Status:    StatusPending,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// SetStatus records a stage transition for a job.
func (s *Store) SetStatus(ctx context.Context, requestID string, status Status) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	res, err := s.execWithRetry(ctx,
		"UPDATE jobs SET status = ?, updated_at = ? WHERE request_id = ?",
		string(status), timestamp(time.Now()), requestID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireRow(res)
}

// SetSync records the synchronization outcome for a job.
func (s *Store) SetSync(ctx context.Context, requestID string, speedFactor float64, stretchApplied bool) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE jobs SET speed_factor = ?, stretch_applied = ?, updated_at = ? WHERE request_id = ?",
		speedFactor, boolToInt(stretchApplied), timestamp(time.Now()), requestID)
	if err != nil {
		return fmt.Errorf("update sync: %w", err)
	}
	return requireRow(res)
}

// SetFallbackUsed flags that at least one recoverable stage fell back to a
// deterministic default during the run.
func (s *Store) SetFallbackUsed(ctx context.Context, requestID string) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE jobs SET fallback_used = 1, updated_at = ? WHERE request_id = ?",
		timestamp(time.Now()), requestID)
	if err != nil {
		return fmt.Errorf("update fallback flag: %w", err)
	}
	return requireRow(res)
}

// MarkCompleted finalizes a successful run with its publish identifiers.
func (s *Store) MarkCompleted(ctx context.Context, requestID, publicID, videoURL string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, public_id = ?, video_url = ?, error_message = '', updated_at = ?
		 WHERE request_id = ?`,
		string(StatusCompleted), publicID, videoURL, timestamp(time.Now()), requestID)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return requireRow(res)
}

// MarkFailed finalizes a failed run with its error message.
func (s *Store) MarkFailed(ctx context.Context, requestID, message string) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE request_id = ?",
		string(StatusFailed), message, timestamp(time.Now()), requestID)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const jobColumns = `id, request_id, topic, slug, status, speed_factor,
	stretch_applied, fallback_used, public_id, video_url, error_message,
	created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var (
		job                        Job
		status                     string
		stretch, fallback          int
		createdAtStr, updatedAtStr string
	)
	err := row.Scan(&job.ID, &job.RequestID, &job.Topic, &job.Slug, &status,
		&job.SpeedFactor, &stretch, &fallback, &job.PublicID, &job.VideoURL,
		&job.ErrorMessage, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}
	job.Status = Status(status)
	job.StretchApplied = stretch != 0
	job.FallbackUsed = fallback != 0
	job.CreatedAt = parseTimestamp(createdAtStr)
	job.UpdatedAt = parseTimestamp(updatedAtStr)
	return &job, nil
}

// Get returns the job for a request ID.
func (s *Store) Get(ctx context.Context, requestID string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE request_id = ?", requestID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns the most recent jobs, newest first. A zero limit returns all
// jobs; a non-empty status filters by lifecycle state.
func (s *Store) List(ctx context.Context, status Status, limit int) ([]*Job, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + jobColumns + " FROM jobs"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// Summary returns aggregated run counts by lifecycle state.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return HealthSummary{}, fmt.Errorf("summarize jobs: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan summary: %w", err)
		}
		summary.Total += count
		switch parsed := Status(status); {
		case parsed == StatusPending:
			summary.Pending += count
		case parsed == StatusCompleted:
			summary.Completed += count
		case parsed == StatusFailed:
			summary.Failed += count
		case parsed.IsProcessing():
			summary.Processing += count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

// CheckHealth runs diagnostics against the database file and schema.
func (s *Store) CheckHealth(ctx context.Context) DatabaseHealth {
	ctx = ensureContext(ctx)
	health := DatabaseHealth{DBPath: s.path}

	if _, err := os.Stat(s.path); err != nil {
		health.Error = fmt.Sprintf("database file: %v", err)
		return health
	}
	health.DatabaseExists = true

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		health.Error = fmt.Sprintf("schema version: %v", err)
		return health
	}
	health.DatabaseReadable = true
	health.SchemaVersion = fmt.Sprintf("%d", version)

	var tableExists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='jobs'",
	).Scan(&tableExists); err != nil {
		health.Error = fmt.Sprintf("jobs table: %v", err)
		return health
	}
	health.TableExists = tableExists > 0

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = fmt.Sprintf("integrity check: %v", err)
		return health
	}
	health.IntegrityCheck = integrity == "ok"

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM jobs").Scan(&health.TotalJobs); err != nil {
		health.Error = fmt.Sprintf("count jobs: %v", err)
	}
	return health
}
