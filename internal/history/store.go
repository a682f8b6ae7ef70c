package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"capstan/internal/config"
)

// ErrNotFound indicates the requested release does not exist.
var ErrNotFound = errors.New("release not found")

// Store manages release history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
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

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// StartRelease inserts a new running release row.
func (s *Store) StartRelease(ctx context.Context, runID, project, version, repository string) (*Release, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO releases (run_id, project, version, repository, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		project,
		version,
		repository,
		StatusRunning,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert release: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// FinishRelease records the final status of a release run.
func (s *Store) FinishRelease(ctx context.Context, release *Release) error {
	if release == nil {
		return errors.New("release required")
	}
	now := time.Now().UTC()
	release.FinishedAt = &now

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE releases
         SET status = ?, error_message = ?, webhooks_fired = ?, webhooks_total = ?, finished_at = ?
         WHERE id = ?`,
		release.Status,
		release.ErrorMessage,
		release.WebhooksFired,
		release.WebhooksTotal,
		now.Format(time.RFC3339Nano),
		release.ID,
	)
	if err != nil {
		return fmt.Errorf("finish release: %w", err)
	}
	return nil
}

// StartStep inserts a running step row for the release.
func (s *Store) StartStep(ctx context.Context, releaseID int64, name string) (*Step, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO release_steps (release_id, name, status, started_at) VALUES (?, ?, ?, ?)`,
		releaseID,
		name,
		StatusRunning,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert step: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &Step{
		ID:        id,
		ReleaseID: releaseID,
		Name:      name,
		Status:    StatusRunning,
		StartedAt: now,
	}, nil
}

// FinishStep records the outcome of a step.
func (s *Store) FinishStep(ctx context.Context, step *Step, status Status, detail, errorMessage string) error {
	if step == nil {
		return errors.New("step required")
	}
	now := time.Now().UTC()
	step.Status = status
	step.Detail = detail
	step.ErrorMessage = errorMessage
	step.FinishedAt = &now

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE release_steps SET status = ?, detail = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		detail,
		errorMessage,
		now.Format(time.RFC3339Nano),
		step.ID,
	)
	if err != nil {
		return fmt.Errorf("finish step: %w", err)
	}
	return nil
}

// GetByID fetches a release by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Release, error) {
	row := s.db.QueryRowContext(ctx, selectRelease+" WHERE id = ?", id)
	return scanRelease(row)
}

// GetByRunID fetches a release by its run identifier.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Release, error) {
	row := s.db.QueryRowContext(ctx, selectRelease+" WHERE run_id = ?", strings.TrimSpace(runID))
	return scanRelease(row)
}

// Recent returns the most recent releases, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Release, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectRelease+" ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query releases: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, *release)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate releases: %w", err)
	}
	return releases, nil
}

// StepsForRelease returns the steps of a release in execution order.
func (s *Store) StepsForRelease(ctx context.Context, releaseID int64) ([]Step, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, release_id, name, status, detail, error_message, started_at, finished_at
         FROM release_steps WHERE release_id = ? ORDER BY id ASC`,
		releaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var step Step
		var status, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&step.ID, &step.ReleaseID, &step.Name, &status, &step.Detail, &step.ErrorMessage, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Status = Status(status)
		if step.StartedAt, err = parseTimestamp(startedAt); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			parsed, err := parseTimestamp(finishedAt.String)
			if err != nil {
				return nil, err
			}
			step.FinishedAt = &parsed
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

const selectRelease = `SELECT id, run_id, project, version, repository, status, error_message,
    webhooks_fired, webhooks_total, started_at, finished_at FROM releases`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*Release, error) {
	var release Release
	var status, startedAt string
	var finishedAt sql.NullString
	err := row.Scan(
		&release.ID,
		&release.RunID,
		&release.Project,
		&release.Version,
		&release.Repository,
		&status,
		&release.ErrorMessage,
		&release.WebhooksFired,
		&release.WebhooksTotal,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan release: %w", err)
	}
	release.Status = Status(status)
	if release.StartedAt, err = parseTimestamp(startedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		parsed, err := parseTimestamp(finishedAt.String)
		if err != nil {
			return nil, err
		}
		release.FinishedAt = &parsed
	}
	return &release, nil
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed.UTC(), nil
}
