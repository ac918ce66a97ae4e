package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BeginRun stores a new run in the running state. An empty run.ID is filled
// with a random UUID. The stored run is returned.
func (j *Journal) BeginRun(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = j.now()
	}
	run.Status = StatusRunning
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, status, folder, base_url, remote_user, project_label)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), run.Status, run.Folder, run.BaseURL, run.User, run.ProjectLabel,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Record appends a created entity to its run.
func (j *Journal) Record(ctx context.Context, entity Entity) error {
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = j.now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO entities (run_id, kind, label, remote_id, parent_id, subject_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entity.RunID, entity.Kind, entity.Label, entity.RemoteID,
		nullString(entity.ParentID), nullString(entity.SubjectKey), formatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert %s entity: %w", entity.Kind, err)
	}
	if entity.Kind == "project" {
		if _, err := j.db.ExecContext(ctx, "UPDATE runs SET project_id = ? WHERE id = ?", entity.RemoteID, entity.RunID); err != nil {
			return fmt.Errorf("update run project: %w", err)
		}
	}
	return nil
}

// FinishRun marks the run succeeded, or failed with runErr's message.
func (j *Journal) FinishRun(ctx context.Context, runID string, runErr error) error {
	status := StatusSucceeded
	var message sql.NullString
	if runErr != nil {
		status = StatusFailed
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := j.db.ExecContext(ctx,
		"UPDATE runs SET status = ?, finished_at = ?, error = ? WHERE id = ?",
		status, formatTime(j.now()), message, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// GetRun returns a single run.
func (j *Journal) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx, runColumns+" WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("unknown run %q", runID)
	}
	return run, err
}

// ListRuns returns the most recent runs first. A non-positive limit returns all.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := runColumns + " ORDER BY started_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entities returns the entities a run created, in creation order.
func (j *Journal) Entities(ctx context.Context, runID string) ([]Entity, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, kind, label, remote_id, parent_id, subject_key, created_at
		FROM entities WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var (
			e                   Entity
			parent, subject, at sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.Kind, &e.Label, &e.RemoteID, &parent, &subject, &at); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.ParentID = parent.String
		e.SubjectKey = subject.String
		e.CreatedAt = parseTime(at)
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

const runColumns = `SELECT id, started_at, finished_at, status, folder, base_url, remote_user,
	project_label, project_id, error FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                           Run
		started, finished, project, e sql.NullString
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.Status, &run.Folder, &run.BaseURL, &run.User,
		&run.ProjectLabel, &project, &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.ProjectID = project.String
	run.Error = e.String
	return run, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
