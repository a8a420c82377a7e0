// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package store persists tasks, workflows, and run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tadafuq/workflow-builder/pkg/types"
)

const dbFile = "workflow-builder.db"

// ErrNotFound is returned when a task or workflow does not exist.
var ErrNotFound = fmt.Errorf("not found")

// Store manages the workflow-builder SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dataDir/workflow-builder.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			input TEXT NOT NULL,
			output TEXT,
			error TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			completed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE TABLE IF NOT EXISTS workflows (
			name TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS workflow_tasks (
			workflow TEXT NOT NULL REFERENCES workflows(name) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			task_id TEXT NOT NULL REFERENCES tasks(id),
			PRIMARY KEY (workflow, position)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			completed INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NextTaskID returns an identifier of the form task_<n>_<HHMMSS>, where <n>
// is the current number of stored tasks.
func (s *Store) NextTaskID(ctx context.Context, now time.Time) (string, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM tasks`).Scan(&count); err != nil {
		return "", fmt.Errorf("counting tasks: %w", err)
	}
	return fmt.Sprintf("task_%d_%s", count, now.Format("150405")), nil
}

// CreateTask inserts a new task record.
func (s *Store) CreateTask(ctx context.Context, t *types.Task) error {
	input, err := json.Marshal(t.Input)
	if err != nil {
		return fmt.Errorf("encoding task input: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, type, title, description, input, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Type), t.Title, t.Description, string(input),
		string(t.Status), t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", t.ID, err)
	}
	return nil
}

// GetTask fetches one task by ID. Returns ErrNotFound when absent.
func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, title, description, input, output, error, status, created_at, completed_at
		 FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// ListTasks returns all tasks in creation order. When status is non-empty
// only tasks with that status are returned.
func (s *Store) ListTasks(ctx context.Context, status types.TaskStatus) ([]types.Task, error) {
	query := `SELECT id, type, title, description, input, output, error, status, created_at, completed_at
		 FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*types.Task, error) {
	var t types.Task
	var input string
	var output, errMsg, completedAt sql.NullString
	var createdAt string

	err := sc.Scan(&t.ID, &t.Type, &t.Title, &t.Description, &input,
		&output, &errMsg, &t.Status, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(input), &t.Input); err != nil {
		return nil, fmt.Errorf("decoding input for task %s: %w", t.ID, err)
	}
	if output.Valid && output.String != "" {
		t.Output = json.RawMessage(output.String)
	}
	t.Error = errMsg.String

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		t.CreatedAt = ts
	}
	if completedAt.Valid && completedAt.String != "" {
		if ts, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			t.CompletedAt = &ts
		}
	}
	return &t, nil
}

// MarkRunning transitions a task to running and clears any previous outcome.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.updateStatus(ctx, id,
		`UPDATE tasks SET status = ?, output = NULL, error = '', completed_at = NULL WHERE id = ?`,
		types.StatusRunning)
}

// MarkCompleted stores the output and stamps completion.
func (s *Store) MarkCompleted(ctx context.Context, id string, output json.RawMessage, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, output = ?, completed_at = ? WHERE id = ?`,
		string(types.StatusCompleted), string(output), at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return requireRow(res, id)
}

// MarkFailed records the failure message.
func (s *Store) MarkFailed(ctx context.Context, id, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, error = ? WHERE id = ?`,
		string(types.StatusFailed), msg, id)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return requireRow(res, id)
}

func (s *Store) updateStatus(ctx context.Context, id, query string, status types.TaskStatus) error {
	res, err := s.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateWorkflow registers a workflow over existing task IDs. The membership
// insert is transactional, so a bad task ID leaves no partial workflow.
func (s *Store) CreateWorkflow(ctx context.Context, name string, taskIDs []string, now time.Time) error {
	if name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if len(taskIDs) == 0 {
		return fmt.Errorf("workflow %q has no tasks", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workflows (name, created_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET created_at = excluded.created_at`,
		name, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting workflow %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_tasks WHERE workflow = ?`, name); err != nil {
		return fmt.Errorf("clearing workflow %q members: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO workflow_tasks (workflow, position, task_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range taskIDs {
		if _, err := stmt.ExecContext(ctx, name, i, id); err != nil {
			return fmt.Errorf("adding task %s to workflow %q: %w", id, name, err)
		}
	}

	return tx.Commit()
}

// GetWorkflow fetches a workflow and its ordered task IDs.
func (s *Store) GetWorkflow(ctx context.Context, name string) (*types.Workflow, error) {
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM workflows WHERE name = ?`, name).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching workflow %q: %w", name, err)
	}

	w := &types.Workflow{Name: name}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		w.CreatedAt = ts
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id FROM workflow_tasks WHERE workflow = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("fetching workflow %q members: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		w.TaskIDs = append(w.TaskIDs, id)
	}
	return w, rows.Err()
}

// ListWorkflows returns all workflows with their task IDs.
func (s *Store) ListWorkflows(ctx context.Context) ([]types.Workflow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM workflows ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing workflows: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var workflows []types.Workflow
	for _, name := range names {
		w, err := s.GetWorkflow(ctx, name)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *w)
	}
	return workflows, nil
}

// RecordRun appends one entry to the run history. kind is "task" or
// "workflow"; name is the task ID or workflow name.
func (s *Store) RecordRun(ctx context.Context, kind, name string, started, finished time.Time, completed, failed int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (kind, name, started_at, finished_at, completed, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		kind, name,
		started.UTC().Format(time.RFC3339Nano),
		finished.UTC().Format(time.RFC3339Nano),
		completed, failed)
	if err != nil {
		return fmt.Errorf("recording run for %s %q: %w", kind, name, err)
	}
	return nil
}
