// Package taskstore provides the durable SQLite backing for the task status
// table, so task records survive a process restart.
package taskstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgnsrekt/educast/podcast"
)

// SQLiteStore implements podcast.TaskStore on a SQLite database file.
// Lifecycle rules are enforced inside a transaction, so two writers can never
// resurrect a terminal record or move progress backwards.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the task database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	ddl := `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    progress INTEGER NOT NULL,
    message TEXT,
    result TEXT,
    error TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);
`
	_, err := s.db.Exec(ddl)
	return err
}

// Create inserts a new task record.
func (s *SQLiteStore) Create(task podcast.Task) error {
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	result, err := encodeResult(task.Result)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks(id, status, progress, message, result, error, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Status.String(), task.Progress, task.Message,
		result, task.Err, task.CreatedAt.UTC(), task.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return podcast.ErrTaskExists
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update applies fn to the stored record inside a transaction.
func (s *SQLiteStore) Update(id string, fn func(*podcast.Task)) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stored, err := scanTask(tx.QueryRow(
		`SELECT id, status, progress, message, result, error, created_at, updated_at
		 FROM tasks WHERE id = ?`, id))
	if err != nil {
		return err
	}
	if stored.Terminal() {
		return podcast.ErrTaskFinal
	}

	next := stored.Clone()
	fn(&next)
	if next.Progress < stored.Progress {
		next.Progress = stored.Progress
	}
	next.ID = stored.ID
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now().UTC()

	result, err := encodeResult(next.Result)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`UPDATE tasks SET status = ?, progress = ?, message = ?, result = ?, error = ?, updated_at = ?
		 WHERE id = ?`,
		next.Status.String(), next.Progress, next.Message, result, next.Err,
		next.UpdatedAt, next.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return tx.Commit()
}

// Get returns a copy of the task record.
func (s *SQLiteStore) Get(id string) (podcast.Task, error) {
	task, err := scanTask(s.db.QueryRow(
		`SELECT id, status, progress, message, result, error, created_at, updated_at
		 FROM tasks WHERE id = ?`, id))
	if err != nil {
		return podcast.Task{}, err
	}
	return task, nil
}

// List returns all task records, newest first.
func (s *SQLiteStore) List() ([]podcast.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, status, progress, message, result, error, created_at, updated_at
		 FROM tasks ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var tasks []podcast.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (podcast.Task, error) {
	var (
		task      podcast.Task
		rawStatus string
		rawResult sql.NullString
	)
	err := row.Scan(&task.ID, &rawStatus, &task.Progress, &task.Message,
		&rawResult, &task.Err, &task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return podcast.Task{}, podcast.ErrTaskNotFound
	}
	if err != nil {
		return podcast.Task{}, fmt.Errorf("scan task: %w", err)
	}

	task.Status, err = podcast.ParseStatus(rawStatus)
	if err != nil {
		return podcast.Task{}, err
	}

	if rawResult.Valid && rawResult.String != "" {
		var result podcast.EpisodeResult
		if err := json.Unmarshal([]byte(rawResult.String), &result); err != nil {
			return podcast.Task{}, fmt.Errorf("decode task result: %w", err)
		}
		task.Result = &result
	}
	return task, nil
}

func encodeResult(result *podcast.EpisodeResult) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode task result: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
