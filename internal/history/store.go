// Package history keeps a persistent record of finished downloads in SQLite
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ytget/ytfetch/internal/model"
)

// Store constants
const (
	DriverName    = "sqlite"
	DefaultFile   = "history.db"
	DefaultRecent = 50
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id TEXT PRIMARY KEY,
	video_id TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	quality TEXT NOT NULL DEFAULT '',
	directory TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	progress REAL NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_downloads_finished_at ON downloads(finished_at);
`

// Store persists finished tasks
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history dir: %w", err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// A single connection serializes writers without SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished task. Recording the same id again overwrites it.
func (s *Store) Record(ctx context.Context, task model.Task) error {
	if !task.Status.IsFinished() {
		return fmt.Errorf("task %s is not finished: %s", task.ID, task.Status)
	}
	finishedAt := task.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	query := `INSERT OR REPLACE INTO downloads
		(id, video_id, url, title, quality, directory, status, progress, error, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.VideoID, task.URL, task.Title, task.Quality.String(), task.Directory,
		string(task.Status), task.Progress, task.Err,
		task.CreatedAt.UnixNano(), finishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record task %s: %w", task.ID, err)
	}
	return nil
}

// Recent returns up to limit finished tasks, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = DefaultRecent
	}

	query := `SELECT id, video_id, url, title, quality, directory, status, progress, error, created_at, finished_at
		FROM downloads ORDER BY finished_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			task              model.Task
			quality, status   string
			created, finished int64
		)
		if err := rows.Scan(&task.ID, &task.VideoID, &task.URL, &task.Title, &quality, &task.Directory,
			&status, &task.Progress, &task.Err, &created, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		task.Quality = model.ParseQuality(quality)
		task.Status = model.TaskStatus(status)
		task.CreatedAt = time.Unix(0, created)
		task.FinishedAt = time.Unix(0, finished)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return tasks, nil
}

// Clear deletes every recorded download
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM downloads`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
