package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	local_id    TEXT PRIMARY KEY,
	context_id  TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	analysis_id TEXT NOT NULL DEFAULT '',
	task_ids    TEXT NOT NULL DEFAULT '[]',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_analysis ON sessions(analysis_id);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// SQLiteStore is a durable SessionStore backed by a single sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply session schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sessionColumns = "local_id, context_id, title, analysis_id, task_ids, created_at, updated_at"

func scanSession(row *sql.Row) (*PersistedSession, error) {
	var sess PersistedSession
	var taskIDs string
	err := row.Scan(&sess.LocalID, &sess.ContextID, &sess.Title, &sess.AnalysisID,
		&taskIDs, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if err := json.Unmarshal([]byte(taskIDs), &sess.TaskIDs); err != nil {
		return nil, fmt.Errorf("decode task ids for %s: %w", sess.LocalID, err)
	}
	return &sess, nil
}

// Get returns the session with the given local id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, localID string) (*PersistedSession, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE local_id = ?", localID)
	return scanSession(row)
}

// Put inserts or replaces a session record.
func (s *SQLiteStore) Put(ctx context.Context, sess *PersistedSession) error {
	taskIDs := sess.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}
	encoded, err := json.Marshal(taskIDs)
	if err != nil {
		return fmt.Errorf("encode task ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			context_id = excluded.context_id,
			title = excluded.title,
			analysis_id = excluded.analysis_id,
			task_ids = excluded.task_ids,
			updated_at = excluded.updated_at`,
		sess.LocalID, sess.ContextID, sess.Title, sess.AnalysisID,
		string(encoded), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put session %s: %w", sess.LocalID, err)
	}
	return nil
}

// QueryByAnalysisID returns the session linked to an analysis run.
func (s *SQLiteStore) QueryByAnalysisID(ctx context.Context, analysisID string) (*PersistedSession, error) {
	if analysisID == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE analysis_id = ? ORDER BY updated_at DESC LIMIT 1",
		analysisID)
	return scanSession(row)
}

// QueryLatestMain returns the most recently updated non-analysis session.
func (s *SQLiteStore) QueryLatestMain(ctx context.Context) (*PersistedSession, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE analysis_id = '' ORDER BY updated_at DESC LIMIT 1")
	return scanSession(row)
}
