package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ActionStore = (*SQLiteStore)(nil)

// DefaultActionLimit caps ListActions when no positive limit is given.
const DefaultActionLimit = 50

const schema = `
CREATE TABLE IF NOT EXISTS actions (
	id         TEXT PRIMARY KEY,
	kind       TEXT    NOT NULL,
	success    INTEGER NOT NULL,
	status     INTEGER NOT NULL,
	message    TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at);
`

// SQLiteStore implements ActionStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// ActionStore implementation
// ---------------------------------------------------------------------------

// RecordAction inserts a new action into the database.
func (s *SQLiteStore) RecordAction(ctx context.Context, a *Action) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (id, kind, success, status, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Kind), a.Success, a.Status, a.Message, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting action: %w", err)
	}
	return nil
}

// ListActions returns the most recent actions, up to limit.
func (s *SQLiteStore) ListActions(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = DefaultActionLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, success, status, message, created_at FROM actions
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	actions := []Action{}
	for rows.Next() {
		var (
			a       Action
			kind    string
			created int64
		)
		if err := rows.Scan(&a.ID, &kind, &a.Success, &a.Status, &a.Message, &created); err != nil {
			return nil, err
		}
		a.Kind = ActionKind(kind)
		a.CreatedAt = time.UnixMilli(created).UTC()
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
