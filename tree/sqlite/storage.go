package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/tree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Storage persists project tree records in a single SQLite table.
type Storage struct {
	mu sync.Mutex
	db *sql.DB
}

// New creates a new SQLite storage.
// The path can be ":memory:" for an in-memory database or a file path.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// An in-memory database only lives as long as its connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Open creates the storage at path and loads it into a tree.
func Open(ctx context.Context, path string) (*tree.Persistent, error) {
	s, err := New(path)
	if err != nil {
		return nil, err
	}

	t, err := tree.Open(ctx, s)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	return t, nil
}

func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS project_items (
		id INTEGER PRIMARY KEY,
		parent_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_project_items_parent ON project_items(parent_id);
	CREATE INDEX IF NOT EXISTS idx_project_items_position ON project_items(position);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (*Storage) Name() string {
	return "sqlite"
}

func (s *Storage) Load(ctx context.Context) ([]tree.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, parent_id, name, kind, position FROM project_items ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []tree.Record
	for rows.Next() {
		var record tree.Record
		var kind string
		if err := rows.Scan(&record.ID, &record.ParentID, &record.Name, &kind, &record.Position); err != nil {
			return nil, err
		}

		k, ok := data.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("item %d has unknown kind '%s'", record.ID, kind)
		}
		record.Kind = k

		records = append(records, record)
	}

	return records, rows.Err()
}

func (s *Storage) Insert(ctx context.Context, record tree.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO project_items (id, parent_id, name, kind, position) VALUES (?, ?, ?, ?, ?)",
		record.ID, record.ParentID, record.Name, record.Kind.String(), record.Position)
	return err
}

func (s *Storage) Move(ctx context.Context, id, parentID, position int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"UPDATE project_items SET parent_id = ?, position = ? WHERE id = ?", parentID, position, id)
	if err != nil {
		return err
	}
	return expectRow(result, id)
}

func (s *Storage) Rename(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "UPDATE project_items SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	return expectRow(result, id)
}

func (s *Storage) Delete(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM project_items WHERE id = ?", id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Storage) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

func expectRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return data.NotFound("item %d", id)
	}
	return nil
}
