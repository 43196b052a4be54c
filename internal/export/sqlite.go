// Package export stores the flattened classification tree in SQLite.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ecocap/internal/logging"
	"ecocap/internal/taxonomy"

	_ "modernc.org/sqlite"
)

// Run identifies one export.
type Run struct {
	ID        string
	Workbook  string
	CreatedAt time.Time
	EdgeCount int
}

// EdgeRecord is one stored edge. ParentID is NULL at level 0 and holds the
// placeholder when the parent could not be resolved.
type EdgeRecord struct {
	Field    string
	FieldID  int
	ParentID sql.NullString
	Level    int
	Position int
}

// Store is an edge database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path with WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		logging.ExportDebug("Failed to set busy_timeout: %v", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logging.ExportDebug("Opened edge database %s", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS category_edges (
	position INTEGER PRIMARY KEY,
	field TEXT NOT NULL,
	field_id INTEGER NOT NULL,
	parent_id,
	level INTEGER NOT NULL,
	UNIQUE(field, field_id)
);

CREATE INDEX IF NOT EXISTS idx_category_edges_parent ON category_edges(parent_id);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	workbook TEXT NOT NULL,
	created_at TEXT NOT NULL,
	edge_count INTEGER NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// ReplaceEdges swaps the stored edge list for edges and records the run, in
// one transaction.
func (s *Store) ReplaceEdges(ctx context.Context, run Run, edges []taxonomy.Edge) error {
	timer := logging.StartTimer(logging.CategoryExport, "ReplaceEdges")
	defer timer.Stop()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM category_edges"); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO category_edges (position, field, field_id, parent_id, level) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range edges {
		if _, err := stmt.ExecContext(ctx, i, e.Label, e.ID, e.Parent.Cell(), e.Level); err != nil {
			return fmt.Errorf("failed to insert edge %s/%d: %w", e.Label, e.ID, err)
		}
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, workbook, created_at, edge_count) VALUES (?, ?, ?, ?)",
		run.ID, run.Workbook, run.CreatedAt.UTC().Format(time.RFC3339), len(edges)); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.Export("Exported %d edges to %s (run %s)", len(edges), s.path, run.ID)
	return nil
}

// Edges returns the stored edges in export order.
func (s *Store) Edges(ctx context.Context) ([]EdgeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT field, field_id, parent_id, level, position FROM category_edges ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EdgeRecord
	for rows.Next() {
		var r EdgeRecord
		if err := rows.Scan(&r.Field, &r.FieldID, &r.ParentID, &r.Level, &r.Position); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs returns the recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, workbook, created_at, edge_count FROM runs ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Workbook, &created, &r.EdgeCount); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", created, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
