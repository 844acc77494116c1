// Package storage keeps a local SQLite history of fetched networks and
// exchanges node lists as JSONL.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path. The parent
// directory is created if needed.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		PRAGMA foreign_keys = ON;

		-- One row per accepted refresh
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			viewer_id TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			node_count INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_viewer ON snapshots(viewer_id, id);

		-- Nodes in coordinate order
		CREATE TABLE IF NOT EXISTS snapshot_nodes (
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			name TEXT NOT NULL,
			email TEXT,
			instagram TEXT,
			discord TEXT,
			degraded INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (snapshot_id, idx)
		);
	`

	_, err := db.Exec(schema)
	return err
}
