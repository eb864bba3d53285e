package sqlstore

import (
	"context"
	"database/sql"

	"github.com/gnames/gntaxon/pkg/graph"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`PRAGMA journal_mode = WAL`,
	`PRAGMA busy_timeout = 5000`,
	`CREATE TABLE IF NOT EXISTS nodes (
  id INTEGER PRIMARY KEY AUTOINCREMENT
)`,
	`CREATE TABLE IF NOT EXISTS node_properties (
  node_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  value TEXT NOT NULL,
  PRIMARY KEY (node_id, name)
)`,
	`CREATE TABLE IF NOT EXISTS index_entries (
  field TEXT NOT NULL,
  value TEXT NOT NULL,
  node_id INTEGER NOT NULL,
  PRIMARY KEY (field, value, node_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_index_entries_field_node
  ON index_entries (field, node_id)`,
	`CREATE TABLE IF NOT EXISTS edges (
  from_id INTEGER NOT NULL,
  kind TEXT NOT NULL,
  to_id INTEGER NOT NULL,
  PRIMARY KEY (from_id, kind, to_id)
)`,
}

// OpenSQLite opens or creates a SQLite database file. Use ":memory:"
// for a throw-away database.
//
// The database has a single connection, so a View started during an
// Update waits for the Update to finish.
func OpenSQLite(ctx context.Context, path string) (graph.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ConnectionError(SQLite.Name, path, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ConnectionError(SQLite.Name, path, err)
	}
	for _, q := range sqliteSchema {
		if _, err = db.ExecContext(ctx, q); err != nil {
			db.Close()
			return nil, SchemaError(SQLite.Name, err)
		}
	}
	return New(db, SQLite), nil
}
