package history

import (
	"database/sql"
	"fmt"
)

const schemaVersion = "2"

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    INTEGER NOT NULL, -- unix nanoseconds
	duration_ms   INTEGER NOT NULL,
	src_dir       TEXT NOT NULL,
	spec_dir      TEXT NOT NULL,
	total         INTEGER NOT NULL,
	passed        INTEGER NOT NULL,
	missing_spec  INTEGER NOT NULL,
	mismatched    INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	exit_code     INTEGER NOT NULL
)`

const createFileResultsTable = `
CREATE TABLE IF NOT EXISTS file_results (
	run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	source          TEXT NOT NULL,
	spec            TEXT NOT NULL,
	verdict         TEXT NOT NULL,
	code_only       INTEGER NOT NULL,
	spec_only       INTEGER NOT NULL,
	mismatched      INTEGER NOT NULL,
	attr_mismatched INTEGER NOT NULL,
	error           TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, source)
)`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)",
	"CREATE INDEX IF NOT EXISTS idx_file_results_source ON file_results(source)",
}

// createSchema creates all tables and indexes in a single transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"file_results", createFileResultsTable},
		{"metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)", schemaVersion,
	); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
