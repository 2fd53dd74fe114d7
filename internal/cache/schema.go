package cache

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever the manifest tables change shape.
// A manifest with a different version is rebuilt from scratch.
const SchemaVersion = "1"

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS manifest_metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	root        TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	files       INTEGER NOT NULL DEFAULT 0,
	reused      INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
)`

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
	path          TEXT PRIMARY KEY,
	hash          TEXT NOT NULL,
	skipped       INTEGER NOT NULL DEFAULT 0,
	messages_json TEXT NOT NULL,
	warnings_json TEXT NOT NULL,
	run_id        TEXT NOT NULL REFERENCES runs(id),
	updated_at    TEXT NOT NULL
)`

const createFilesRunIndex = `CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`

// createSchema creates the manifest tables inside one transaction.
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
		{"manifest_metadata", createMetadataTable},
		{"runs", createRunsTable},
		{"files", createFilesTable},
		{"idx_files_run_id", createFilesRunIndex},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", table.name, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO manifest_metadata (key, value) VALUES ('schema_version', ?)`,
		SchemaVersion,
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// schemaVersion returns the stored version, or "0" for a fresh database.
func schemaVersion(db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'manifest_metadata'`,
	).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow(`SELECT value FROM manifest_metadata WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// dropSchema removes every manifest table.
func dropSchema(db *sql.DB) error {
	for _, table := range []string{"files", "runs", "manifest_metadata"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}
