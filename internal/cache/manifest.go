// Package cache remembers extraction results between runs.
//
// The Manifest is a sqlite database keyed by source path and content hash so
// that an incremental run can reuse the descriptors of unchanged files. Entries
// are only valid for the extractor settings the manifest is bound to.
// ResultCache is the in-process equivalent used by watch mode.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/messages"
)

// Entry is the stored outcome of a successful unit.
type Entry struct {
	Path      string
	Hash      string
	Skipped   bool
	Messages  []messages.Descriptor
	Warnings  []*diag.Diagnostic
	RunID     string
	UpdatedAt time.Time
}

// Result rebuilds the unit result an Entry was recorded from.
func (e *Entry) Result() *messages.Result {
	return &messages.Result{
		File:     e.Path,
		Messages: e.Messages,
		Warnings: e.Warnings,
		Skipped:  e.Skipped,
	}
}

// RunStats is recorded against a run when it finishes.
type RunStats struct {
	Files  int
	Reused int
	Failed int
}

// storedWarning is the on-disk form of a warning diagnostic.
type storedWarning struct {
	Code    string `json:"code"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Manifest is the incremental extraction database.
type Manifest struct {
	db   *sql.DB
	path string
}

// OpenManifest opens or creates the manifest at path. A manifest written by a
// different schema version is discarded.
func OpenManifest(path string) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	// Serialise writers; units finish on many goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := schemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version != SchemaVersion {
		if version != "0" {
			if err := dropSchema(db); err != nil {
				db.Close()
				return nil, err
			}
		}
		if err := createSchema(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Manifest{db: db, path: path}, nil
}

// Path returns the database location.
func (m *Manifest) Path() string {
	return m.path
}

// Close closes the database.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Bind ties the manifest to the extractor settings that produced its entries.
// When fingerprint differs from the stored one every file entry is dropped,
// since results extracted under other settings cannot be reused. It returns
// the number of entries dropped.
func (m *Manifest) Bind(ctx context.Context, fingerprint string) (int, error) {
	var stored string
	err := m.db.QueryRowContext(ctx,
		`SELECT value FROM manifest_metadata WHERE key = 'settings_fingerprint'`,
	).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read settings fingerprint: %w", err)
	}
	if err == nil && stored == fingerprint {
		return 0, nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM files`)
	if err != nil {
		return 0, fmt.Errorf("failed to drop stale entries: %w", err)
	}
	dropped, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO manifest_metadata (key, value) VALUES ('settings_fingerprint', ?)`,
		fingerprint,
	); err != nil {
		return 0, fmt.Errorf("failed to record settings fingerprint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(dropped), nil
}

// BeginRun records a new run and returns its id.
func (m *Manifest) BeginRun(ctx context.Context, root string) (string, error) {
	id := uuid.NewString()
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, started_at) VALUES (?, ?, ?)`,
		id, root, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// FinishRun stamps a run with its completion time and counts.
func (m *Manifest) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	res, err := m.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files = ?, reused = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), stats.Files, stats.Reused, stats.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unknown run %s", runID)
	}
	return nil
}

// Lookup returns the entry for path when its stored hash equals hash.
func (m *Manifest) Lookup(ctx context.Context, path, hash string) (*Entry, bool, error) {
	var (
		e            Entry
		skipped      int
		messagesJSON string
		warningsJSON string
		updatedAt    string
	)
	err := m.db.QueryRowContext(ctx,
		`SELECT path, hash, skipped, messages_json, warnings_json, run_id, updated_at
		 FROM files WHERE path = ?`, path,
	).Scan(&e.Path, &e.Hash, &skipped, &messagesJSON, &warningsJSON, &e.RunID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up %s: %w", path, err)
	}
	if e.Hash != hash {
		return nil, false, nil
	}

	e.Skipped = skipped != 0
	if err := json.Unmarshal([]byte(messagesJSON), &e.Messages); err != nil {
		return nil, false, fmt.Errorf("corrupt manifest entry for %s: %w", path, err)
	}
	var stored []storedWarning
	if err := json.Unmarshal([]byte(warningsJSON), &stored); err != nil {
		return nil, false, fmt.Errorf("corrupt manifest entry for %s: %w", path, err)
	}
	for _, w := range stored {
		e.Warnings = append(e.Warnings, diag.New(diag.ParseCode(w.Code), path, w.Line, w.Column, w.Message))
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &e, true, nil
}

// Record stores the result of a successful unit under runID.
func (m *Manifest) Record(ctx context.Context, runID, hash string, res *messages.Result) error {
	msgs := res.Messages
	if msgs == nil {
		msgs = []messages.Descriptor{}
	}
	messagesJSON, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	stored := make([]storedWarning, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		stored = append(stored, storedWarning{Code: w.Code.String(), Line: w.Line, Column: w.Column, Message: w.Message})
	}
	warningsJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	skipped := 0
	if res.Skipped {
		skipped = 1
	}

	_, err = m.db.ExecContext(ctx,
		`INSERT INTO files (path, hash, skipped, messages_json, warnings_json, run_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			skipped = excluded.skipped,
			messages_json = excluded.messages_json,
			warnings_json = excluded.warnings_json,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at`,
		res.File, hash, skipped, string(messagesJSON), string(warningsJSON), runID,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", res.File, err)
	}
	return nil
}

// Forget removes the entry for path. Failed units are forgotten so the next
// run extracts them again.
func (m *Manifest) Forget(ctx context.Context, path string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to forget %s: %w", path, err)
	}
	return nil
}

// Prune removes entries for paths that are not in keep.
func (m *Manifest) Prune(ctx context.Context, keep []string) (int, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, p := range keep {
		keepSet[p] = true
	}

	rows, err := m.db.QueryContext(ctx, `SELECT path FROM files`)
	if err != nil {
		return 0, fmt.Errorf("failed to list manifest entries: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan manifest entry: %w", err)
		}
		if !keepSet[p] {
			stale = append(stale, p)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, p := range stale {
		if err := m.Forget(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
