// Package history records check runs in a SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/spec-check/internal/report"
)

// Run is one recorded check run.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	SourceDir string
	SpecDir   string
	Summary   report.Summary
	ExitCode  int
}

// FileRecord is the stored outcome for one file of a run.
type FileRecord struct {
	RunID               string
	Source              string
	Spec                string
	Verdict             string
	CodeOnly            int
	SpecOnly            int
	Mismatched          int
	AttributeMismatched int
	Error               string
}

// Store reads and writes run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and its per-file results in one transaction.
func (s *Store) Record(run Run, results []report.FileResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns(
			"id", "started_at", "duration_ms", "src_dir", "spec_dir",
			"total", "passed", "missing_spec", "mismatched", "failed", "exit_code",
		).
		Values(
			run.ID,
			run.StartedAt.UnixNano(),
			run.Duration.Milliseconds(),
			run.SourceDir,
			run.SpecDir,
			run.Summary.Total,
			run.Summary.Passed,
			run.Summary.MissingSpec,
			run.Summary.Mismatched,
			run.Summary.Failed,
			run.ExitCode,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write run %s: %w", run.ID, err)
	}

	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		_, err := sq.Insert("file_results").
			Columns(
				"run_id", "source", "spec", "verdict",
				"code_only", "spec_only", "mismatched", "attr_mismatched", "error",
			).
			Values(
				run.ID,
				r.Source,
				r.Spec,
				r.Verdict.String(),
				len(r.Diff.CodeOnly),
				len(r.Diff.SpecOnly),
				len(r.Diff.Mismatched),
				len(r.Diff.AttributeMismatched),
				errText,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to write result for %s: %w", r.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	q := sq.Select(
		"id", "started_at", "duration_ms", "src_dir", "spec_dir",
		"total", "passed", "missing_spec", "mismatched", "failed", "exit_code",
	).
		From("runs").
		OrderBy("started_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt int64
		var durationMs int64
		if err := rows.Scan(
			&run.ID,
			&startedAt,
			&durationMs,
			&run.SourceDir,
			&run.SpecDir,
			&run.Summary.Total,
			&run.Summary.Passed,
			&run.Summary.MissingSpec,
			&run.Summary.Mismatched,
			&run.Summary.Failed,
			&run.ExitCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.Unix(0, startedAt).UTC()
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Files returns the per-file records of a run ordered by source path.
func (s *Store) Files(runID string) ([]FileRecord, error) {
	rows, err := sq.Select(
		"run_id", "source", "spec", "verdict",
		"code_only", "spec_only", "mismatched", "attr_mismatched", "error",
	).
		From("file_results").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("source").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Source,
			&rec.Spec,
			&rec.Verdict,
			&rec.CodeOnly,
			&rec.SpecOnly,
			&rec.Mismatched,
			&rec.AttributeMismatched,
			&rec.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan file result: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
