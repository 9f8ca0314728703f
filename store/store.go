// Package store persists scan runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/index"
)

// ErrNoRuns is returned by LatestRun on an empty database.
var ErrNoRuns = errors.New("no runs stored")

// Run describes one scan.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	// Source is the scanned directory or repository URL.
	Source string `json:"source"`
	// Revision is the commit scanned, empty for directories.
	Revision string `json:"revision,omitempty"`
	Files    int    `json:"files"`
	Cached   int    `json:"cached"`
	Failures int    `json:"failures"`
}

// Store is a SQLite database of runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases whole and serializes writes.
	db.SetMaxOpenConns(1)

	if err := createSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its results in one transaction. An empty run.ID
// is replaced with a new UUID, and a zero StartedAt with the current time.
func (s *Store) SaveRun(ctx context.Context, run *Run, results []index.Result) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, source, revision, files, cached, failures) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), run.Source, run.Revision, run.Files, run.Cached, run.Failures,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO packages (run_id, file_index, file, position, name, version) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, res := range results {
		for j, pkg := range res.Packages {
			if _, err := stmt.ExecContext(ctx, run.ID, i, res.File, j, pkg.Name, pkg.Version); err != nil {
				return fmt.Errorf("failed to insert package %s of %s: %w", pkg.Name, res.File, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, source, revision, files, cached, failures
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	)

	var (
		run       Run
		startedAt int64
	)
	err := row.Scan(&run.ID, &startedAt, &run.Source, &run.Revision, &run.Files, &run.Cached, &run.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	run.StartedAt = time.Unix(0, startedAt)
	return &run, nil
}

// Results returns the stored results of a run in their original order.
func (s *Store) Results(ctx context.Context, runID string) ([]index.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_index, file, name, version FROM packages
		 WHERE run_id = ? ORDER BY file_index, position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	results := []index.Result{}
	last := -1
	for rows.Next() {
		var (
			fileIndex int
			file      string
			pkg       crates.Package
		)
		if err := rows.Scan(&fileIndex, &file, &pkg.Name, &pkg.Version); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		if fileIndex != last {
			results = append(results, index.Result{File: file})
			last = fileIndex
		}
		res := &results[len(results)-1]
		res.Packages = append(res.Packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read packages: %w", err)
	}

	return results, nil
}
