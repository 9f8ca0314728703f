package store

import (
	"context"
	"database/sql"
	"fmt"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	source     TEXT NOT NULL,
	revision   TEXT NOT NULL DEFAULT '',
	files      INTEGER NOT NULL,
	cached     INTEGER NOT NULL,
	failures   INTEGER NOT NULL
)`

const createPackagesTable = `
CREATE TABLE IF NOT EXISTS packages (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	file_index INTEGER NOT NULL,
	file       TEXT NOT NULL,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	version    TEXT NOT NULL,
	PRIMARY KEY (run_id, file_index, position)
)`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_packages_name ON packages(name)`

// createSchema creates the tables if they do not exist yet.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"packages", createPackagesTable},
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, createIndexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
