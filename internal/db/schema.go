package db

import (
	"database/sql"
	"fmt"
)

const scanMetaTableDDL = `
CREATE TABLE IF NOT EXISTS scan_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    root_path TEXT NOT NULL,
    mode TEXT NOT NULL,
    reference_date TEXT NOT NULL,
    horizon TEXT NOT NULL DEFAULT 'custom',
    size_mb INTEGER NOT NULL,
    threshold_bytes INTEGER NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    state TEXT,
    found_count INTEGER DEFAULT 0,
    skip_count INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0
);
`

const foundTableDDL = `
CREATE TABLE IF NOT EXISTS found (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seq INTEGER NOT NULL,
    path TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    size INTEGER NOT NULL,
    truncated INTEGER NOT NULL
);
`

const scanLogTableDDL = `
CREATE TABLE IF NOT EXISTS scan_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    path TEXT NOT NULL,
    message TEXT NOT NULL
);
`

const foundSeqIndexDDL = `CREATE INDEX IF NOT EXISTS idx_found_seq ON found(seq);`
const foundSizeIndexDDL = `CREATE INDEX IF NOT EXISTS idx_found_size ON found(size DESC);`
const scanLogKindIndexDDL = `CREATE INDEX IF NOT EXISTS idx_scan_log_kind ON scan_log(kind);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		scanMetaTableDDL,
		foundTableDDL,
		scanLogTableDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for recording a scan.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only sessions.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// BuildIndexes creates indexes after the scan has been recorded.
func BuildIndexes(db *sql.DB) error {
	indexes := []string{
		foundSeqIndexDDL,
		foundSizeIndexDDL,
		scanLogKindIndexDDL,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	// Single-file snapshots are easier to copy around.
	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	return nil
}
