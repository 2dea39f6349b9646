package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_date TEXT UNIQUE NOT NULL,
    total_sources INTEGER DEFAULT 0,
    succeeded_sources INTEGER DEFAULT 0,
    failed_sources INTEGER DEFAULT 0,
    raw_items INTEGER DEFAULT 0,
    curated_items INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_date TEXT NOT NULL,
    group_name TEXT NOT NULL,
    title TEXT NOT NULL,
    summary TEXT,
    url TEXT,
    source TEXT,
    category TEXT,
    priority TEXT,
    published_at TEXT,
    score REAL DEFAULT 0,
    tier TEXT,
    tags TEXT,
    curated INTEGER DEFAULT 0,
    collected_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS source_outcomes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_date TEXT NOT NULL,
    source TEXT NOT NULL,
    group_name TEXT,
    ok INTEGER DEFAULT 0,
    item_count INTEGER DEFAULT 0,
    error TEXT
);

CREATE TABLE IF NOT EXISTS digests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_date TEXT UNIQUE NOT NULL,
    summary TEXT NOT NULL,
    body_markdown TEXT NOT NULL,
    generated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_date);
CREATE INDEX IF NOT EXISTS idx_items_group ON items(run_date, group_name);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON source_outcomes(run_date);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
