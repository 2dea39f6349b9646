package database

import "database/sql"

// UpsertRun records or replaces the statistics for a run date.
func (db *DB) UpsertRun(run Run) error {
	_, err := db.conn.Exec(
		`INSERT INTO runs (run_date, total_sources, succeeded_sources, failed_sources, raw_items, curated_items)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_date) DO UPDATE SET
			total_sources = excluded.total_sources,
			succeeded_sources = excluded.succeeded_sources,
			failed_sources = excluded.failed_sources,
			raw_items = excluded.raw_items,
			curated_items = excluded.curated_items`,
		run.RunDate, run.TotalSources, run.SucceededSources, run.FailedSources, run.RawItems, run.CuratedItems,
	)
	return err
}

// GetRun returns the run for a date, or nil when none exists.
func (db *DB) GetRun(runDate string) (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, run_date, total_sources, succeeded_sources, failed_sources, raw_items, curated_items, created_at
		FROM runs WHERE run_date = ?`, runDate,
	)
	var r Run
	err := row.Scan(&r.ID, &r.RunDate, &r.TotalSources, &r.SucceededSources,
		&r.FailedSources, &r.RawItems, &r.CuratedItems, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := db.conn.Query(
		`SELECT id, run_date, total_sources, succeeded_sources, failed_sources, raw_items, curated_items, created_at
		FROM runs ORDER BY run_date DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.RunDate, &r.TotalSources, &r.SucceededSources,
			&r.FailedSources, &r.RawItems, &r.CuratedItems, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStats returns aggregate statistics across all runs.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&s.TotalRuns); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM items").Scan(&s.TotalItems); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM items WHERE curated = 1").Scan(&s.CuratedItems); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM items WHERE tier = 'high'").Scan(&s.HighTierItems); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM digests").Scan(&s.Digests); err != nil {
		return nil, err
	}

	var last sql.NullString
	if err := db.conn.QueryRow("SELECT MAX(run_date) FROM runs").Scan(&last); err != nil {
		return nil, err
	}
	if last.Valid {
		s.LastRunDate = last.String
	}

	return s, nil
}
