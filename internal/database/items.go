package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tshell/aidigest/internal/news"
)

// InsertItems stores scored items for a run date, replacing any
// previously stored items for that date.
func (db *DB) InsertItems(runDate string, group string, items []news.ScoredItem, curated bool) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO items (run_date, group_name, title, summary, url, source, category, priority, published_at, score, tier, tags, curated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		var published *string
		if it.PublishedAt != nil {
			p := it.PublishedAt.Format("2006-01-02 15:04:05")
			published = &p
		}
		tags := encodeTags(it.Tags)
		if _, err := stmt.Exec(runDate, group, it.Title, it.Summary, it.URL, it.Source,
			it.Category, it.Priority, published, it.Score, it.Tier.String(), tags, curated); err != nil {
			return fmt.Errorf("insert item %q: %w", it.Title, err)
		}
	}

	return tx.Commit()
}

// ClearRun removes all items, outcomes and the digest stored for a run
// date so the run can be re-recorded.
func (db *DB) ClearRun(runDate string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM items WHERE run_date = ?",
		"DELETE FROM source_outcomes WHERE run_date = ?",
		"DELETE FROM digests WHERE run_date = ?",
	} {
		if _, err := tx.Exec(q, runDate); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetItemsForRun returns the stored items for a run date, highest
// score first within each group.
func (db *DB) GetItemsForRun(runDate string) ([]StoredItem, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_date, group_name, title, summary, url, source, category, priority, published_at, score, tier, tags, curated, collected_at
		FROM items WHERE run_date = ? ORDER BY group_name, score DESC`, runDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// GetCuratedItems returns only the curated items for a run date.
func (db *DB) GetCuratedItems(runDate string) ([]StoredItem, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_date, group_name, title, summary, url, source, category, priority, published_at, score, tier, tags, curated, collected_at
		FROM items WHERE run_date = ? AND curated = 1 ORDER BY group_name, score DESC`, runDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]StoredItem, error) {
	var items []StoredItem
	for rows.Next() {
		var it StoredItem
		var tags *string
		if err := rows.Scan(&it.ID, &it.RunDate, &it.Group, &it.Title, &it.Summary,
			&it.URL, &it.Source, &it.Category, &it.Priority, &it.PublishedAt,
			&it.Score, &it.Tier, &tags, &it.Curated, &it.CollectedAt); err != nil {
			return nil, err
		}
		it.Tags = decodeTags(tags)
		items = append(items, it)
	}
	return items, rows.Err()
}

// InsertOutcomes stores the per-source fetch outcomes for a run date.
func (db *DB) InsertOutcomes(runDate string, outcomes []news.Outcome) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO source_outcomes (run_date, source, group_name, ok, item_count, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range outcomes {
		var errStr *string
		if o.Err != "" {
			e := o.Err
			errStr = &e
		}
		if _, err := stmt.Exec(runDate, o.Source, o.Group, o.OK, o.Items, errStr); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetOutcomesForRun returns the stored fetch outcomes for a run date.
func (db *DB) GetOutcomesForRun(runDate string) ([]StoredOutcome, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_date, source, group_name, ok, item_count, error
		FROM source_outcomes WHERE run_date = ? ORDER BY id`, runDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []StoredOutcome
	for rows.Next() {
		var o StoredOutcome
		if err := rows.Scan(&o.ID, &o.RunDate, &o.Source, &o.Group, &o.OK, &o.ItemCount, &o.Error); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// InsertDigest stores the composed digest for a run date, replacing
// any existing digest for that date.
func (db *DB) InsertDigest(runDate, summary, bodyMarkdown string) error {
	_, err := db.conn.Exec(
		`INSERT INTO digests (run_date, summary, body_markdown)
		VALUES (?, ?, ?)
		ON CONFLICT(run_date) DO UPDATE SET
			summary = excluded.summary,
			body_markdown = excluded.body_markdown,
			generated_at = datetime('now')`,
		runDate, summary, bodyMarkdown,
	)
	return err
}

// GetDigest returns the digest for a run date, or nil when none exists.
func (db *DB) GetDigest(runDate string) (*StoredDigest, error) {
	row := db.conn.QueryRow(
		`SELECT id, run_date, summary, body_markdown, generated_at
		FROM digests WHERE run_date = ?`, runDate,
	)
	var d StoredDigest
	err := row.Scan(&d.ID, &d.RunDate, &d.Summary, &d.BodyMarkdown, &d.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func encodeTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func decodeTags(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(*raw), &tags); err != nil {
		return nil
	}
	return tags
}
