package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tshell/aidigest/internal/news"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleItems() []news.ScoredItem {
	pub := time.Date(2025, 3, 12, 7, 0, 0, 0, time.UTC)
	return []news.ScoredItem{
		{
			Item: news.Item{
				Title:       "Export controls tightened",
				Summary:     "New rules announced",
				URL:         "https://example.com/1",
				Source:      "Reuters Technology",
				Group:       "international",
				PublishedAt: &pub,
			},
			Score: 111,
			Tier:  news.TierHigh,
			Tags:  []string{"export control", "chips"},
		},
		{
			Item:  news.Item{Title: "Minor model update", Group: "international"},
			Score: 12,
			Tier:  news.TierLow,
		},
	}
}

func TestUpsertAndGetRun(t *testing.T) {
	db := testDB(t)

	run := Run{RunDate: "2025-03-12", TotalSources: 10, SucceededSources: 8, FailedSources: 2, RawItems: 120, CuratedItems: 15}
	if err := db.UpsertRun(run); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := db.GetRun("2025-03-12")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a run")
	}
	if got.SucceededSources != 8 || got.RawItems != 120 {
		t.Errorf("unexpected run %+v", got)
	}

	// Re-running the same date replaces the stats.
	run.RawItems = 140
	if err := db.UpsertRun(run); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	got, _ = db.GetRun("2025-03-12")
	if got.RawItems != 140 {
		t.Errorf("expected updated raw items 140, got %d", got.RawItems)
	}

	missing, err := db.GetRun("1999-01-01")
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing run, got %+v", missing)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := testDB(t)

	for _, date := range []string{"2025-03-10", "2025-03-12", "2025-03-11"} {
		if err := db.UpsertRun(Run{RunDate: date}); err != nil {
			t.Fatalf("upsert %s failed: %v", date, err)
		}
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].RunDate != "2025-03-12" || runs[2].RunDate != "2025-03-10" {
		t.Errorf("runs not newest-first: %v", runs)
	}
}

func TestInsertAndGetItems(t *testing.T) {
	db := testDB(t)

	if err := db.InsertItems("2025-03-12", "international", sampleItems(), false); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	items, err := db.GetItemsForRun("2025-03-12")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	// Ordered by score descending within the group.
	first := items[0]
	if first.Title != "Export controls tightened" {
		t.Errorf("expected highest scored first, got %q", first.Title)
	}
	if first.Score != 111 || first.Tier != "high" {
		t.Errorf("score/tier not stored: %+v", first)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "export control" {
		t.Errorf("tags not round-tripped: %v", first.Tags)
	}
	if first.PublishedAt == nil {
		t.Error("expected published_at to be stored")
	}
	if items[1].PublishedAt != nil {
		t.Error("expected nil published_at for undated item")
	}
}

func TestCuratedItemsSeparated(t *testing.T) {
	db := testDB(t)

	all := sampleItems()
	if err := db.InsertItems("2025-03-12", "international", all, false); err != nil {
		t.Fatalf("insert candidates failed: %v", err)
	}
	if err := db.InsertItems("2025-03-12", "international", all[:1], true); err != nil {
		t.Fatalf("insert curated failed: %v", err)
	}

	curated, err := db.GetCuratedItems("2025-03-12")
	if err != nil {
		t.Fatalf("get curated failed: %v", err)
	}
	if len(curated) != 1 {
		t.Fatalf("expected 1 curated item, got %d", len(curated))
	}
	if !curated[0].Curated {
		t.Error("curated flag not set")
	}
}

func TestClearRun(t *testing.T) {
	db := testDB(t)

	db.InsertItems("2025-03-12", "international", sampleItems(), false)
	db.InsertOutcomes("2025-03-12", []news.Outcome{{Source: "A", OK: true, Items: 2}})
	db.InsertDigest("2025-03-12", "summary", "# body")

	if err := db.ClearRun("2025-03-12"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	items, _ := db.GetItemsForRun("2025-03-12")
	if len(items) != 0 {
		t.Errorf("expected no items after clear, got %d", len(items))
	}
	digest, _ := db.GetDigest("2025-03-12")
	if digest != nil {
		t.Error("expected no digest after clear")
	}
}

func TestOutcomesRoundTrip(t *testing.T) {
	db := testDB(t)

	outcomes := []news.Outcome{
		{Source: "A", Group: "international", OK: true, Items: 12},
		{Source: "B", Group: "domestic", OK: false, Err: "connection refused"},
	}
	if err := db.InsertOutcomes("2025-03-12", outcomes); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.GetOutcomesForRun("2025-03-12")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(got))
	}
	if got[0].Source != "A" || !got[0].OK || got[0].ItemCount != 12 {
		t.Errorf("unexpected first outcome %+v", got[0])
	}
	if got[0].Error != nil {
		t.Errorf("expected nil error for success, got %v", *got[0].Error)
	}
	if got[1].Error == nil || *got[1].Error != "connection refused" {
		t.Errorf("error not stored: %+v", got[1])
	}
}

func TestDigestUpsert(t *testing.T) {
	db := testDB(t)

	if err := db.InsertDigest("2025-03-12", "first", "# v1"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := db.InsertDigest("2025-03-12", "second", "# v2"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	digest, err := db.GetDigest("2025-03-12")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if digest == nil {
		t.Fatal("expected a digest")
	}
	if digest.Summary != "second" || digest.BodyMarkdown != "# v2" {
		t.Errorf("replace did not win: %+v", digest)
	}
}

func TestGetStats(t *testing.T) {
	db := testDB(t)

	db.UpsertRun(Run{RunDate: "2025-03-11"})
	db.UpsertRun(Run{RunDate: "2025-03-12"})
	db.InsertItems("2025-03-12", "international", sampleItems(), false)
	db.InsertItems("2025-03-12", "international", sampleItems()[:1], true)
	db.InsertDigest("2025-03-12", "s", "b")

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalRuns != 2 {
		t.Errorf("expected 2 runs, got %d", stats.TotalRuns)
	}
	if stats.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", stats.TotalItems)
	}
	if stats.CuratedItems != 1 {
		t.Errorf("expected 1 curated item, got %d", stats.CuratedItems)
	}
	if stats.HighTierItems != 2 {
		t.Errorf("expected 2 high tier items, got %d", stats.HighTierItems)
	}
	if stats.Digests != 1 {
		t.Errorf("expected 1 digest, got %d", stats.Digests)
	}
	if stats.LastRunDate != "2025-03-12" {
		t.Errorf("expected last run 2025-03-12, got %q", stats.LastRunDate)
	}
}
