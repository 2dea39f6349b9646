package filter

import (
	"testing"
	"time"

	"github.com/tshell/aidigest/internal/news"
)

var runTime = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

func dated(title string, published time.Time) news.Item {
	return news.Item{Title: title, PublishedAt: &published}
}

func TestTopical(t *testing.T) {
	f := New([]string{"GPT", "大模型"}, runTime)

	items := []news.Item{
		{Title: "OpenAI updates GPT lineup"},
		{Title: "Weekly market report", Summary: "Nothing about the topic"},
		{Title: "国产大模型发布", Summary: ""},
		{Title: "Niche story", Summary: "the gpt stack matured"},
	}

	out := f.Topical(items)
	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d", len(out))
	}
	for _, it := range out {
		if it.Title == "Weekly market report" {
			t.Error("irrelevant item passed the topical filter")
		}
	}
}

func TestTemporalWindow(t *testing.T) {
	f := New(nil, runTime)

	items := []news.Item{
		dated("today", runTime.Add(-2*time.Hour)),
		dated("yesterday evening", runTime.AddDate(0, 0, -1)),
		dated("three days old", runTime.AddDate(0, 0, -3)),
		{Title: "undated"},
	}

	out := f.Temporal(items)
	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(out), out)
	}
	for _, it := range out {
		if it.Title == "three days old" {
			t.Error("stale item passed the temporal filter")
		}
	}
}

func TestTemporalUsesCalendarDays(t *testing.T) {
	// Run just after midnight: an item 30 hours old falls on the day before
	// yesterday and must be dropped, while one 20 hours old lands on
	// yesterday and passes.
	earlyRun := time.Date(2025, 3, 12, 0, 30, 0, 0, time.UTC)
	f := New(nil, earlyRun)

	out := f.Temporal([]news.Item{
		dated("yesterday", earlyRun.Add(-20*time.Hour)),
		dated("too old", earlyRun.Add(-30*time.Hour)),
	})
	if len(out) != 1 || out[0].Title != "yesterday" {
		t.Errorf("expected only the yesterday item, got %+v", out)
	}
}

func TestTemporalNormalizesFeedTimezones(t *testing.T) {
	// The same instant reported in different zones must get the same
	// verdict: the run timestamp's location decides the calendar day.
	run := time.Date(2025, 3, 12, 1, 0, 0, 0, time.UTC)
	f := New(nil, run)

	instant := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	pst := instant.In(time.FixedZone("PST", -8*3600)) // 2025-03-10 18:00 -0800

	out := f.Temporal([]news.Item{
		dated("reported in UTC", instant),
		dated("reported in PST", pst),
	})
	if len(out) != 2 {
		t.Fatalf("expected both same-instant items kept, got %d: %+v", len(out), out)
	}
}

func TestApplyCombinesPasses(t *testing.T) {
	f := New([]string{"model"}, runTime)

	out := f.Apply([]news.Item{
		dated("fresh model news", runTime),
		dated("stale model news", runTime.AddDate(0, 0, -5)),
		dated("fresh but irrelevant", runTime),
	})
	if len(out) != 1 || out[0].Title != "fresh model news" {
		t.Errorf("expected only the fresh relevant item, got %+v", out)
	}
}
