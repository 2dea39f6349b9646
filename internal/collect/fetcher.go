package collect

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/tshell/aidigest/internal/config"
	"github.com/tshell/aidigest/internal/news"
)

const userAgent = "aidigest/1.0 (news aggregator)"

// Source kinds. Only feed sources have a real implementation; page and api
// sources are capability stubs that yield nothing without error.
const (
	KindFeed = "feed"
	KindPage = "page"
	KindAPI  = "api"
)

// Fetcher retrieves candidate items from a single source. A returned error is
// informational only: the coordinator records it in the source's outcome and
// treats the source as zero-yield, never failing the run.
type Fetcher interface {
	Fetch(ctx context.Context, src config.Source, now time.Time) ([]news.Item, error)
}

// feedFetcher pulls RSS/Atom feeds via gofeed.
type feedFetcher struct {
	client       *http.Client
	maxPerSource int
	staleness    time.Duration
}

func newFeedFetcher(cfg config.Collection) *feedFetcher {
	timeout := time.Duration(cfg.FetchTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxPerSource := cfg.MaxPerSource
	if maxPerSource <= 0 {
		maxPerSource = 30
	}
	stalenessDays := cfg.StalenessDays
	if stalenessDays <= 0 {
		stalenessDays = 3
	}
	return &feedFetcher{
		client:       &http.Client{Timeout: timeout},
		maxPerSource: maxPerSource,
		staleness:    time.Duration(stalenessDays) * 24 * time.Hour,
	}
}

func (f *feedFetcher) Fetch(ctx context.Context, src config.Source, now time.Time) ([]news.Item, error) {
	// gofeed parsers are cheap; one per fetch keeps them goroutine-local.
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}

	var items []news.Item
	for _, entry := range feed.Items {
		if len(items) >= f.maxPerSource {
			break
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		pub := entryDate(entry, now)
		// Loose pre-filter; the temporal filter applies the tight window later.
		if pub != nil && now.Sub(*pub) > f.staleness {
			continue
		}

		items = append(items, news.Item{
			Title:       title,
			Summary:     entrySummary(entry),
			URL:         entry.Link,
			Source:      src.Name,
			Category:    src.Category,
			Priority:    src.Priority,
			Group:       src.Group,
			PublishedAt: pub,
			CollectedAt: now,
		})
	}
	return items, nil
}

// entryDate resolves a best-effort publication time: published, then updated,
// then a lenient parse of the raw date strings, then the run time. Defaulting
// to "now" keeps undated items in play rather than silently losing them.
func entryDate(entry *gofeed.Item, now time.Time) *time.Time {
	if entry.PublishedParsed != nil {
		t := *entry.PublishedParsed
		return &t
	}
	if entry.UpdatedParsed != nil {
		t := *entry.UpdatedParsed
		return &t
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return &t
		}
	}
	t := now
	return &t
}

// entrySummary picks the first non-empty of the entry's content fields.
// Markup is left alone here; the normalizer strips it.
func entrySummary(entry *gofeed.Item) string {
	if entry.Content != "" {
		return entry.Content
	}
	return entry.Description
}

// stubFetcher covers source kinds that have no generic implementation.
// Site-specific scraping and key-gated APIs are per-source work; until that
// exists these sources degrade to zero yield, not errors.
type stubFetcher struct {
	kind string
}

func (s stubFetcher) Fetch(context.Context, config.Source, time.Time) ([]news.Item, error) {
	return nil, nil
}
