package collect

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tshell/aidigest/internal/config"
	"github.com/tshell/aidigest/internal/news"
)

const maxErrSummary = 120

// Result aggregates a full collection run: raw items merged per group plus
// per-source outcomes and counters.
type Result struct {
	Groups   map[string][]news.Item
	Outcomes []news.Outcome
	Stats    news.RunStats
}

// Coordinator fans fetches out across all configured sources with bounded
// concurrency. One failing source never aborts the others; its outcome is
// recorded and the run continues.
type Coordinator struct {
	workers  int
	fetchers map[string]Fetcher
	jitter   func() time.Duration
}

// NewCoordinator builds a coordinator with the standard fetch strategies.
func NewCoordinator(cfg config.Collection) *Coordinator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 10
	}
	return &Coordinator{
		workers: workers,
		fetchers: map[string]Fetcher{
			KindFeed: newFeedFetcher(cfg),
			KindPage: stubFetcher{kind: KindPage},
			KindAPI:  stubFetcher{kind: KindAPI},
		},
		// Politeness delay before each fetch so bursts don't trip host-side
		// throttling. Not a correctness requirement.
		jitter: func() time.Duration {
			return 100*time.Millisecond + time.Duration(rand.Int63n(int64(400*time.Millisecond)))
		},
	}
}

type sourceResult struct {
	items   []news.Item
	outcome news.Outcome
}

// Collect fetches every source concurrently and merges results per group.
// Fetch tasks return immutable values over a channel; the single reader below
// does all aggregation, so no locks guard the result set. Cancelling ctx
// abandons outstanding fetches; items already collected remain valid.
func (c *Coordinator) Collect(ctx context.Context, sources []config.Source, now time.Time) *Result {
	log.Printf("Collecting from %d sources (%d workers)", len(sources), c.workers)

	results := make(chan sourceResult, len(sources))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src config.Source) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- canceled(src)
				return
			}
			defer func() { <-sem }()

			select {
			case <-time.After(c.jitter()):
			case <-ctx.Done():
				results <- canceled(src)
				return
			}

			items, err := c.fetcherFor(src.Kind).Fetch(ctx, src, now)
			outcome := news.Outcome{
				Source: src.Name,
				Group:  src.Group,
				OK:     err == nil && len(items) > 0,
				Items:  len(items),
			}
			if err != nil {
				outcome.Err = truncate(err.Error(), maxErrSummary)
				items = nil
			}
			results <- sourceResult{items: items, outcome: outcome}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	r := &Result{
		Groups: make(map[string][]news.Item),
		Stats:  news.RunStats{TotalSources: len(sources)},
	}
	for res := range results {
		r.Outcomes = append(r.Outcomes, res.outcome)
		if res.outcome.OK {
			r.Stats.Succeeded++
			r.Stats.RawItems += len(res.items)
			r.Groups[res.outcome.Group] = append(r.Groups[res.outcome.Group], res.items...)
			r.Stats.Group(res.outcome.Group).Raw += len(res.items)
			log.Printf("Source %s: %d items", res.outcome.Source, len(res.items))
		} else {
			r.Stats.Failed++
			if res.outcome.Err != "" {
				log.Printf("Source %s failed: %s", res.outcome.Source, res.outcome.Err)
			} else {
				log.Printf("Source %s: no items", res.outcome.Source)
			}
		}
	}

	log.Printf("Collection complete: %d/%d sources succeeded, %d raw items",
		r.Stats.Succeeded, r.Stats.TotalSources, r.Stats.RawItems)
	return r
}

func (c *Coordinator) fetcherFor(kind string) Fetcher {
	if f, ok := c.fetchers[kind]; ok {
		return f
	}
	return stubFetcher{kind: kind}
}

func canceled(src config.Source) sourceResult {
	return sourceResult{outcome: news.Outcome{
		Source: src.Name,
		Group:  src.Group,
		Err:    "canceled before fetch",
	}}
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
