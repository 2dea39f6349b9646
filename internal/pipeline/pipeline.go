package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tshell/aidigest/internal/collect"
	"github.com/tshell/aidigest/internal/config"
	"github.com/tshell/aidigest/internal/dedup"
	"github.com/tshell/aidigest/internal/enrich"
	"github.com/tshell/aidigest/internal/fallback"
	"github.com/tshell/aidigest/internal/filter"
	"github.com/tshell/aidigest/internal/news"
	"github.com/tshell/aidigest/internal/normalize"
	"github.com/tshell/aidigest/internal/refine"
	"github.com/tshell/aidigest/internal/report"
	"github.com/tshell/aidigest/internal/score"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// GroupResult holds one group's candidates after scoring and curation.
type GroupResult struct {
	Name    string
	Scored  []news.ScoredItem // full ranked candidate list
	Curated []news.ScoredItem // bounded selection for the digest
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunDate  string
	Steps    []StepResult
	Stats    news.RunStats
	Outcomes []news.Outcome
	Groups   []GroupResult
	Digest   report.Digest
}

// Pipeline orchestrates the 6-step digest generation pipeline.
type Pipeline struct {
	cfg         *config.Config
	coordinator *collect.Coordinator
	supplier    *fallback.Supplier
	scorer      *score.Scorer
	enricher    *enrich.Enricher
	refiner     refine.Refiner
	now         func() time.Time
}

// New creates a new pipeline from the loaded config.
func New(cfg *config.Config) *Pipeline {
	bounds := refine.Bounds{Min: cfg.Curation.MinItems, Max: cfg.Curation.MaxItems}

	var refiner refine.Refiner = &refine.RuleBased{Bounds: bounds}
	if cfg.LLM.Enabled {
		apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
		if apiKey == "" {
			log.Printf("LLM refinement enabled but %s is not set, using rule-based curation", cfg.LLM.APIKeyEnv)
		} else {
			refiner = refine.NewOpenAI(apiKey, cfg.LLM.BaseURL, cfg.LLM.Model, bounds)
		}
	}

	timeout := time.Duration(cfg.Collection.FetchTimeoutSec) * time.Second

	return &Pipeline{
		cfg:         cfg,
		coordinator: collect.NewCoordinator(cfg.Collection),
		supplier:    fallback.New(cfg.Fallback),
		scorer:      score.New(cfg),
		enricher:    enrich.New(timeout, cfg.Curation.EnrichTop),
		refiner:     refiner,
		now:         time.Now,
	}
}

// Run executes the full pipeline and returns everything the caller needs
// to persist: stats, outcomes, per-group candidates, and the digest.
func (p *Pipeline) Run(ctx context.Context) *Result {
	now := p.now()
	r := &Result{RunDate: now.Format("2006-01-02")}

	// Step 1: Collect
	log.Println("Step 1/6: Collecting sources...")
	collected := p.coordinator.Collect(ctx, p.cfg.Sources, now)
	r.Stats = collected.Stats
	r.Outcomes = collected.Outcomes
	r.Steps = append(r.Steps, StepResult{
		Name: "Collect",
		Summary: fmt.Sprintf("%d items from %d/%d sources",
			collected.Stats.RawItems, collected.Stats.Succeeded, collected.Stats.TotalSources),
	})

	// Step 2: Normalize and filter
	log.Println("Step 2/6: Normalizing and filtering...")
	flt := filter.New(p.cfg.Vocabulary(), now)
	filtered := make(map[string][]news.Item)
	var filteredTotal int
	for group, items := range collected.Groups {
		kept := flt.Apply(normalize.Apply(items))
		filtered[group] = kept
		r.Stats.Group(group).Raw = len(items)
		r.Stats.Group(group).Filtered = len(kept)
		filteredTotal += len(kept)
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Filter",
		Summary: fmt.Sprintf("%d items passed topical and temporal filters", filteredTotal),
	})

	// Step 3: Deduplicate and top up short groups
	log.Println("Step 3/6: Deduplicating...")
	groups := p.cfg.Groups()
	candidates := make(map[string][]news.Item, len(groups))
	var dedupedTotal, fallbackTotal int
	for _, group := range groups {
		unique := dedup.Reduce(filtered[group])
		r.Stats.Group(group).Deduped = len(unique)

		padded, added := p.supplier.TopUp(group, unique, p.cfg.Collection.MinPerGroup, now)
		r.Stats.Group(group).Fallback = added
		fallbackTotal += added
		dedupedTotal += len(unique)
		candidates[group] = padded
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Dedup",
		Summary: fmt.Sprintf("%d unique items, %d fallback placeholders added", dedupedTotal, fallbackTotal),
	})

	// Step 4: Score and rank
	log.Println("Step 4/6: Scoring...")
	var scoredTotal int
	for _, group := range groups {
		scored := p.scorer.ScoreAll(candidates[group])
		score.Rank(scored)
		r.Groups = append(r.Groups, GroupResult{Name: group, Scored: scored})
		scoredTotal += len(scored)
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Score",
		Summary: fmt.Sprintf("%d items scored and ranked", scoredTotal),
	})

	// Step 5: Enrich and curate
	log.Println("Step 5/6: Enriching and curating...")
	var enrichedTotal, curatedTotal int
	for i := range r.Groups {
		g := &r.Groups[i]
		enrichedTotal += p.enricher.Enrich(g.Scored)

		curated, err := p.refiner.Refine(ctx, g.Name, g.Scored)
		if err != nil {
			log.Printf("Refinement failed for group %s: %v, falling back to rule-based curation", g.Name, err)
			fb := &refine.RuleBased{Bounds: refine.Bounds{Min: p.cfg.Curation.MinItems, Max: p.cfg.Curation.MaxItems}}
			curated, _ = fb.Refine(ctx, g.Name, g.Scored)
		}
		g.Curated = curated
		r.Stats.Group(g.Name).Curated = len(curated)
		curatedTotal += len(curated)
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Curate",
		Summary: fmt.Sprintf("%d items curated (%d enriched)", curatedTotal, enrichedTotal),
	})

	// Step 6: Compose
	log.Println("Step 6/6: Composing digest...")
	curatedByGroup := make(map[string][]news.ScoredItem, len(r.Groups))
	for _, g := range r.Groups {
		curatedByGroup[g.Name] = g.Curated
	}
	r.Digest = report.Compose(r.RunDate, groups, curatedByGroup, r.Stats)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Compose",
		Summary: fmt.Sprintf("digest composed for %s", r.RunDate),
	})

	return r
}
