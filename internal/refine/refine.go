package refine

import (
	"context"

	"github.com/tshell/aidigest/internal/news"
)

// Bounds limits the size of a curated list.
type Bounds struct {
	Min int
	Max int
}

// Refiner reduces a ranked candidate list to a bounded curated selection.
// Implementations may rewrite title, summary, tier, and tags per item, but
// must never introduce items absent from the input: every curated entry maps
// back to an input item, preserving traceability to the original URL/source.
type Refiner interface {
	Refine(ctx context.Context, group string, items []news.ScoredItem) ([]news.ScoredItem, error)
}

// RuleBased curates purely by importance tier: everything High, then Medium,
// then Low until the lower bound is met, capped at the upper bound. Used on
// its own when no LLM is configured, and as the safety net when one fails.
type RuleBased struct {
	Bounds Bounds
}

func (r *RuleBased) Refine(_ context.Context, _ string, items []news.ScoredItem) ([]news.ScoredItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var high, medium, low []news.ScoredItem
	for _, item := range items {
		switch item.Tier {
		case news.TierHigh:
			high = append(high, item)
		case news.TierMedium:
			medium = append(medium, item)
		default:
			low = append(low, item)
		}
	}

	selected := high
	if len(selected) > r.Bounds.Max {
		selected = selected[:r.Bounds.Max]
	}
	for _, bucket := range [][]news.ScoredItem{medium, low} {
		for _, item := range bucket {
			if len(selected) >= r.Bounds.Min {
				break
			}
			selected = append(selected, item)
		}
	}
	if len(selected) > r.Bounds.Max {
		selected = selected[:r.Bounds.Max]
	}
	return selected, nil
}
