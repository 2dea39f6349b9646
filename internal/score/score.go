package score

import (
	"sort"
	"strings"

	"github.com/tshell/aidigest/internal/config"
	"github.com/tshell/aidigest/internal/news"
)

// Tier thresholds and bonus weights are policy constants, not tunables.
const (
	tierHighThreshold   = 80
	tierMediumThreshold = 40
	titleSignalBonus    = 20
	crossCategoryBonus  = 15
	maxTags             = 5
)

type category struct {
	name     string
	weight   float64
	keywords []string
}

type tier struct {
	multiplier float64
	sources    map[string]struct{}
}

// Scorer computes impact scores from the configured weight tables. It is a
// pure function of (item, tables): no batch state, safe to share across
// goroutines, output independent of scoring order.
type Scorer struct {
	categories []category // sorted by name for deterministic tag order
	tiers      []tier     // config order; first match wins
	signals    []string
}

// New precomputes lowercased lookup tables from validated configuration.
func New(cfg *config.Config) *Scorer {
	s := &Scorer{}

	names := make([]string, 0, len(cfg.Keywords))
	for name := range cfg.Keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cat := cfg.Keywords[name]
		keywords := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		s.categories = append(s.categories, category{name: name, weight: cat.Weight, keywords: keywords})
	}

	for _, t := range cfg.SourceTiers {
		sources := make(map[string]struct{}, len(t.Sources))
		for _, name := range t.Sources {
			sources[name] = struct{}{}
		}
		s.tiers = append(s.tiers, tier{multiplier: t.Multiplier, sources: sources})
	}

	for _, w := range cfg.TitleSignals {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s.signals = append(s.signals, w)
		}
	}

	return s
}

// Score rates one item. The base score is the weight of the strongest
// matching category (a category counts once no matter how many of its
// keywords hit), scaled by the source-tier multiplier, plus flat bonuses for
// title signal words and cross-category matches. Bonuses are uncapped, so the
// score has no upper bound; the value is an ordering key, not a probability.
// An item matching nothing scores 0 and tiers Low.
func (s *Scorer) Score(item news.Item) (float64, news.Tier, []string) {
	title := strings.ToLower(item.Title)
	text := title + " " + strings.ToLower(item.Summary)

	var base float64
	matched := 0
	var tags []string
	for _, cat := range s.categories {
		hit := false
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				hit = true
				tags = append(tags, kw)
			}
		}
		if hit {
			matched++
			if cat.weight > base {
				base = cat.weight
			}
		}
	}

	multiplier := 1.0
	for _, t := range s.tiers {
		if _, ok := t.sources[item.Source]; ok {
			multiplier = t.multiplier
			break
		}
	}

	score := base * multiplier

	for _, w := range s.signals {
		if strings.Contains(title, w) {
			score += titleSignalBonus
		}
	}
	if matched >= 2 {
		score += crossCategoryBonus * float64(matched-1)
	}

	return score, tierFor(score), dedupTags(tags)
}

// ScoreAll scores a batch. Per-item and order-independent by construction.
func (s *Scorer) ScoreAll(items []news.Item) []news.ScoredItem {
	scored := make([]news.ScoredItem, 0, len(items))
	for _, item := range items {
		value, t, tags := s.Score(item)
		scored = append(scored, news.ScoredItem{Item: item, Score: value, Tier: t, Tags: tags})
	}
	return scored
}

func tierFor(score float64) news.Tier {
	switch {
	case score >= tierHighThreshold:
		return news.TierHigh
	case score >= tierMediumThreshold:
		return news.TierMedium
	default:
		return news.TierLow
	}
}

func dedupTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) >= maxTags {
			break
		}
	}
	return out
}

// Rank sorts scored items by score descending, in place. The sort is stable:
// equal scores keep their input order, so rankings are reproducible for a
// given collection result. No secondary key.
func Rank(items []news.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}
