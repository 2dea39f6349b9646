package news

import "time"

// Tier classifies an item's estimated importance.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseTier maps a tier name back to its value. Unknown names are low.
func ParseTier(s string) Tier {
	switch s {
	case "high":
		return TierHigh
	case "medium":
		return TierMedium
	default:
		return TierLow
	}
}

// Item is a single candidate news item flowing through the pipeline.
// Only the normalizer mutates an item; later stages treat it as read-only
// and attach derived data via ScoredItem.
type Item struct {
	Title       string
	Summary     string
	URL         string
	Source      string
	Category    string
	Priority    string
	Group       string
	PublishedAt *time.Time // nil when the feed carried no usable date
	CollectedAt time.Time
}

// ScoredItem is an Item with its impact assessment attached.
type ScoredItem struct {
	Item
	Score   float64
	Tier    Tier
	Tags    []string
	Content string // full article text when enrichment succeeded, otherwise empty
}

// Outcome records how a single source fetch went. Observability only; it is
// never part of the candidate stream.
type Outcome struct {
	Source string
	Group  string
	OK     bool
	Items  int
	Err    string // truncated error summary, empty on success
}

// GroupStats tracks how a group's candidate set shrank through the pipeline.
type GroupStats struct {
	Raw      int
	Filtered int
	Deduped  int
	Fallback int
	Curated  int
}

// RunStats aggregates collection statistics for one pipeline run.
type RunStats struct {
	TotalSources int
	Succeeded    int
	Failed       int
	RawItems     int
	Groups       map[string]*GroupStats
}

// Group returns the stats bucket for a group, creating it on first use.
func (s *RunStats) Group(name string) *GroupStats {
	if s.Groups == nil {
		s.Groups = make(map[string]*GroupStats)
	}
	g, ok := s.Groups[name]
	if !ok {
		g = &GroupStats{}
		s.Groups[name] = g
	}
	return g
}
