package filter

import (
	"strings"
	"time"

	"github.com/tshell/aidigest/internal/news"
)

// Filter applies the two candidate-reduction passes: topical relevance and
// publication recency. Both are order-insensitive set reductions.
type Filter struct {
	vocabulary []string
	runTime    time.Time
}

// New builds a filter over the cross-category keyword vocabulary and an
// injected run timestamp, so the recency window is deterministic in tests.
func New(vocabulary []string, runTime time.Time) *Filter {
	vocab := make([]string, 0, len(vocabulary))
	for _, kw := range vocabulary {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			vocab = append(vocab, kw)
		}
	}
	return &Filter{vocabulary: vocab, runTime: runTime}
}

// Apply runs the topical pass followed by the temporal pass.
func (f *Filter) Apply(items []news.Item) []news.Item {
	return f.Temporal(f.Topical(items))
}

// Topical keeps items whose title or summary contains at least one configured
// keyword. Plain substring containment, deliberately permissive: a false
// positive costs a little scoring work, a false negative loses a story.
func (f *Filter) Topical(items []news.Item) []news.Item {
	out := make([]news.Item, 0, len(items))
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Summary)
		for _, kw := range f.vocabulary {
			if strings.Contains(text, kw) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Temporal keeps items published today or yesterday relative to the run
// timestamp. Calendar days are evaluated in the run timestamp's location, so
// an instant lands on the same day no matter which timezone the feed reported
// it in. Undated items pass: they may be high-value and have already survived
// the collector's looser staleness bound.
func (f *Filter) Temporal(items []news.Item) []news.Item {
	loc := f.runTime.Location()
	today := f.runTime.Format("2006-01-02")
	yesterday := f.runTime.AddDate(0, 0, -1).Format("2006-01-02")

	out := make([]news.Item, 0, len(items))
	for _, item := range items {
		if item.PublishedAt == nil {
			out = append(out, item)
			continue
		}
		day := item.PublishedAt.In(loc).Format("2006-01-02")
		if day == today || day == yesterday {
			out = append(out, item)
		}
	}
	return out
}
