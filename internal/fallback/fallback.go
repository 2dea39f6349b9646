package fallback

import (
	"log"
	"strings"
	"time"

	"github.com/tshell/aidigest/internal/config"
	"github.com/tshell/aidigest/internal/news"
)

// Supplier tops up short groups with configured placeholder items so a thin
// collection day still produces a usable digest. Placeholders are well-formed
// candidate items; they carry no publication date and pass through scoring
// like everything else.
type Supplier struct {
	templates map[string][]config.FallbackItem
}

func New(templates map[string][]config.FallbackItem) *Supplier {
	return &Supplier{templates: templates}
}

// TopUp appends placeholders until the group reaches min items, bounded by
// the configured template list. Returns the padded slice and the number of
// placeholders added.
func (s *Supplier) TopUp(group string, items []news.Item, min int, now time.Time) ([]news.Item, int) {
	if len(items) >= min {
		return items, 0
	}
	templates := s.templates[group]
	if len(templates) == 0 {
		return items, 0
	}

	have := len(items)
	needed := min - have
	if needed > len(templates) {
		needed = len(templates)
	}

	date := now.Format("2006-01-02")
	for _, tpl := range templates[:needed] {
		items = append(items, news.Item{
			Title:       tpl.Title,
			Summary:     strings.ReplaceAll(tpl.Summary, "{date}", date),
			Source:      tpl.Source,
			Category:    group,
			Priority:    tpl.Priority,
			Group:       group,
			CollectedAt: now,
		})
	}
	log.Printf("Group %s below minimum (%d/%d), added %d fallback items", group, have, min, needed)
	return items, needed
}
