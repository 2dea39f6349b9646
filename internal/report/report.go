package report

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tshell/aidigest/internal/news"
)

// Digest is the composed daily briefing.
type Digest struct {
	RunDate string
	Summary string
	Body    string
}

// Compose assembles the markdown digest for a run from the curated
// items of each group. Groups are rendered in the given order.
func Compose(runDate string, order []string, groups map[string][]news.ScoredItem, stats news.RunStats) Digest {
	var sections []string
	var total, high int

	for _, group := range order {
		items := groups[group]
		if len(items) == 0 {
			continue
		}
		sections = append(sections, renderGroup(group, items))
		total += len(items)
		for _, it := range items {
			if it.Tier == news.TierHigh {
				high++
			}
		}
	}

	summary := fmt.Sprintf("%d curated from %d collected items across %d groups (%d high impact); %d of %d sources succeeded.",
		total, stats.RawItems, len(sections), high, stats.Succeeded, stats.TotalSources)

	body := fmt.Sprintf("# AI News Digest — %s\n\n%s", runDate, strings.Join(sections, "\n\n---\n\n"))
	if len(sections) == 0 {
		summary = "No curated items today."
		body = fmt.Sprintf("# AI News Digest — %s\n\nNo items made the cut today.", runDate)
	}

	return Digest{RunDate: runDate, Summary: summary, Body: body}
}

func renderGroup(group string, items []news.ScoredItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", displayGroup(group))

	for i, it := range items {
		fmt.Fprintf(&b, "\n%d. %s **%s**\n", i+1, tierIcon(it.Tier), it.Title)
		if it.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", it.Summary)
		}
		source := it.Source
		if source == "" {
			source = "N/A"
		}
		if it.URL != "" {
			fmt.Fprintf(&b, "   Source: %s | [link](%s)\n", source, it.URL)
		} else {
			fmt.Fprintf(&b, "   Source: %s\n", source)
		}
		if len(it.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", strings.Join(it.Tags, ", "))
		}
	}

	return b.String()
}

func tierIcon(t news.Tier) string {
	switch t {
	case news.TierHigh:
		return "🔥"
	case news.TierMedium:
		return "📌"
	default:
		return "📄"
	}
}

func displayGroup(group string) string {
	if group == "" {
		return "Other"
	}
	first, size := utf8.DecodeRuneInString(group)
	return string(unicode.ToUpper(first)) + group[size:]
}
