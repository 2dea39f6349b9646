package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/tshell/aidigest/internal/news"
)

const (
	maxSummaryLen = 800
	minTitleLen   = 5
)

// Apply cleans every item and drops those with malformed titles. The
// transform is pure and per-item; input order is preserved.
func Apply(items []news.Item) []news.Item {
	out := make([]news.Item, 0, len(items))
	for _, item := range items {
		cleaned, ok := clean(item)
		if ok {
			out = append(out, cleaned)
		}
	}
	return out
}

func clean(item news.Item) (news.Item, bool) {
	item.Title = CleanText(item.Title)
	if utf8.RuneCountInString(item.Title) <= minTitleLen {
		// Too short to be a real headline, probably feed noise.
		return item, false
	}

	item.Summary = truncateRunes(CleanText(StripHTML(item.Summary)), maxSummaryLen)
	item.URL = strings.TrimSpace(item.URL)
	return item, true
}

// StripHTML extracts plain text from markup, discarding script and style
// bodies first so their contents never leak into summaries.
func StripHTML(s string) string {
	if s == "" || !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

// CleanText removes control characters and collapses whitespace runs.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
