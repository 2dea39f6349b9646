package dedup

import (
	"strings"
	"unicode"

	"github.com/tshell/aidigest/internal/news"
)

// Reduce collapses near-duplicate candidates using a two-key identity:
// normalized title and raw URL. An item is dropped when either key was seen
// before; the first occurrence in input order wins. Items with an empty URL
// are judged on title alone. Reduce is idempotent: running it on its own
// output changes nothing.
//
// Title equality catches independently written reports of the same event
// despite punctuation and casing variance; URL equality catches syndication.
func Reduce(items []news.Item) []news.Item {
	seenTitles := make(map[string]struct{}, len(items))
	seenURLs := make(map[string]struct{}, len(items))

	out := make([]news.Item, 0, len(items))
	for _, item := range items {
		key := TitleKey(item.Title)
		if key == "" {
			continue
		}
		if _, dup := seenTitles[key]; dup {
			continue
		}
		if item.URL != "" {
			if _, dup := seenURLs[item.URL]; dup {
				continue
			}
			seenURLs[item.URL] = struct{}{}
		}
		seenTitles[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// TitleKey lowercases a title and strips everything outside letters and
// digits. unicode.IsLetter covers CJK, so bilingual headlines normalize too.
func TitleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
