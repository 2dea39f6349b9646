package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tshell/aidigest/internal/news"
)

func TestApplyDropsShortTitles(t *testing.T) {
	items := []news.Item{
		{Title: "GPT-5"},
		{Title: "GPT-5 launches today"},
		{Title: "   AI  "},
	}

	out := Apply(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item to survive, got %d", len(out))
	}
	if out[0].Title != "GPT-5 launches today" {
		t.Errorf("unexpected survivor %q", out[0].Title)
	}
}

func TestApplyCleansWhitespaceAndControls(t *testing.T) {
	items := []news.Item{{
		Title:   "  OpenAI\t releases \n new   model  ",
		Summary: "Plain \x00 text",
	}}

	out := Apply(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0].Title != "OpenAI releases new model" {
		t.Errorf("title not normalized: %q", out[0].Title)
	}
	if out[0].Summary != "Plain text" {
		t.Errorf("summary not cleaned: %q", out[0].Summary)
	}
}

func TestApplyStripsSummaryMarkup(t *testing.T) {
	items := []news.Item{{
		Title:   "Model release announced",
		Summary: `<p>The <b>new model</b> is out.</p><script>alert("x")</script>`,
	}}

	out := Apply(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0].Summary != "The new model is out." {
		t.Errorf("markup not stripped: %q", out[0].Summary)
	}
}

func TestApplyTruncatesLongSummaries(t *testing.T) {
	items := []news.Item{{
		Title:   "Very long summary item",
		Summary: strings.Repeat("深度学习 ", 500),
	}}

	out := Apply(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if got := utf8.RuneCountInString(out[0].Summary); got > maxSummaryLen {
		t.Errorf("expected at most %d runes, got %d", maxSummaryLen, got)
	}
}

func TestStripHTMLLeavesPlainTextAlone(t *testing.T) {
	in := "Plain summary with no markup"
	if got := StripHTML(in); got != in {
		t.Errorf("plain text changed: %q", got)
	}
}

func TestCleanText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a  b\t\nc", "a b c"},
		{"", ""},
		{"  solo  ", "solo"},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
