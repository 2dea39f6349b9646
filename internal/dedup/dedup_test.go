package dedup

import (
	"reflect"
	"testing"

	"github.com/tshell/aidigest/internal/news"
)

func TestReduceTitleVariants(t *testing.T) {
	items := []news.Item{
		{Title: "OpenAI Releases GPT-5!", URL: "https://a.example/1"},
		{Title: "openai releases gpt 5", URL: "https://b.example/2"},
		{Title: "Anthropic ships new model", URL: "https://c.example/3"},
	}

	out := Reduce(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	// First occurrence wins.
	if out[0].Title != "OpenAI Releases GPT-5!" {
		t.Errorf("expected first variant kept, got %q", out[0].Title)
	}
}

func TestReduceURLSyndication(t *testing.T) {
	items := []news.Item{
		{Title: "Original headline", URL: "https://example.com/story"},
		{Title: "Syndicated different headline", URL: "https://example.com/story"},
	}

	out := Reduce(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0].Title != "Original headline" {
		t.Errorf("expected first occurrence kept, got %q", out[0].Title)
	}
}

func TestReduceEmptyURLJudgedByTitle(t *testing.T) {
	items := []news.Item{
		{Title: "Placeholder story one"},
		{Title: "Placeholder story one"},
		{Title: "Placeholder story two"},
	}

	out := Reduce(items)
	if len(out) != 2 {
		t.Errorf("expected 2 items, got %d", len(out))
	}
}

func TestReduceDropsUnkeyableTitles(t *testing.T) {
	out := Reduce([]news.Item{{Title: "!!! ???"}})
	if len(out) != 0 {
		t.Errorf("expected punctuation-only title dropped, got %+v", out)
	}
}

func TestReduceIdempotent(t *testing.T) {
	items := []news.Item{
		{Title: "Story A", URL: "https://a"},
		{Title: "story a", URL: "https://b"},
		{Title: "Story B", URL: "https://c"},
	}

	once := Reduce(items)
	twice := Reduce(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Reduce not idempotent: %+v vs %+v", once, twice)
	}
}

func TestTitleKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"OpenAI Releases GPT-5!", "openaireleasesgpt5"},
		{"机器之心：大模型进展", "机器之心大模型进展"},
		{"- - -", ""},
	}
	for _, tc := range cases {
		if got := TitleKey(tc.in); got != tc.want {
			t.Errorf("TitleKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
