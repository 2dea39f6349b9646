package refine

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tshell/aidigest/internal/news"
)

const (
	maxCandidatesInPrompt = 30
	promptSummaryLen      = 300
)

const refinePrompt = `You are a senior AI-industry analyst curating a daily news digest.

Below are pre-scored %s candidate news items, strongest signal first. Select the %d-%d most impactful ones, ordered by importance. Prioritize: major policy and regulation, flagship product releases, research breakthroughs, large business moves, and safety incidents.

For each selected item write a professional 1-3 sentence summary, assign an importance level, and extract up to 5 tags.

Candidates:
%s

Respond with ONLY this JSON:
{
    "items": [
        {
            "index": 1,
            "title": "rewritten or original title",
            "summary": "professional summary",
            "importance": "high" | "medium" | "low",
            "tags": ["tag1", "tag2"]
        }
    ]
}

index refers to the candidate number above. Do not invent items that are not in the candidate list.`

// OpenAI curates via a chat-completion call, falling back to rule-based
// selection when the API fails or returns garbage. The model may rewrite
// titles and summaries but selections are mapped back to input candidates by
// index, so dropped items stay dropped and provenance survives.
type OpenAI struct {
	client   *openai.Client
	model    string
	bounds   Bounds
	fallback *RuleBased
}

// NewOpenAI builds an OpenAI-backed refiner. baseURL is optional and covers
// OpenAI-compatible gateways.
func NewOpenAI(apiKey, baseURL, model string, bounds Bounds) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		bounds:   bounds,
		fallback: &RuleBased{Bounds: bounds},
	}
}

func (o *OpenAI) Refine(ctx context.Context, group string, items []news.ScoredItem) ([]news.ScoredItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	candidates := items
	if len(candidates) > maxCandidatesInPrompt {
		candidates = candidates[:maxCandidatesInPrompt]
	}

	prompt := fmt.Sprintf(refinePrompt, group, o.bounds.Min, o.bounds.Max, formatCandidates(candidates))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   4000,
	})
	if err != nil {
		log.Printf("Refine %s via LLM failed: %v, using rule-based selection", group, err)
		return o.fallback.Refine(ctx, group, items)
	}
	if len(resp.Choices) == 0 {
		log.Printf("Refine %s: empty LLM response, using rule-based selection", group)
		return o.fallback.Refine(ctx, group, items)
	}

	curated := applyCurated(candidates, parseCurated(resp.Choices[0].Message.Content), o.bounds.Max)
	if curated == nil {
		log.Printf("Refine %s: unparseable LLM response, using rule-based selection", group)
		return o.fallback.Refine(ctx, group, items)
	}

	log.Printf("Refine %s: LLM curated %d of %d candidates", group, len(curated), len(candidates))
	return curated, nil
}

func formatCandidates(items []news.ScoredItem) string {
	var b strings.Builder
	for i, item := range items {
		text := item.Summary
		if item.Content != "" {
			text = item.Content
		}
		if len(text) > promptSummaryLen {
			text = text[:promptSummaryLen]
		}
		fmt.Fprintf(&b, "[%d] (score %.1f, tier %s) %s\n", i+1, item.Score, item.Tier, item.Title)
		fmt.Fprintf(&b, "    Source: %s\n", item.Source)
		if text != "" {
			fmt.Fprintf(&b, "    %s\n", text)
		}
		if len(item.Tags) > 0 {
			fmt.Fprintf(&b, "    Tags: %s\n", strings.Join(item.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// applyCurated maps curated entries back to candidates by 1-based index.
// Out-of-range or repeated indexes are ignored; the model cannot resurrect
// or duplicate items.
func applyCurated(candidates []news.ScoredItem, entries []curatedEntry, max int) []news.ScoredItem {
	if entries == nil {
		return nil
	}

	used := make(map[int]struct{}, len(entries))
	var out []news.ScoredItem
	for _, e := range entries {
		if len(out) >= max {
			break
		}
		idx := e.Index - 1
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		if _, dup := used[idx]; dup {
			continue
		}
		used[idx] = struct{}{}

		item := candidates[idx]
		if strings.TrimSpace(e.Title) != "" {
			item.Title = strings.TrimSpace(e.Title)
		}
		if strings.TrimSpace(e.Summary) != "" {
			item.Summary = strings.TrimSpace(e.Summary)
		}
		if e.Importance != "" {
			item.Tier = news.ParseTier(strings.ToLower(e.Importance))
		}
		if len(e.Tags) > 0 {
			if len(e.Tags) > 5 {
				e.Tags = e.Tags[:5]
			}
			item.Tags = e.Tags
		}
		out = append(out, item)
	}
	return out
}
