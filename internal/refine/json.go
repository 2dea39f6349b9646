package refine

import (
	"encoding/json"
	"log"
	"strings"
)

type curatedEntry struct {
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Importance string   `json:"importance"`
	Tags       []string `json:"tags"`
}

// parseCurated parses the model's JSON reply, tolerating markdown code
// fences. Returns nil when the text is not usable JSON.
func parseCurated(text string) []curatedEntry {
	text = stripFences(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	var reply struct {
		Items []curatedEntry `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		log.Printf("Failed to parse LLM response as JSON: %v", err)
		return nil
	}
	if reply.Items == nil {
		return nil
	}
	return reply.Items
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.Join(lines[1:endIdx], "\n")
}
