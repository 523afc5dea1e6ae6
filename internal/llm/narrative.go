package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Narrative is the structured commentary requested from the model.
type Narrative struct {
	Summary       string   `json:"summary"`
	Highlights    []string `json:"highlights"`
	Priorities    []string `json:"priorities"`
	Encouragement string   `json:"encouragement"`
}

// ParseNarrative - Converts a json_object completion into a Narrative
func ParseNarrative(content string) (Narrative, error) {
	var n Narrative
	content = strings.TrimSpace(content)
	// Some models still fence JSON output.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	if err := json.Unmarshal([]byte(content), &n); err != nil {
		return Narrative{}, fmt.Errorf("parsing narrative: %w", err)
	}
	if strings.TrimSpace(n.Summary) == "" {
		return Narrative{}, fmt.Errorf("parsing narrative: %w", ErrEmptyResponse)
	}
	return n, nil
}

// Text renders the narrative as plain paragraphs separated by blank lines.
func (n Narrative) Text() string {
	parts := []string{strings.TrimSpace(n.Summary)}
	if len(n.Highlights) > 0 {
		parts = append(parts, strings.Join(n.Highlights, " "))
	}
	if len(n.Priorities) > 0 {
		parts = append(parts, "Your priorities: "+strings.Join(n.Priorities, "; ")+".")
	}
	if n.Encouragement != "" {
		parts = append(parts, strings.TrimSpace(n.Encouragement))
	}
	return strings.Join(parts, "\n\n")
}
