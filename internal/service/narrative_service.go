package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"arc-backend/internal/engine"
	"arc-backend/internal/llm"
	"arc-backend/internal/report"
)

const narrativeSystemPrompt = `You are a supportive wellness coach writing for a personal health report.
Use plain, warm language. Never diagnose, never name a disease the person has not mentioned,
and never contradict a recommendation to see a clinician.
Reply with one JSON object with the keys:
"summary" (2-3 sentences), "highlights" (array of short sentences),
"priorities" (array of up to 3 short phrases), "encouragement" (one sentence).`

type NarrativeService interface {
	Generate(ctx context.Context, rep *engine.Report) (llm.Narrative, error)
}

type narrativeService struct {
	client llm.LLMClient
}

func NewNarrativeService(client llm.LLMClient) NarrativeService {
	return &narrativeService{client: client}
}

// Generate - Asks the model for a narrative of the report and parses it
func (s *narrativeService) Generate(ctx context.Context, rep *engine.Report) (llm.Narrative, error) {
	content, err := s.client.Complete(ctx, llm.Request{
		SystemPrompt: narrativeSystemPrompt,
		UserPrompt:   narrativePrompt(rep),
		JSON:         true,
		Temperature:  0.4,
		MaxTokens:    700,
	})
	if err != nil {
		return llm.Narrative{}, fmt.Errorf("generating narrative: %w", err)
	}
	return llm.ParseNarrative(content)
}

// narrativePrompt summarises the report without raw answers.
func narrativePrompt(rep *engine.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Persona: %s\n", rep.Persona)
	if age := rep.Profile.Demographics.Age; age > 0 {
		fmt.Fprintf(&b, "Age: %.0f\n", age)
	}

	names := make([]string, 0, len(rep.Profile.Scores))
	for name := range rep.Profile.Scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := rep.Profile.Scores[names[i]], rep.Profile.Scores[names[j]]
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	b.WriteString("Scores (0-100, higher means more concern):\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %.0f\n", report.CompositeTitle(name), rep.Profile.Scores[name])
	}

	if flags := rep.Profile.Flags.Active(); len(flags) > 0 {
		fmt.Fprintf(&b, "Flags: %s\n", strings.Join(flags, ", "))
	}
	if rep.Scoring.R8Immediate {
		b.WriteString("IMPORTANT: the person reported a symptom that needs prompt medical review. The summary must say so first.\n")
	}
	if len(rep.Tests.Bundles) > 0 {
		bundles := make([]string, len(rep.Tests.Bundles))
		for i, bundle := range rep.Tests.Bundles {
			bundles[i] = fmt.Sprintf("%s (month %d)", bundle.Name, bundle.Month)
		}
		fmt.Fprintf(&b, "Suggested screenings: %s\n", strings.Join(bundles, "; "))
	}
	if len(rep.Supplements) > 0 {
		sups := make([]string, len(rep.Supplements))
		for i, s := range rep.Supplements {
			sups[i] = fmt.Sprintf("%s [%s]", s.Name, s.Priority)
		}
		fmt.Fprintf(&b, "Suggested supplements: %s\n", strings.Join(sups, "; "))
	}
	return b.String()
}
