package engine

import (
	"fmt"
	"sort"

	"arc-backend/internal/questionnaire"
)

type MonthPlan struct {
	Month   int      `json:"month"`
	Title   string   `json:"title"`
	Focus   []string `json:"focus"`
	Bundles []string `json:"bundles"`
	Actions []string `json:"actions"`
}

type Breathwork struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Minutes     int    `json:"minutes"`
	When        string `json:"when"`
	Description string `json:"description"`
}

// Report is the full result of one scoring run.
type Report struct {
	Persona     string           `json:"persona"`
	Scoring     *ScoringResult   `json:"scoring"`
	Profile     Profile          `json:"profile"`
	Targets     BiomarkerTargets `json:"targets"`
	Tests       TestSelection    `json:"tests"`
	Supplements []SupplementPick `json:"supplements"`
	Actions     WeeklyActions    `json:"actions"`
	Months      []MonthPlan      `json:"months"`
	Breathwork  []Breathwork     `json:"breathwork"`
	Unknown     []string         `json:"unknownFields,omitempty"`
}

// Run scores canonical responses and assembles the report. products may be
// empty, in which case no tests or supplements are suggested.
func Run(cfg *questionnaire.Config, responses questionnaire.Responses, products []Product, opts Options) (*Report, error) {
	result, err := ComputeComposites(cfg, responses, opts)
	if err != nil {
		return nil, err
	}
	profile := BuildProfile(cfg, result, responses)
	targets := DeriveBiomarkerTargets(cfg, profile, responses)
	tests := SelectTestsFromCatalog(products, targets)
	actions := BuildWeeklyActions(profile)

	return &Report{
		Persona:     cfg.Persona,
		Scoring:     result,
		Profile:     profile,
		Targets:     targets,
		Tests:       tests,
		Supplements: SelectSupplementsFromCatalog(profile, responses, products),
		Actions:     actions,
		Months:      buildMonths(profile, tests.Bundles, actions),
		Breathwork:  suggestBreathwork(profile),
	}, nil
}

var monthTitles = map[int]string{
	1: "Foundations",
	2: "Build",
	3: "Consolidate",
}

func buildMonths(profile Profile, bundles []ScreeningBundle, actions WeeklyActions) []MonthPlan {
	months := make([]MonthPlan, 0, 3)
	for m := 1; m <= 3; m++ {
		plan := MonthPlan{
			Month:   m,
			Title:   fmt.Sprintf("Month %d: %s", m, monthTitles[m]),
			Focus:   []string{},
			Bundles: []string{},
			Actions: []string{},
		}
		for _, b := range bundles {
			if b.Month == m {
				plan.Bundles = append(plan.Bundles, b.Name)
			}
		}
		months = append(months, plan)
	}

	focus := focusAreas(profile)
	for i, area := range focus {
		// Spread focus areas so each month has a primary theme.
		m := &months[i%3]
		m.Focus = append(m.Focus, area)
	}

	months[0].Actions = append(months[0].Actions, firstOf(actions.Nutrition), firstOf(actions.Environment))
	months[1].Actions = append(months[1].Actions, firstOf(actions.MovementRecovery), firstOf(actions.Supplements))
	months[2].Actions = append(months[2].Actions, firstOf(actions.ScreeningsChecks))
	for i := range months {
		months[i].Actions = compact(months[i].Actions)
	}
	return months
}

// focusAreas orders scored composites from highest to lowest risk.
func focusAreas(profile Profile) []string {
	type area struct {
		name  string
		score float64
	}
	labels := map[string]string{
		CompositeSleep:         "Sleep",
		CompositeStress:        "Stress",
		CompositeNutrition:     "Nutrition",
		CompositeMovement:      "Movement",
		CompositeCardiometabol: "Metabolic health",
		CompositeGut:           "Gut health",
		CompositeCognition:     "Focus and memory",
		CompositeTravel:        "Travel recovery",
		CompositeMenopause:     "Menopause symptoms",
		CompositeMood:          "Mood",
	}
	var areas []area
	for comp, label := range labels {
		if v, ok := profile.Scores[comp]; ok && v >= thresholdModerate {
			areas = append(areas, area{label, v})
		}
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].score != areas[j].score {
			return areas[i].score > areas[j].score
		}
		return areas[i].name < areas[j].name
	})
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		out = append(out, a.name)
	}
	return out
}

func suggestBreathwork(profile Profile) []Breathwork {
	f := profile.Flags
	out := []Breathwork{{
		Name:        "Coherent breathing",
		Pattern:     "in 5s, out 5s",
		Minutes:     5,
		When:        "Morning",
		Description: "Breathe slowly through the nose at about six breaths a minute.",
	}}
	if f.HighStress || f.Burnout {
		out = append(out, Breathwork{
			Name:        "Physiological sigh",
			Pattern:     "double inhale, long exhale",
			Minutes:     2,
			When:        "When stress spikes",
			Description: "Two short inhales through the nose followed by a slow full exhale through the mouth.",
		})
	}
	if f.PoorSleep || f.Vasomotor {
		out = append(out, Breathwork{
			Name:        "4-7-8 breathing",
			Pattern:     "in 4s, hold 7s, out 8s",
			Minutes:     4,
			When:        "Before bed",
			Description: "A long exhale slows the heart rate and helps the body settle for sleep.",
		})
	}
	if f.Jetlag {
		out = append(out, Breathwork{
			Name:        "Box breathing",
			Pattern:     "in 4s, hold 4s, out 4s, hold 4s",
			Minutes:     4,
			When:        "During travel",
			Description: "An even rhythm that helps you stay calm in transit.",
		})
	}
	return out
}

func firstOf(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
