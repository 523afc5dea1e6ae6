package engine

import (
	"sort"
	"strings"

	"arc-backend/internal/questionnaire"
)

// Priority ranks a supplement suggestion. Lower rank sorts first.
type Priority string

const (
	PriorityCore     Priority = "Core"
	PriorityOptional Priority = "Optional"
	PriorityDiscuss  Priority = "Discuss_with_clinician"
)

const maxSupplementPicks = 7

func (p Priority) rank() int {
	switch p {
	case PriorityCore:
		return 0
	case PriorityOptional:
		return 1
	default:
		return 2
	}
}

// Supplement categories matched against catalog products.
const (
	CategoryVitaminD     = "vitamin_d"
	CategoryOmega3       = "omega_3"
	CategoryMagnesium    = "magnesium"
	CategoryAdaptogen    = "adaptogen"
	CategoryProbiotic    = "probiotic"
	CategoryFibre        = "fibre"
	CategoryBerberine    = "berberine"
	CategoryCreatine     = "creatine"
	CategoryMelatonin    = "melatonin"
	CategoryMenoBotanic  = "menopause_botanical"
	CategoryMood         = "mood"
	CategoryCalcium      = "calcium"
	CategoryVitaminK2    = "vitamin_k2"
	CategoryIron         = "iron"
	CategorySelenium     = "selenium"
	CategoryCurcumin     = "curcumin"
	CategoryBComplex     = "b_complex"
	CategoryElectrolytes = "electrolytes"
)

// interactions lists, per medication class, the categories that need a
// clinician conversation first.
var interactions = map[string][]string{
	"Anticoagulants":     {CategoryOmega3, CategoryVitaminK2, CategoryCurcumin},
	"SSRIs or SNRIs":     {CategoryMood, CategoryAdaptogen, CategoryMelatonin},
	"Thyroid medication": {CategoryIron, CategoryCalcium, CategorySelenium, CategoryAdaptogen},
	"Metformin":          {CategoryBerberine},
	"HRT":                {CategoryMenoBotanic},
}

type SupplementPick struct {
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Dose        string   `json:"dose,omitempty"`
	SafetyNotes string   `json:"safetyNotes,omitempty"`
	Priority    Priority `json:"priority"`
	Reasons     []string `json:"reasons"`
	Interaction string   `json:"interaction,omitempty"`
}

type supplementCandidate struct {
	category string
	priority Priority
	reason   string
}

// SelectSupplementsFromCatalog applies the per-flag rules, resolves each
// candidate against active catalog supplements by category and returns at
// most seven picks ordered by priority. Categories missing from the catalog
// are dropped.
func SelectSupplementsFromCatalog(profile Profile, responses questionnaire.Responses, products []Product) []SupplementPick {
	byCategory := make(map[string]Product)
	for _, p := range products {
		if p.Kind != KindSupplement || !p.Active || p.Category == "" {
			continue
		}
		if _, ok := byCategory[p.Category]; !ok {
			byCategory[p.Category] = p
		}
	}

	meds := profile.Demographics.Medications
	if profile.Flags.HRTUser {
		meds = append(append([]string(nil), meds...), "HRT")
	}

	picks := make([]SupplementPick, 0)
	index := make(map[string]int)
	for _, c := range supplementCandidates(profile, responses) {
		prod, ok := byCategory[c.category]
		if !ok {
			continue
		}
		priority := c.priority
		interaction := interactingMedication(meds, c.category)
		if interaction != "" {
			priority = PriorityDiscuss
		}
		key := strings.ToLower(prod.Name)
		if i, ok := index[key]; ok {
			pk := &picks[i]
			if priority.rank() < pk.Priority.rank() {
				pk.Priority = priority
			}
			pk.Reasons = appendUnique(pk.Reasons, c.reason)
			continue
		}
		index[key] = len(picks)
		picks = append(picks, SupplementPick{
			ProductID:   prod.ID,
			Name:        prod.Name,
			Category:    prod.Category,
			Dose:        prod.Dose,
			SafetyNotes: prod.SafetyNotes,
			Priority:    priority,
			Reasons:     []string{c.reason},
			Interaction: interaction,
		})
	}

	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Priority.rank() < picks[j].Priority.rank()
	})
	if len(picks) > maxSupplementPicks {
		picks = picks[:maxSupplementPicks]
	}
	return picks
}

func interactingMedication(meds []string, category string) string {
	names := make([]string, 0, len(interactions))
	for med := range interactions {
		names = append(names, med)
	}
	sort.Strings(names)
	for _, med := range names {
		if !containsFold(meds, med) {
			continue
		}
		for _, cat := range interactions[med] {
			if cat == category {
				return med
			}
		}
	}
	return ""
}

func supplementCandidates(profile Profile, responses questionnaire.Responses) []supplementCandidate {
	f := profile.Flags
	var out []supplementCandidate
	add := func(category string, p Priority, reason string) {
		out = append(out, supplementCandidate{category: category, priority: p, reason: reason})
	}

	add(CategoryVitaminD, PriorityCore, "baseline")
	if lowOilyFish(responses) {
		add(CategoryOmega3, PriorityCore, "low oily fish intake")
	}
	if f.NutritionGap {
		add(CategoryOmega3, PriorityCore, "nutrition_gap_flag")
		add(CategoryBComplex, PriorityOptional, "nutrition_gap_flag")
	}
	if f.PoorSleep {
		add(CategoryMagnesium, PriorityCore, "poor_sleep_flag")
	}
	if f.HighStress {
		add(CategoryMagnesium, PriorityCore, "high_stress_flag")
		add(CategoryAdaptogen, PriorityOptional, "high_stress_flag")
	}
	if f.Burnout {
		add(CategoryAdaptogen, PriorityOptional, "burnout_flag")
		add(CategoryBComplex, PriorityOptional, "burnout_flag")
	}
	if f.MetabolicRisk {
		add(CategoryOmega3, PriorityCore, "metabolic_risk_flag")
		add(CategoryBerberine, PriorityOptional, "metabolic_risk_flag")
	}
	if f.Gut {
		add(CategoryProbiotic, PriorityOptional, "gut_flag")
		add(CategoryFibre, PriorityOptional, "gut_flag")
	}
	if f.Cognitive {
		add(CategoryOmega3, PriorityCore, "cognitive_flag")
		add(CategoryCreatine, PriorityOptional, "cognitive_flag")
	}
	if f.LowActivity {
		add(CategoryCreatine, PriorityOptional, "low_activity_flag")
	}
	if f.Inflammation {
		add(CategoryOmega3, PriorityCore, "inflammation_flag")
		add(CategoryCurcumin, PriorityOptional, "inflammation_flag")
	}
	if f.Thyroid {
		add(CategorySelenium, PriorityDiscuss, "thyroid_flag")
	}
	if f.Jetlag {
		add(CategoryMelatonin, PriorityOptional, "jetlag_flag")
		add(CategoryElectrolytes, PriorityOptional, "jetlag_flag")
	}
	if f.Vasomotor {
		add(CategoryMenoBotanic, PriorityOptional, "vasomotor_flag")
		add(CategoryMagnesium, PriorityCore, "vasomotor_flag")
	}
	if f.Mood {
		add(CategoryMood, PriorityOptional, "mood_flag")
	}
	if f.BoneHealth {
		add(CategoryCalcium, PriorityCore, "bone_health_flag")
		add(CategoryVitaminK2, PriorityOptional, "bone_health_flag")
	}
	if f.Iron {
		add(CategoryIron, PriorityDiscuss, "iron_flag")
	}
	if profile.Demographics.TakesMedication("Metformin") {
		add(CategoryBComplex, PriorityCore, "metformin use")
	}
	return out
}

func lowOilyFish(responses questionnaire.Responses) bool {
	a, ok := responses["N4"]
	if !ok {
		return false
	}
	return strings.EqualFold(a.Label, "Never") || strings.EqualFold(a.Label, "Rarely")
}
