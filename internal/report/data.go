package report

import (
	"sort"
	"strings"
	"time"

	"arc-backend/internal/engine"
)

// PDFGenerationData is the payload rendered into the PDF report. The binding
// tags are enforced by the API route before Generate is called.
type PDFGenerationData struct {
	User             User                `json:"user"`
	Persona          string              `json:"persona" binding:"omitempty,oneof=explorer achiever women"`
	GeneratedAt      time.Time           `json:"generatedAt"`
	Scores           []Score             `json:"scores" binding:"required,min=1,dive"`
	KeyMetrics       []Score             `json:"keyMetrics" binding:"dive"`
	Flags            []string            `json:"flags"`
	ImmediateConcern bool                `json:"immediateConcern"`
	Screenings       []Screening         `json:"screenings" binding:"dive"`
	Nutrition        []string            `json:"nutrition"`
	Supplements      []Supplement        `json:"supplements" binding:"max=7,dive"`
	Breathwork       []Breathwork        `json:"breathwork" binding:"dive"`
	Months           []Month             `json:"months" binding:"max=3,dive"`
	Actions          map[string][]string `json:"actions"`
	Narrative        string              `json:"narrative"`
}

type User struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Age   int    `json:"age" binding:"omitempty,min=0,max=120"`
}

type Score struct {
	Name  string  `json:"name" binding:"required"`
	Value float64 `json:"value" binding:"min=0,max=100"`
}

type Screening struct {
	Name        string   `json:"name" binding:"required"`
	Month       int      `json:"month" binding:"required,min=1,max=3"`
	Biomarkers  []string `json:"biomarkers"`
	TriggeredBy []string `json:"triggeredBy"`
}

type Supplement struct {
	Name        string `json:"name" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty,oneof=Core Optional Discuss_with_clinician"`
	Dose        string `json:"dose"`
	Reason      string `json:"reason"`
	SafetyNotes string `json:"safetyNotes"`
}

type Breathwork struct {
	Name        string `json:"name" binding:"required"`
	Pattern     string `json:"pattern"`
	Minutes     int    `json:"minutes" binding:"min=0,max=60"`
	When        string `json:"when"`
	Description string `json:"description"`
}

type Month struct {
	Month   int      `json:"month" binding:"required,min=1,max=3"`
	Title   string   `json:"title"`
	Focus   []string `json:"focus"`
	Bundles []string `json:"bundles"`
	Actions []string `json:"actions"`
}

var compositeTitles = map[string]string{
	engine.CompositeSleep:         "Sleep disruption",
	engine.CompositeStress:        "Stress load",
	engine.CompositeNutrition:     "Nutrition gaps",
	engine.CompositeMovement:      "Inactivity",
	engine.CompositeCardiometabol: "Cardiometabolic risk",
	engine.CompositeGut:           "Gut symptoms",
	engine.CompositeCognition:     "Cognitive strain",
	engine.CompositeRedFlags:      "Red flag burden",
	engine.CompositeTravel:        "Travel strain",
	engine.CompositeMenopause:     "Menopause symptoms",
	engine.CompositeMood:          "Mood symptoms",
}

// CompositeTitle returns the display name of a composite.
func CompositeTitle(name string) string {
	if t, ok := compositeTitles[name]; ok {
		return t
	}
	return name
}

// FromEngine converts a scoring report into the PDF payload.
func FromEngine(user User, rep *engine.Report, narrative string, now time.Time) PDFGenerationData {
	d := PDFGenerationData{
		User:             user,
		Persona:          rep.Persona,
		GeneratedAt:      now,
		Flags:            rep.Profile.Flags.Active(),
		ImmediateConcern: rep.Scoring.R8Immediate,
		Nutrition:        rep.Actions.Nutrition,
		Actions:          make(map[string][]string),
		Narrative:        narrative,
	}
	if d.User.Age == 0 && rep.Profile.Demographics.Age > 0 {
		d.User.Age = int(rep.Profile.Demographics.Age)
	}

	names := make([]string, 0, len(rep.Scoring.Composites))
	for name := range rep.Scoring.Composites {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Scores = append(d.Scores, Score{Name: CompositeTitle(name), Value: rep.Profile.Scores[name]})
	}

	metrics := make([]string, 0, len(rep.Profile.KeyMetrics))
	for name := range rep.Profile.KeyMetrics {
		metrics = append(metrics, name)
	}
	sort.Strings(metrics)
	for _, name := range metrics {
		d.KeyMetrics = append(d.KeyMetrics, Score{Name: name, Value: rep.Profile.KeyMetrics[name]})
	}

	for _, b := range rep.Tests.Bundles {
		d.Screenings = append(d.Screenings, Screening{
			Name:        b.Name,
			Month:       b.Month,
			Biomarkers:  b.Biomarkers,
			TriggeredBy: b.TriggeredBy,
		})
	}
	for _, s := range rep.Supplements {
		d.Supplements = append(d.Supplements, Supplement{
			Name:        s.Name,
			Priority:    string(s.Priority),
			Dose:        s.Dose,
			Reason:      strings.Join(s.Reasons, ", "),
			SafetyNotes: s.SafetyNotes,
		})
	}
	for _, b := range rep.Breathwork {
		d.Breathwork = append(d.Breathwork, Breathwork(b))
	}
	for _, m := range rep.Months {
		d.Months = append(d.Months, Month(m))
	}
	for _, bucket := range engine.Buckets() {
		if list := rep.Actions.Bucket(bucket); len(list) > 0 {
			d.Actions[bucket] = list
		}
	}
	return d
}
