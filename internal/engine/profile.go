package engine

import (
	"math"
	"strings"

	"arc-backend/internal/questionnaire"
)

// Canonical demographic fields carried by the persona configs.
const (
	FieldAge              = "age"
	FieldSex              = "sex"
	FieldHeight           = "height_cm"
	FieldWeight           = "weight_kg"
	FieldConditions       = "conditions"
	FieldMedications      = "medications"
	FieldMenopausalStatus = "menopausal_status"
	FieldMenstrualStatus  = "menstrual_status"
	FieldHRT              = "hrt"
)

// Flag thresholds on normalized composites.
const (
	thresholdHigh     = 60
	thresholdModerate = 50
	obeseBMI          = 30
	boneHealthAge     = 50
)

type Demographics struct {
	Age              float64  `json:"age,omitempty"`
	Sex              string   `json:"sex,omitempty"`
	HeightCm         float64  `json:"heightCm,omitempty"`
	WeightKg         float64  `json:"weightKg,omitempty"`
	BMI              float64  `json:"bmi,omitempty"`
	MenopausalStatus string   `json:"menopausalStatus,omitempty"`
	MenstrualStatus  string   `json:"menstrualStatus,omitempty"`
	HRT              bool     `json:"hrt"`
	Conditions       []string `json:"conditions,omitempty"`
	Medications      []string `json:"medications,omitempty"`
}

// HasCondition matches a diagnosis case-insensitively.
func (d Demographics) HasCondition(name string) bool {
	return containsFold(d.Conditions, name)
}

// TakesMedication matches a medication class case-insensitively.
func (d Demographics) TakesMedication(name string) bool {
	return containsFold(d.Medications, name)
}

type RiskFlags struct {
	PoorSleep        bool `json:"poor_sleep_flag"`
	HighStress       bool `json:"high_stress_flag"`
	MetabolicRisk    bool `json:"metabolic_risk_flag"`
	LowActivity      bool `json:"low_activity_flag"`
	Gut              bool `json:"gut_flag"`
	NutritionGap     bool `json:"nutrition_gap_flag"`
	Cognitive        bool `json:"cognitive_flag"`
	Thyroid          bool `json:"thyroid_flag"`
	Inflammation     bool `json:"inflammation_flag"`
	RedFlag          bool `json:"red_flag"`
	Jetlag           bool `json:"jetlag_flag"`
	Burnout          bool `json:"burnout_flag"`
	Vasomotor        bool `json:"vasomotor_flag"`
	Mood             bool `json:"mood_flag"`
	BoneHealth       bool `json:"bone_health_flag"`
	Iron             bool `json:"iron_flag"`
	HRTUser          bool `json:"hrt_user"`
	ImmediateConcern bool `json:"immediate_concern"`
}

// NamedFlag pairs a flag's wire name with its value.
type NamedFlag struct {
	Name string
	On   bool
}

// List returns every flag in a fixed order.
func (f RiskFlags) List() []NamedFlag {
	return []NamedFlag{
		{"poor_sleep_flag", f.PoorSleep},
		{"high_stress_flag", f.HighStress},
		{"metabolic_risk_flag", f.MetabolicRisk},
		{"low_activity_flag", f.LowActivity},
		{"gut_flag", f.Gut},
		{"nutrition_gap_flag", f.NutritionGap},
		{"cognitive_flag", f.Cognitive},
		{"thyroid_flag", f.Thyroid},
		{"inflammation_flag", f.Inflammation},
		{"red_flag", f.RedFlag},
		{"jetlag_flag", f.Jetlag},
		{"burnout_flag", f.Burnout},
		{"vasomotor_flag", f.Vasomotor},
		{"mood_flag", f.Mood},
		{"bone_health_flag", f.BoneHealth},
		{"iron_flag", f.Iron},
		{"hrt_user", f.HRTUser},
		{"immediate_concern", f.ImmediateConcern},
	}
}

// Active returns the names of the flags that are set.
func (f RiskFlags) Active() []string {
	var out []string
	for _, nf := range f.List() {
		if nf.On {
			out = append(out, nf.Name)
		}
	}
	return out
}

type Profile struct {
	Persona      string             `json:"persona"`
	Demographics Demographics       `json:"demographics"`
	Scores       map[string]float64 `json:"scores"`
	KeyMetrics   map[string]float64 `json:"keyMetrics"`
	Flags        RiskFlags          `json:"flags"`
	Symptoms     map[string]bool    `json:"symptoms"`
}

// BuildProfile derives demographics, key metrics and risk flags. Missing
// inputs leave the corresponding flags unset.
func BuildProfile(cfg *questionnaire.Config, result *ScoringResult, responses questionnaire.Responses) Profile {
	p := Profile{
		Persona:      cfg.Persona,
		Demographics: readDemographics(cfg, responses),
		Scores:       make(map[string]float64, len(result.Composites)),
		Symptoms:     make(map[string]bool, len(result.BooleanFlags)),
	}
	for name, c := range result.Composites {
		p.Scores[name] = round1(c.Normalized)
	}
	for name, on := range result.BooleanFlags {
		p.Symptoms[name] = on
	}
	p.Flags = deriveFlags(cfg.Persona, p.Demographics, result)
	p.KeyMetrics = keyMetrics(result)
	return p
}

func readDemographics(cfg *questionnaire.Config, responses questionnaire.Responses) Demographics {
	var d Demographics
	field := func(name string) (questionnaire.Answer, bool) {
		q, ok := cfg.QuestionForField(name)
		if !ok {
			return questionnaire.Answer{}, false
		}
		a, ok := responses[q.ID]
		return a, ok && !a.IsZero()
	}

	if a, ok := field(FieldAge); ok {
		d.Age, _ = a.Float()
	}
	if a, ok := field(FieldSex); ok {
		d.Sex = a.Label
	}
	if a, ok := field(FieldHeight); ok {
		d.HeightCm, _ = a.Float()
		// Metres slipped through older forms.
		if d.HeightCm > 0 && d.HeightCm < 3 {
			d.HeightCm *= 100
		}
	}
	if a, ok := field(FieldWeight); ok {
		d.WeightKg, _ = a.Float()
	}
	if d.HeightCm > 0 && d.WeightKg > 0 {
		m := d.HeightCm / 100
		d.BMI = round1(d.WeightKg / (m * m))
	}
	if a, ok := field(FieldMenopausalStatus); ok {
		d.MenopausalStatus = a.Label
	}
	if a, ok := field(FieldMenstrualStatus); ok {
		d.MenstrualStatus = a.Label
	}
	if a, ok := field(FieldHRT); ok {
		d.HRT = a.Yes()
	}
	if a, ok := field(FieldConditions); ok {
		d.Conditions = withoutNone(a.Selected())
	}
	if a, ok := field(FieldMedications); ok {
		d.Medications = withoutNone(a.Selected())
	}
	return d
}

func deriveFlags(persona string, d Demographics, r *ScoringResult) RiskFlags {
	at := func(name string, threshold float64) bool {
		v, ok := r.Normalized(name)
		return ok && v >= threshold
	}
	var f RiskFlags

	f.PoorSleep = at(CompositeSleep, thresholdHigh)
	f.HighStress = at(CompositeStress, thresholdHigh)
	f.MetabolicRisk = at(CompositeCardiometabol, thresholdModerate) ||
		d.BMI >= obeseBMI ||
		d.HasCondition("Type 2 diabetes") ||
		d.HasCondition("Prediabetes")
	f.LowActivity = at(CompositeMovement, thresholdHigh)
	f.Gut = at(CompositeGut, thresholdModerate)
	f.NutritionGap = at(CompositeNutrition, thresholdModerate)
	f.Cognitive = at(CompositeCognition, thresholdHigh)
	f.Thyroid = d.HasCondition("Hypothyroidism") ||
		d.TakesMedication("Thyroid medication") ||
		(r.BooleanFlags["fatigue"] && r.BooleanFlags["cold_intolerance"])
	f.Inflammation = at(CompositeGut, thresholdHigh) || d.BMI >= obeseBMI
	f.ImmediateConcern = r.R8Immediate
	f.RedFlag = at(CompositeRedFlags, thresholdModerate) || r.R8Immediate

	f.Jetlag = at(CompositeTravel, thresholdModerate)
	f.Burnout = at(CompositeStress, thresholdHigh) && at(CompositeSleep, thresholdModerate)

	f.Vasomotor = at(CompositeMenopause, thresholdModerate)
	f.Mood = at(CompositeMood, thresholdModerate)
	postMenopausal := strings.EqualFold(d.MenopausalStatus, "Post-menopausal") ||
		strings.EqualFold(d.MenstrualStatus, "No periods for 12+ months")
	f.BoneHealth = persona == questionnaire.PersonaWomen && (postMenopausal || d.Age >= boneHealthAge)
	f.Iron = r.BooleanFlags["heavy_bleeding"]
	f.HRTUser = d.HRT || r.BooleanFlags["hrt_use"]
	return f
}

// keyMetrics turns risk composites into "higher is better" headline numbers.
func keyMetrics(r *ScoringResult) map[string]float64 {
	out := make(map[string]float64)
	inverse := []struct {
		name, composite string
	}{
		{"Sleep Quality", CompositeSleep},
		{"Stress Resilience", CompositeStress},
		{"Metabolic Health", CompositeCardiometabol},
		{"Movement", CompositeMovement},
		{"Nutrition", CompositeNutrition},
		{"Gut Comfort", CompositeGut},
		{"Mental Clarity", CompositeCognition},
		{"Travel Readiness", CompositeTravel},
	}
	var sum float64
	var n int
	for _, m := range inverse {
		v, ok := r.Normalized(m.composite)
		if !ok {
			continue
		}
		score := round1(100 - v)
		out[m.name] = score
		sum += score
		n++
	}
	if v, ok := r.Normalized(CompositeMenopause); ok {
		out["Menopause Symptom Burden"] = round1(v)
	}
	if n > 0 {
		out["Overall Vitality"] = round1(sum / float64(n))
	}
	return out
}

func withoutNone(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), "None") {
			continue
		}
		out = append(out, l)
	}
	return out
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
