package engine

import (
	"sort"

	"arc-backend/internal/questionnaire"
)

// Family is a group of biomarkers tested together for one concern.
type Family string

const (
	FamilyMetabolicGlucose Family = "metabolic_glucose"
	FamilyMetabolicLipids  Family = "metabolic_lipids"
	FamilyThyroid          Family = "thyroid"
	FamilyCortisolHPA      Family = "cortisol_hpa"
	FamilyInflammation     Family = "inflammation"
	FamilyIronStatus       Family = "iron_status"
	FamilyMicronutrients   Family = "micronutrients"
	FamilyFemaleHormones   Family = "female_hormones"
	FamilyBoneHealth       Family = "bone_health"
	FamilyLiverKidney      Family = "liver_kidney"
)

type familySpec struct {
	Biomarkers []string
	Bundle     string
	Month      int
}

var families = map[Family]familySpec{
	FamilyMetabolicGlucose: {
		Biomarkers: []string{"HbA1c", "Fasting Glucose", "Fasting Insulin"},
		Bundle:     "Metabolic Health", Month: 1,
	},
	FamilyMetabolicLipids: {
		Biomarkers: []string{"Total Cholesterol", "LDL Cholesterol", "HDL Cholesterol", "Triglycerides", "ApoB"},
		Bundle:     "Metabolic Health", Month: 1,
	},
	FamilyThyroid: {
		Biomarkers: []string{"TSH", "Free T4", "Free T3", "TPO Antibodies"},
		Bundle:     "Thyroid Function", Month: 1,
	},
	FamilyIronStatus: {
		Biomarkers: []string{"Ferritin", "Serum Iron", "Transferrin Saturation"},
		Bundle:     "Iron & Energy", Month: 1,
	},
	FamilyMicronutrients: {
		Biomarkers: []string{"Vitamin D (25-OH)", "Vitamin B12", "Folate", "Magnesium (RBC)"},
		Bundle:     "Core Micronutrients", Month: 1,
	},
	FamilyCortisolHPA: {
		Biomarkers: []string{"Cortisol (AM)", "DHEA-S"},
		Bundle:     "Stress & Adrenal", Month: 2,
	},
	FamilyInflammation: {
		Biomarkers: []string{"hs-CRP", "Homocysteine"},
		Bundle:     "Inflammation", Month: 2,
	},
	FamilyFemaleHormones: {
		Biomarkers: []string{"Estradiol", "FSH", "LH", "Progesterone", "SHBG"},
		Bundle:     "Hormone Health", Month: 2,
	},
	FamilyBoneHealth: {
		Biomarkers: []string{"Calcium", "Vitamin D (25-OH)", "Parathyroid Hormone"},
		Bundle:     "Bone Health", Month: 3,
	},
	FamilyLiverKidney: {
		Biomarkers: []string{"ALT", "AST", "GGT", "eGFR", "Creatinine"},
		Bundle:     "Liver & Kidney", Month: 3,
	},
}

// FamilyBiomarkers returns the biomarker names of a family.
func FamilyBiomarkers(f Family) []string {
	return append([]string(nil), families[f].Biomarkers...)
}

// BiomarkerTargets maps each wanted family to the reasons it was wanted.
type BiomarkerTargets struct {
	Families map[Family][]string `json:"families"`
}

func (t *BiomarkerTargets) want(f Family, reason string) {
	if t.Families == nil {
		t.Families = make(map[Family][]string)
	}
	for _, r := range t.Families[f] {
		if r == reason {
			return
		}
	}
	t.Families[f] = append(t.Families[f], reason)
}

func (t BiomarkerTargets) Wants(f Family) bool {
	_, ok := t.Families[f]
	return ok
}

// Biomarkers returns the set of biomarker names across wanted families.
func (t BiomarkerTargets) Biomarkers() map[string][]Family {
	out := make(map[string][]Family)
	for _, f := range t.sortedFamilies() {
		for _, b := range families[f].Biomarkers {
			out[b] = append(out[b], f)
		}
	}
	return out
}

func (t BiomarkerTargets) sortedFamilies() []Family {
	out := make([]Family, 0, len(t.Families))
	for f := range t.Families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// heavyAlcoholOrdinal is "8-14" drinks a week on the alcohol_units scale.
const heavyAlcoholOrdinal = 3

// DeriveBiomarkerTargets turns profile flags into the biomarker families worth testing.
func DeriveBiomarkerTargets(cfg *questionnaire.Config, profile Profile, responses questionnaire.Responses) BiomarkerTargets {
	var t BiomarkerTargets
	f := profile.Flags
	d := profile.Demographics

	t.want(FamilyMicronutrients, "baseline")
	if d.Age >= 40 {
		t.want(FamilyMetabolicLipids, "age 40+")
	}
	if f.MetabolicRisk {
		t.want(FamilyMetabolicGlucose, "metabolic_risk_flag")
		t.want(FamilyMetabolicLipids, "metabolic_risk_flag")
	}
	if f.Thyroid {
		t.want(FamilyThyroid, "thyroid_flag")
	}
	if profile.Symptoms["fatigue"] {
		t.want(FamilyThyroid, "persistent fatigue")
		t.want(FamilyIronStatus, "persistent fatigue")
	}
	if f.HighStress {
		t.want(FamilyCortisolHPA, "high_stress_flag")
	}
	if f.Burnout {
		t.want(FamilyCortisolHPA, "burnout_flag")
	}
	if f.PoorSleep {
		t.want(FamilyCortisolHPA, "poor_sleep_flag")
	}
	if f.Inflammation {
		t.want(FamilyInflammation, "inflammation_flag")
	}
	if f.Gut {
		t.want(FamilyInflammation, "gut_flag")
		t.want(FamilyMicronutrients, "gut_flag")
	}
	if f.Cognitive {
		t.want(FamilyMicronutrients, "cognitive_flag")
		t.want(FamilyInflammation, "cognitive_flag")
	}
	if f.NutritionGap {
		t.want(FamilyMicronutrients, "nutrition_gap_flag")
	}
	if f.Iron {
		t.want(FamilyIronStatus, "iron_flag")
	}
	if f.Vasomotor {
		t.want(FamilyFemaleHormones, "vasomotor_flag")
	}
	if f.Mood && profile.Persona == questionnaire.PersonaWomen {
		t.want(FamilyFemaleHormones, "mood_flag")
	}
	if f.BoneHealth {
		t.want(FamilyBoneHealth, "bone_health_flag")
	}
	if d.TakesMedication("Statins") {
		t.want(FamilyLiverKidney, "statin use")
	}
	if d.TakesMedication("Metformin") {
		t.want(FamilyMicronutrients, "metformin use")
	}
	if heavyDrinker(cfg, responses) {
		t.want(FamilyLiverKidney, "alcohol intake")
	}
	return t
}

func heavyDrinker(cfg *questionnaire.Config, responses questionnaire.Responses) bool {
	a, ok := responses["N3"]
	if !ok {
		return false
	}
	q, ok := cfg.Question("N3")
	if !ok {
		return false
	}
	scale, ok := cfg.Scale(q.ScaleID)
	if !ok {
		return false
	}
	ord, err := scale.Ordinal(a.Label)
	return err == nil && ord >= heavyAlcoholOrdinal
}
