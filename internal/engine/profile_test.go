package engine

import (
	"math"
	"testing"

	"arc-backend/internal/questionnaire"
)

func buildProfile(t *testing.T, persona string, r questionnaire.Responses) Profile {
	t.Helper()
	cfg := mustLoad(t, persona)
	return BuildProfile(cfg, mustCompute(t, cfg, r, Options{}), r)
}

func TestBuildProfile_Demographics(t *testing.T) {
	p := buildProfile(t, questionnaire.PersonaExplorer, questionnaire.Responses{
		"BG_AGE":         questionnaire.Number(44),
		"BG_SEX":         questionnaire.Label("Male"),
		"BG_HEIGHT":      questionnaire.Number(1.8),
		"BG_WEIGHT":      questionnaire.Label("81"),
		"BG_MEDICATIONS": questionnaire.Labels("Statins", "None"),
	})
	d := p.Demographics
	if d.Age != 44 || d.Sex != "Male" {
		t.Errorf("age/sex = %v/%q", d.Age, d.Sex)
	}
	if math.Abs(d.HeightCm-180) > 1e-9 {
		t.Errorf("HeightCm = %v, want 180 from metres", d.HeightCm)
	}
	if d.BMI != 25 {
		t.Errorf("BMI = %v, want 25", d.BMI)
	}
	if len(d.Medications) != 1 || !d.TakesMedication("statins") {
		t.Errorf("Medications = %v, want [Statins]", d.Medications)
	}
}

func TestBuildProfile_CommonFlags(t *testing.T) {
	p := buildProfile(t, questionnaire.PersonaExplorer, questionnaire.Responses{
		"BG_HEIGHT": questionnaire.Number(170),
		"BG_WEIGHT": questionnaire.Number(90),
		"S1":        questionnaire.Label("Almost always"),
		"S2":        questionnaire.Label("Often"),
		"G1":        questionnaire.Label("Sometimes"),
		"G2":        questionnaire.Label("Sometimes"),
		"F1":        questionnaire.Label("Yes"),
		"F2":        questionnaire.Label("Yes"),
	})
	f := p.Flags
	if !f.PoorSleep {
		t.Error("PoorSleep = false, want true at SLP 87.5")
	}
	if !f.MetabolicRisk || !f.Inflammation {
		t.Errorf("BMI %v should set metabolic and inflammation flags", p.Demographics.BMI)
	}
	if !f.Gut {
		t.Error("Gut = false, want true at GUT 50")
	}
	if !f.Thyroid {
		t.Error("Thyroid = false, want true from fatigue and cold intolerance")
	}
	if f.HighStress || f.RedFlag || f.ImmediateConcern {
		t.Errorf("unexpected flags: %v", f.Active())
	}
}

func TestBuildProfile_MissingInputsLeaveFlagsUnset(t *testing.T) {
	p := buildProfile(t, questionnaire.PersonaWomen, questionnaire.Responses{})
	if got := p.Flags.Active(); len(got) != 0 {
		t.Errorf("Active = %v, want none", got)
	}
	if len(p.KeyMetrics) != 0 {
		t.Errorf("KeyMetrics = %v, want none without scores", p.KeyMetrics)
	}
}

func TestBuildProfile_WomenFlags(t *testing.T) {
	p := buildProfile(t, questionnaire.PersonaWomen, questionnaire.Responses{
		"MS1": questionnaire.Label("Post-menopausal"),
		"MS3": questionnaire.Label("Yes"),
		"MS4": questionnaire.Label("Yes"),
		"V1":  questionnaire.Label("Very"),
		"V2":  questionnaire.Label("Very"),
	})
	f := p.Flags
	if !f.Vasomotor || !f.BoneHealth || !f.HRTUser || !f.Iron {
		t.Errorf("Active = %v, want vasomotor, bone health, hrt and iron", f.Active())
	}
	if got := p.KeyMetrics["Menopause Symptom Burden"]; got != 75 {
		t.Errorf("Menopause Symptom Burden = %v, want 75", got)
	}
}

func TestBuildProfile_BoneHealthWomenOnly(t *testing.T) {
	women := buildProfile(t, questionnaire.PersonaWomen, questionnaire.Responses{
		"BG_AGE": questionnaire.Number(55),
	})
	if !women.Flags.BoneHealth {
		t.Error("BoneHealth = false for a 55-year-old on the women questionnaire without BG_SEX")
	}

	younger := buildProfile(t, questionnaire.PersonaWomen, questionnaire.Responses{
		"BG_AGE": questionnaire.Number(45),
	})
	if younger.Flags.BoneHealth {
		t.Error("BoneHealth = true at 45 with no menopause status")
	}

	explorer := buildProfile(t, questionnaire.PersonaExplorer, questionnaire.Responses{
		"BG_AGE": questionnaire.Number(58),
		"BG_SEX": questionnaire.Label("Female"),
	})
	if explorer.Flags.BoneHealth {
		t.Error("BoneHealth = true outside the women questionnaire")
	}
}

func TestBuildProfile_AchieverBurnout(t *testing.T) {
	p := buildProfile(t, questionnaire.PersonaAchiever, questionnaire.Responses{
		"ST1": questionnaire.Label("Almost always"),
		"ST2": questionnaire.Label("Never"),
		"S1":  questionnaire.Label("Often"),
	})
	if !p.Flags.HighStress || !p.Flags.Burnout {
		t.Errorf("Active = %v, want high stress and burnout", p.Flags.Active())
	}
	if got := p.KeyMetrics["Stress Resilience"]; got != 0 {
		t.Errorf("Stress Resilience = %v, want 0", got)
	}
	if got := p.KeyMetrics["Sleep Quality"]; got != 25 {
		t.Errorf("Sleep Quality = %v, want 25", got)
	}
	if got := p.KeyMetrics["Overall Vitality"]; got != 12.5 {
		t.Errorf("Overall Vitality = %v, want 12.5", got)
	}
}

func TestBuildProfile_RedFlagFromR8(t *testing.T) {
	p := buildProfile(t, questionnaire.PersonaExplorer, questionnaire.Responses{
		"R8": questionnaire.Label("Yes"),
	})
	if !p.Flags.RedFlag || !p.Flags.ImmediateConcern {
		t.Errorf("Active = %v, want red_flag and immediate_concern", p.Flags.Active())
	}
}
