package engine

import (
	"errors"
	"math"
	"testing"

	"arc-backend/internal/questionnaire"
)

func mustLoad(t *testing.T, persona string) *questionnaire.Config {
	t.Helper()
	cfg, err := questionnaire.Load(persona)
	if err != nil {
		t.Fatalf("Load(%q): %v", persona, err)
	}
	return cfg
}

func mustCompute(t *testing.T, cfg *questionnaire.Config, r questionnaire.Responses, opts Options) *ScoringResult {
	t.Helper()
	res, err := ComputeComposites(cfg, r, opts)
	if err != nil {
		t.Fatalf("ComputeComposites: %v", err)
	}
	return res
}

func TestComputeComposites_NoAnswers(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaWomen)

	res := mustCompute(t, cfg, questionnaire.Responses{}, Options{})
	if len(res.Composites) != 0 {
		t.Errorf("Composites = %v, want none without IncludeAll", res.Composites)
	}

	res = mustCompute(t, cfg, questionnaire.Responses{}, Options{IncludeAll: true})
	for _, name := range ReferencedComposites(cfg) {
		c, ok := res.Composites[name]
		if !ok {
			t.Errorf("%s missing with IncludeAll", name)
			continue
		}
		if c.Raw != 0 || c.MaxPossible != 0 || c.Normalized != 0 || math.IsNaN(c.Normalized) {
			t.Errorf("%s = %+v, want all zero", name, c)
		}
	}
	if res.R8Immediate || len(res.ImmediateConcerns) != 0 {
		t.Errorf("unexpected immediate concern: %+v", res)
	}
}

func TestComputeComposites_SingleChoice(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaExplorer)
	res := mustCompute(t, cfg, questionnaire.Responses{
		"S1": questionnaire.Label("Often"),
		"S2": questionnaire.Label("Never"),
	}, Options{})

	slp := res.Composite(CompositeSleep)
	if slp.Raw != 3 || slp.MaxPossible != 8 {
		t.Errorf("SLP = %+v, want raw 3 max 8", slp)
	}
	if slp.Normalized != 37.5 {
		t.Errorf("SLP normalized = %v, want 37.5", slp.Normalized)
	}
	if _, ok := res.Composites[CompositeGut]; ok {
		t.Error("GUT should be absent when no gut question was answered")
	}
}

func TestComputeComposites_Reverse(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaExplorer)
	scale, _ := cfg.Scale("frequency")

	for ord, label := range scale.Labels {
		res := mustCompute(t, cfg, questionnaire.Responses{"S3": questionnaire.Label(label)}, Options{})
		want := float64(scale.MaxOrdinal() - ord)
		if got := res.Composite(CompositeSleep).Raw; got != want {
			t.Errorf("S3=%q raw = %v, want %v", label, got, want)
		}
	}
}

func TestComputeComposites_NegativeWeightClamps(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaAchiever)
	res := mustCompute(t, cfg, questionnaire.Responses{"ST4": questionnaire.Label("Almost always")}, Options{})

	str := res.Composite(CompositeStress)
	if str.Raw != -2 || str.MaxPossible != 2 {
		t.Errorf("STR = %+v, want raw -2 max 2", str)
	}
	if str.Normalized != 0 {
		t.Errorf("STR normalized = %v, want clamped to 0", str.Normalized)
	}
}

func TestComputeComposites_NormalizedAlwaysInRange(t *testing.T) {
	for _, persona := range questionnaire.Personas() {
		cfg := mustLoad(t, persona)
		for shift := 0; shift < 5; shift++ {
			r := questionnaire.Responses{}
			for _, q := range cfg.Questions {
				switch q.Kind {
				case questionnaire.KindSingle, questionnaire.KindBoolean:
					s, _ := cfg.Scale(q.ScaleID)
					r[q.ID] = questionnaire.Label(s.Labels[shift%len(s.Labels)])
				case questionnaire.KindMulti:
					var all []string
					for opt := range q.OptionContributions {
						all = append(all, opt)
					}
					r[q.ID] = questionnaire.Labels(all[:shift%len(all)+1]...)
				}
			}
			res := mustCompute(t, cfg, r, Options{})
			for name, c := range res.Composites {
				if c.Normalized < 0 || c.Normalized > 100 || math.IsNaN(c.Normalized) {
					t.Errorf("%s shift %d: %s normalized = %v", persona, shift, name, c.Normalized)
				}
			}
		}
	}
}

func TestComputeComposites_ImmediateRedFlag(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaWomen)
	res := mustCompute(t, cfg, questionnaire.Responses{
		"R1": questionnaire.Label("No"),
		"R8": questionnaire.Label("Yes"),
		"R2": questionnaire.Label("No"),
		"S1": questionnaire.Label("Often"),
	}, Options{})

	rfb := res.Composite(CompositeRedFlags)
	if rfb.Normalized != 100 || rfb.Raw != lockedRaw || rfb.MaxPossible != lockedMax || !rfb.Locked {
		t.Errorf("RFB = %+v, want locked at 100", rfb)
	}
	if !res.R8Immediate {
		t.Error("R8Immediate = false, want true")
	}
	if len(res.ImmediateConcerns) != 1 || res.ImmediateConcerns[0] != "R8" {
		t.Errorf("ImmediateConcerns = %v, want [R8]", res.ImmediateConcerns)
	}
	// Other composites keep accumulating.
	if got := res.Composite(CompositeSleep).Normalized; got != 75 {
		t.Errorf("SLP normalized = %v, want 75", got)
	}
}

func TestComputeComposites_ImmediateRedFlagNo(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaWomen)
	res := mustCompute(t, cfg, questionnaire.Responses{
		"R1": questionnaire.Label("Yes"),
		"R8": questionnaire.Label("No"),
	}, Options{})
	if res.R8Immediate {
		t.Error("R8Immediate = true for a No answer")
	}
	rfb := res.Composite(CompositeRedFlags)
	if rfb.Locked || rfb.Raw != 1 || rfb.MaxPossible != 4 || rfb.Normalized != 25 {
		t.Errorf("RFB = %+v, want raw 1 max 4 normalized 25 unlocked", rfb)
	}
}

func TestComputeComposites_BooleanUsesFixedCeiling(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaExplorer)
	res := mustCompute(t, cfg, questionnaire.Responses{"R1": questionnaire.Label("Yes")}, Options{})

	rfb := res.Composite(CompositeRedFlags)
	if rfb.Raw != 1 || rfb.MaxPossible != 4 || rfb.Normalized != 25 {
		t.Errorf("RFB = %+v, want raw 1 max 4 normalized 25", rfb)
	}
	p := BuildProfile(cfg, res, questionnaire.Responses{"R1": questionnaire.Label("Yes")})
	if p.Flags.RedFlag {
		t.Error("RedFlag = true for a single red-flag answer at 25")
	}
}

func TestComputeComposites_MultiSelectSingleOption(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaExplorer)
	res := mustCompute(t, cfg, questionnaire.Responses{
		"BG_CONDITIONS": questionnaire.Labels("Type 2 diabetes"),
	}, Options{})

	cmr := res.Composite(CompositeCardiometabol)
	if cmr.Raw != 2 || cmr.MaxPossible != 8 || cmr.Normalized != 25 {
		t.Errorf("CMR = %+v, want raw 2 max 8 normalized 25", cmr)
	}
	if _, ok := res.Composites[CompositeGut]; ok {
		t.Error("GUT should be absent when no gut option was selected")
	}
}

func TestComputeComposites_MultiSelectOrderIndependent(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaExplorer)
	a := mustCompute(t, cfg, questionnaire.Responses{
		"BG_CONDITIONS": questionnaire.Labels("Prediabetes", "High blood pressure", "Irritable bowel syndrome"),
	}, Options{})
	b := mustCompute(t, cfg, questionnaire.Responses{
		"BG_CONDITIONS": questionnaire.Labels("irritable bowel syndrome", "High blood pressure", "Prediabetes"),
	}, Options{})

	for name, ca := range a.Composites {
		if cb := b.Composites[name]; ca != cb {
			t.Errorf("%s differs by order: %+v vs %+v", name, ca, cb)
		}
	}
	cmr := a.Composite(CompositeCardiometabol)
	if cmr.Raw != 2.5 || cmr.MaxPossible != 10 || cmr.Normalized != 25 {
		t.Errorf("CMR = %+v, want raw 2.5 max 10", cmr)
	}
}

func TestComputeComposites_UnknownLabel(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaExplorer)
	r := questionnaire.Responses{
		"S1": questionnaire.Label("Constantly"),
		"S2": questionnaire.Label("Often"),
	}

	if _, err := ComputeComposites(cfg, r, Options{Strict: true}); !errors.Is(err, questionnaire.ErrUnknownLabel) {
		t.Errorf("strict err = %v, want ErrUnknownLabel", err)
	}

	res := mustCompute(t, cfg, r, Options{})
	if len(res.Skipped) != 1 || res.Skipped[0].QuestionID != "S1" {
		t.Fatalf("Skipped = %+v, want S1", res.Skipped)
	}
	// The dropped answer must not count toward the denominator.
	if slp := res.Composite(CompositeSleep); slp.MaxPossible != 4 {
		t.Errorf("SLP max = %v, want 4", slp.MaxPossible)
	}
}

func TestComputeComposites_MenopauseSeverity(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaWomen)
	high := mustCompute(t, cfg, questionnaire.Responses{
		"V1": questionnaire.Label("Extremely"),
		"V2": questionnaire.Label("Extremely"),
	}, Options{})
	low := mustCompute(t, cfg, questionnaire.Responses{
		"V1": questionnaire.Label("Not at all"),
		"V2": questionnaire.Label("Not at all"),
	}, Options{})

	h, l := high.Composite(CompositeMenopause).Normalized, low.Composite(CompositeMenopause).Normalized
	if h <= l+50 {
		t.Errorf("MENO high = %v, low = %v; want high notably above low", h, l)
	}
}

func TestComputeComposites_BooleanFlags(t *testing.T) {
	cfg := mustLoad(t, questionnaire.PersonaAchiever)
	res := mustCompute(t, cfg, questionnaire.Responses{
		"F1": questionnaire.Label("Yes"),
		"F2": questionnaire.Label("no"),
	}, Options{})
	if !res.BooleanFlags["fatigue"] || res.BooleanFlags["cold_intolerance"] {
		t.Errorf("BooleanFlags = %v", res.BooleanFlags)
	}
	if len(res.Composites) != 0 {
		t.Errorf("flag questions should not score: %v", res.Composites)
	}
}
