package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"arc-backend/internal/questionnaire"
)

// Composite names used by the persona configs.
const (
	CompositeSleep         = "SLP"
	CompositeStress        = "STR"
	CompositeNutrition     = "NUT"
	CompositeMovement      = "MOV"
	CompositeCardiometabol = "CMR"
	CompositeGut           = "GUT"
	CompositeCognition     = "COG"
	CompositeRedFlags      = "RFB"
	CompositeTravel        = "TRV"
	CompositeMenopause     = "MENO"
	CompositeMood          = "MOOD"
)

// lockedRaw and lockedMax pin a composite hit by an immediate red flag at 100.
const (
	lockedRaw = 999
	lockedMax = 1
)

// ordinalCeiling is the per-unit-weight denominator for every contribution.
// It is the top ordinal of the five-label scales, and applies unchanged to
// yes/no answers and multi-select options.
const ordinalCeiling = 4

type CompositeScore struct {
	Raw         float64 `json:"raw"`
	MaxPossible float64 `json:"maxPossible"`
	Normalized  float64 `json:"normalized"`
	Locked      bool    `json:"locked,omitempty"`
}

// SkippedAnswer records an answer the engine could not use.
type SkippedAnswer struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
	Reason     string `json:"reason"`
}

type ScoringResult struct {
	Composites        map[string]CompositeScore `json:"composites"`
	ImmediateConcerns []string                  `json:"immediateConcerns"`
	R8Immediate       bool                      `json:"r8Immediate"`
	BooleanFlags      map[string]bool           `json:"booleanFlags"`
	Skipped           []SkippedAnswer           `json:"skipped,omitempty"`
}

// Normalized returns the normalized score of a composite and whether it was scored.
func (r *ScoringResult) Normalized(name string) (float64, bool) {
	c, ok := r.Composites[name]
	return c.Normalized, ok
}

// Composite returns a composite, or the zero score when it was never touched.
func (r *ScoringResult) Composite(name string) CompositeScore {
	return r.Composites[name]
}

type Options struct {
	// Strict fails the run on an unrecognised label instead of dropping the answer.
	Strict bool
	// IncludeAll reports every composite the config references, scored or not.
	IncludeAll bool
}

type accumulator struct {
	raw, max float64
	locked   bool
}

func (a *accumulator) add(raw, denom float64) {
	if a.locked {
		return
	}
	a.raw += raw
	a.max += denom
}

func (a *accumulator) lock() {
	a.raw, a.max, a.locked = lockedRaw, lockedMax, true
}

// ComputeComposites scores responses against a persona config. Unanswered
// questions contribute to neither numerator nor denominator.
func ComputeComposites(cfg *questionnaire.Config, responses questionnaire.Responses, opts Options) (*ScoringResult, error) {
	res := &ScoringResult{
		Composites:        make(map[string]CompositeScore),
		ImmediateConcerns: []string{},
		BooleanFlags:      make(map[string]bool),
	}
	acc := make(map[string]*accumulator)
	get := func(name string) *accumulator {
		a, ok := acc[name]
		if !ok {
			a = &accumulator{}
			acc[name] = a
		}
		return a
	}

	skip := func(q questionnaire.Question, value, reason string, cause error) error {
		if opts.Strict {
			return fmt.Errorf("question %s: %w", q.ID, cause)
		}
		res.Skipped = append(res.Skipped, SkippedAnswer{QuestionID: q.ID, Value: value, Reason: reason})
		return nil
	}

	for _, q := range cfg.Questions {
		ans, ok := responses[q.ID]
		if !ok || ans.IsZero() {
			continue
		}

		switch q.Kind {
		case questionnaire.KindNumeric, questionnaire.KindText:
			continue

		case questionnaire.KindMulti:
			if err := scoreMulti(q, ans, get, skip); err != nil {
				return nil, err
			}

		case questionnaire.KindSingle, questionnaire.KindBoolean:
			label, ok := singleLabel(ans)
			if !ok {
				if err := skip(q, strings.Join(ans.Selected(), ","), "expected a single answer", questionnaire.ErrUnsupportedType); err != nil {
					return nil, err
				}
				continue
			}
			scale, _ := cfg.Scale(q.ScaleID)
			ord, err := scale.Ordinal(label)
			if err != nil {
				if err := skip(q, label, "unknown label", err); err != nil {
					return nil, err
				}
				continue
			}
			yes := strings.EqualFold(scale.Labels[ord], "Yes")

			if q.SetsFlag != "" {
				res.BooleanFlags[q.SetsFlag] = yes
				if !q.Scored() {
					continue
				}
			}

			if q.IsImmediateRedFlag {
				if yes {
					res.ImmediateConcerns = append(res.ImmediateConcerns, q.ID)
					res.R8Immediate = true
					for _, c := range q.Contributions {
						get(c.Composite).lock()
					}
				}
				continue
			}

			value := float64(ord)
			if q.Reverse {
				value = float64(scale.MaxOrdinal() - ord)
			}
			for _, c := range q.Contributions {
				get(c.Composite).add(value*c.Weight, math.Abs(c.Weight)*ordinalCeiling)
			}
		}
	}

	if opts.IncludeAll {
		for _, name := range ReferencedComposites(cfg) {
			get(name)
		}
	}

	for name, a := range acc {
		res.Composites[name] = CompositeScore{
			Raw:         a.raw,
			MaxPossible: a.max,
			Normalized:  normalize(a.raw, a.max),
			Locked:      a.locked,
		}
	}
	return res, nil
}

// scoreMulti adds weight×1 per selected option against |weight|×4.
// Unselected options contribute nothing.
func scoreMulti(
	q questionnaire.Question,
	ans questionnaire.Answer,
	get func(string) *accumulator,
	skip func(questionnaire.Question, string, string, error) error,
) error {
	selected := make(map[string]bool)
	for _, label := range ans.Selected() {
		opt, ok := q.HasOption(label)
		if !ok {
			if err := skip(q, label, "unknown option", fmt.Errorf("%w: %q", questionnaire.ErrUnknownLabel, label)); err != nil {
				return err
			}
			continue
		}
		selected[opt] = true
	}

	options := make([]string, 0, len(selected))
	for opt := range selected {
		options = append(options, opt)
	}
	sort.Strings(options)
	for _, opt := range options {
		for _, c := range q.OptionContributions[opt] {
			get(c.Composite).add(c.Weight, math.Abs(c.Weight)*ordinalCeiling)
		}
		for _, c := range q.Contributions {
			get(c.Composite).add(c.Weight, math.Abs(c.Weight)*ordinalCeiling)
		}
	}
	return nil
}

func singleLabel(ans questionnaire.Answer) (string, bool) {
	switch {
	case ans.Number != nil:
		return strconv.FormatFloat(*ans.Number, 'f', -1, 64), true
	case ans.Labels != nil:
		if len(ans.Labels) == 1 {
			return ans.Labels[0], true
		}
		return "", false
	default:
		return ans.Label, true
	}
}

func normalize(raw, maxPossible float64) float64 {
	denom := maxPossible
	if denom == 0 {
		denom = 1
	}
	return clamp(raw/denom*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ReferencedComposites lists every composite name the config can produce, sorted.
func ReferencedComposites(cfg *questionnaire.Config) []string {
	seen := make(map[string]bool)
	for _, q := range cfg.Questions {
		for _, c := range q.Contributions {
			seen[c.Composite] = true
		}
		for _, cs := range q.OptionContributions {
			for _, c := range cs {
				seen[c.Composite] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
