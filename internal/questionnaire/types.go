package questionnaire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownLabel    = errors.New("unknown scale label")
	ErrUnknownPersona  = errors.New("unknown persona")
	ErrInvalidConfig   = errors.New("invalid questionnaire config")
	ErrUnsupportedType = errors.New("unsupported answer type")
)

// QuestionKind controls how an answer is read.
type QuestionKind string

const (
	KindSingle  QuestionKind = "single"
	KindMulti   QuestionKind = "multi"
	KindNumeric QuestionKind = "numeric"
	KindBoolean QuestionKind = "boolean"
	KindText    QuestionKind = "text"
)

// Scale is an ordered list of answer labels. A label's index is its ordinal value.
type Scale struct {
	ID     string   `yaml:"id" json:"id"`
	Labels []string `yaml:"labels" json:"labels"`
}

// Ordinal returns the 0-based position of label, comparing case-insensitively.
func (s Scale) Ordinal(label string) (int, error) {
	want := strings.TrimSpace(label)
	for i, l := range s.Labels {
		if strings.EqualFold(l, want) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q not in scale %s", ErrUnknownLabel, label, s.ID)
}

// MaxOrdinal is the ordinal of the last label.
func (s Scale) MaxOrdinal() int {
	if len(s.Labels) == 0 {
		return 0
	}
	return len(s.Labels) - 1
}

// Contribution links an answer to a composite score.
type Contribution struct {
	Composite string  `yaml:"composite" json:"composite"`
	Weight    float64 `yaml:"weight" json:"weight"`
}

type Question struct {
	ID                  string                    `yaml:"id" json:"id"`
	Section             string                    `yaml:"section" json:"section"`
	Text                string                    `yaml:"text" json:"text"`
	Kind                QuestionKind              `yaml:"kind" json:"kind"`
	ScaleID             string                    `yaml:"scale,omitempty" json:"scale_id,omitempty"`
	Reverse             bool                      `yaml:"reverse,omitempty" json:"reverse,omitempty"`
	Contributions       []Contribution            `yaml:"contributions,omitempty" json:"contributions,omitempty"`
	OptionContributions map[string][]Contribution `yaml:"options,omitempty" json:"options,omitempty"`
	IsImmediateRedFlag  bool                      `yaml:"immediate_red_flag,omitempty" json:"is_immediate_red_flag,omitempty"`
	SetsFlag            string                    `yaml:"sets_flag,omitempty" json:"sets_flag,omitempty"`
	// Field is the canonical demographic field this question feeds, if any.
	Field   string   `yaml:"field,omitempty" json:"field,omitempty"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Scored reports whether the question feeds any composite.
func (q Question) Scored() bool {
	if len(q.Contributions) > 0 {
		return true
	}
	for _, cs := range q.OptionContributions {
		if len(cs) > 0 {
			return true
		}
	}
	return false
}

// HasOption reports whether label is one of a multi-select question's options.
func (q Question) HasOption(label string) (string, bool) {
	want := strings.TrimSpace(label)
	for opt := range q.OptionContributions {
		if strings.EqualFold(opt, want) {
			return opt, true
		}
	}
	return "", false
}

// Config is one persona's questionnaire. It is read-only after Validate.
type Config struct {
	Persona   string           `yaml:"persona" json:"persona"`
	Version   string           `yaml:"version" json:"version"`
	Extends   string           `yaml:"extends,omitempty" json:"-"`
	Scales    map[string]Scale `yaml:"-" json:"scales"`
	ScaleList []Scale          `yaml:"scales" json:"-"`
	Questions []Question       `yaml:"questions" json:"questions"`
}

func (c *Config) Scale(id string) (Scale, bool) {
	s, ok := c.Scales[id]
	return s, ok
}

func (c *Config) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// QuestionForField returns the question carrying a canonical demographic field.
func (c *Config) QuestionForField(field string) (Question, bool) {
	for _, q := range c.Questions {
		if q.Field == field {
			return q, true
		}
	}
	return Question{}, false
}

// Validate indexes scales and checks every question against them.
func (c *Config) Validate() error {
	if c.Persona == "" {
		return fmt.Errorf("%w: persona is required", ErrInvalidConfig)
	}
	c.Scales = make(map[string]Scale, len(c.ScaleList))
	for _, s := range c.ScaleList {
		if s.ID == "" || len(s.Labels) < 2 {
			return fmt.Errorf("%w: scale %q needs an id and at least two labels", ErrInvalidConfig, s.ID)
		}
		c.Scales[s.ID] = s
	}

	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		prefix := fmt.Sprintf("%s question[%d] %s", c.Persona, i, q.ID)
		if q.ID == "" {
			return fmt.Errorf("%w: %s: id is required", ErrInvalidConfig, prefix)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: %s: duplicate id", ErrInvalidConfig, prefix)
		}
		seen[q.ID] = true

		switch q.Kind {
		case KindSingle, KindBoolean:
			if _, ok := c.Scales[q.ScaleID]; !ok {
				return fmt.Errorf("%w: %s: unknown scale %q", ErrInvalidConfig, prefix, q.ScaleID)
			}
		case KindMulti:
			if q.Reverse {
				return fmt.Errorf("%w: %s: multi-select cannot be reversed", ErrInvalidConfig, prefix)
			}
			if len(q.OptionContributions) == 0 {
				return fmt.Errorf("%w: %s: multi-select needs options", ErrInvalidConfig, prefix)
			}
		case KindNumeric, KindText:
			if q.Scored() {
				return fmt.Errorf("%w: %s: %s questions cannot carry contributions", ErrInvalidConfig, prefix, q.Kind)
			}
		default:
			return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidConfig, prefix, q.Kind)
		}
		if q.IsImmediateRedFlag && len(q.Contributions) == 0 {
			return fmt.Errorf("%w: %s: immediate red flag needs a target composite", ErrInvalidConfig, prefix)
		}
	}
	return nil
}

// Answer is a raw questionnaire answer: a label, a list of labels or a number.
type Answer struct {
	Label  string
	Labels []string
	Number *float64
}

func Label(s string) Answer { return Answer{Label: s} }

func Labels(s ...string) Answer { return Answer{Labels: s} }

func Number(f float64) Answer { return Answer{Number: &f} }

func (a Answer) IsZero() bool { return a.Label == "" && len(a.Labels) == 0 && a.Number == nil }

// Selected returns the answer as a list of labels.
func (a Answer) Selected() []string {
	if a.Labels != nil {
		return a.Labels
	}
	if a.Label != "" {
		return []string{a.Label}
	}
	return nil
}

// Float reads the answer as a number, parsing labels such as "172" or "64.5".
func (a Answer) Float() (float64, bool) {
	if a.Number != nil {
		return *a.Number, true
	}
	if a.Label == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(a.Label), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Yes reports whether the answer is an affirmative label.
func (a Answer) Yes() bool {
	switch strings.ToLower(strings.TrimSpace(a.Label)) {
	case "yes", "true", "y":
		return true
	}
	return false
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case a.Number != nil:
		return json.Marshal(*a.Number)
	case a.Labels != nil:
		return json.Marshal(a.Labels)
	default:
		return json.Marshal(a.Label)
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Answer{Label: s}
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		labels := make([]string, 0, len(items))
		for _, it := range items {
			switch v := it.(type) {
			case string:
				labels = append(labels, v)
			case float64:
				labels = append(labels, strconv.FormatFloat(v, 'f', -1, 64))
			default:
				return fmt.Errorf("%w: %T inside list", ErrUnsupportedType, it)
			}
		}
		*a = Answer{Labels: labels}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		if b {
			*a = Answer{Label: "Yes"}
		} else {
			*a = Answer{Label: "No"}
		}
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, string(data))
		}
		*a = Answer{Number: &f}
	}
	return nil
}

// Responses maps question ids to answers.
type Responses map[string]Answer
