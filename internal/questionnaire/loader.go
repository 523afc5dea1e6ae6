package questionnaire

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Persona identifiers.
const (
	PersonaExplorer = "explorer"
	PersonaAchiever = "achiever"
	PersonaWomen    = "women"
)

//go:embed personas/*.yaml
var personaFS embed.FS

var (
	registry     map[string]*Config
	registryErr  error
	registryOnce sync.Once
)

// Personas lists the personas with a questionnaire.
func Personas() []string {
	return []string{PersonaExplorer, PersonaAchiever, PersonaWomen}
}

// Load returns the validated config for a persona. Configs are parsed once and
// shared; callers must not modify them.
func Load(persona string) (*Config, error) {
	registryOnce.Do(func() {
		registry, registryErr = loadAll()
	})
	if registryErr != nil {
		return nil, registryErr
	}
	cfg, ok := registry[strings.ToLower(persona)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersona, persona)
	}
	return cfg, nil
}

func loadAll() (map[string]*Config, error) {
	core, err := readConfig("personas/core.yaml")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Config, 3)
	for _, p := range Personas() {
		cfg, err := readConfig("personas/" + p + ".yaml")
		if err != nil {
			return nil, err
		}
		if cfg.Extends == core.Persona {
			cfg = merge(core, cfg)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		out[p] = cfg
	}
	return out, nil
}

func readConfig(path string) (*Config, error) {
	data, err := personaFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML questionnaire. The result still needs Validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// merge appends ext's scales and questions to a copy of base.
func merge(base, ext *Config) *Config {
	out := &Config{
		Persona: ext.Persona,
		Version: ext.Version,
	}
	out.ScaleList = append(append(out.ScaleList, base.ScaleList...), ext.ScaleList...)
	out.Questions = append(append(out.Questions, base.Questions...), ext.Questions...)
	return out
}

// Canonicalize maps raw answers keyed by question ids or legacy aliases onto
// canonical question ids. Keys that match neither are returned, sorted.
// A canonical key always wins over an alias for the same question, and among
// aliases the one listed first in the config wins.
func Canonicalize(cfg *Config, raw map[string]Answer) (Responses, []string) {
	type aliasRef struct {
		id   string
		rank int
	}
	byAlias := make(map[string]aliasRef)
	for _, q := range cfg.Questions {
		for i, a := range q.Aliases {
			byAlias[a] = aliasRef{id: q.ID, rank: i}
		}
	}

	type aliasHit struct {
		ans  Answer
		rank int
	}
	out := make(Responses, len(raw))
	var unknown []string
	aliased := make(map[string]aliasHit)
	for key, ans := range raw {
		k := strings.TrimSpace(key)
		if _, ok := cfg.Question(k); ok {
			out[k] = ans
			continue
		}
		if ref, ok := byAlias[k]; ok {
			if prev, seen := aliased[ref.id]; !seen || ref.rank < prev.rank {
				aliased[ref.id] = aliasHit{ans: ans, rank: ref.rank}
			}
			continue
		}
		unknown = append(unknown, key)
	}
	for id, hit := range aliased {
		if _, ok := out[id]; !ok {
			out[id] = hit.ans
		}
	}
	sort.Strings(unknown)
	return out, unknown
}
