package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/manifold-nav/internal/governor"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// #region spec-types

// LikelihoodSpec describes a keyword-boost likelihood: signs whose text
// contains the keyword get the boost, everything else 1.0.
type LikelihoodSpec struct {
	Keyword string  `yaml:"keyword"`
	Boost   float64 `yaml:"boost"`
}

// InterpretantSpec is one hypothesis declaration in the manifest.
type InterpretantSpec struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	ManifoldID  string          `yaml:"manifold_id"`
	Prior       float64         `yaml:"prior"`
	Likelihood  *LikelihoodSpec `yaml:"likelihood"`
}

// ManifoldEntry is one manifold declaration, with optional governor
// threshold overrides.
type ManifoldEntry struct {
	ID          string
	Family      string
	Description string
	Governor    map[string]float64
}

// Spec is a parsed manifest: interpretant declarations in file order and
// manifold entries keyed by id.
type Spec struct {
	Interpretants []InterpretantSpec
	Manifolds     map[string]ManifoldEntry
}

// #endregion spec-types

// #region raw-yaml

type rawManifest struct {
	Interpretants []rawInterpretant    `yaml:"interpretants"`
	Families      map[string]rawFamily `yaml:"families"`
}

type rawInterpretant struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	ManifoldID  string          `yaml:"manifold_id"`
	Prior       *float64        `yaml:"prior"`
	Likelihood  *LikelihoodSpec `yaml:"likelihood"`
}

type rawFamily struct {
	Manifolds []rawManifoldEntry `yaml:"manifolds"`
}

type rawManifoldEntry struct {
	ID          string             `yaml:"id"`
	Description string             `yaml:"description"`
	Governor    map[string]float64 `yaml:"governor"`
}

// #endregion raw-yaml

// #region load

// Load reads and parses a manifest YAML file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return spec, nil
}

// Parse parses manifest YAML.
func Parse(data []byte) (*Spec, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	spec := &Spec{Manifolds: make(map[string]ManifoldEntry)}
	for _, item := range raw.Interpretants {
		prior := 1.0
		if item.Prior != nil {
			prior = *item.Prior
		}
		likelihood := item.Likelihood
		if likelihood != nil && likelihood.Boost == 0 {
			likelihood = &LikelihoodSpec{Keyword: likelihood.Keyword, Boost: 1.0}
		}
		spec.Interpretants = append(spec.Interpretants, InterpretantSpec{
			ID:          item.ID,
			Description: item.Description,
			ManifoldID:  item.ManifoldID,
			Prior:       prior,
			Likelihood:  likelihood,
		})
	}
	for family, payload := range raw.Families {
		for _, entry := range payload.Manifolds {
			spec.Manifolds[entry.ID] = ManifoldEntry{
				ID:          entry.ID,
				Family:      family,
				Description: entry.Description,
				Governor:    entry.Governor,
			}
		}
	}
	return spec, nil
}

// #endregion load

// #region registry

// Registry maps manifold ids to factories. It is constructed explicitly
// by the caller at startup; there is no package-level registry.
type Registry map[string]func(sign any) *manifold.Manifold

// BuildHypotheses turns manifest interpretant declarations into
// hypotheses using the caller's factory registry. A declaration whose
// manifold id has no registered factory is a ConfigurationError when
// strict, and skipped otherwise.
func BuildHypotheses(spec *Spec, registry Registry, strict bool) ([]interpretant.Hypothesis, error) {
	var hypotheses []interpretant.Hypothesis
	for _, decl := range spec.Interpretants {
		factory, ok := registry[decl.ManifoldID]
		if !ok {
			if strict {
				return nil, &interpretant.ConfigurationError{
					Reason: fmt.Sprintf("no manifold factory registered for %q", decl.ManifoldID),
				}
			}
			continue
		}
		var likelihood func(any) float64
		if decl.Likelihood != nil && decl.Likelihood.Keyword != "" {
			likelihood = keywordLikelihood(decl.Likelihood.Keyword, decl.Likelihood.Boost)
		}
		hypotheses = append(hypotheses, interpretant.Hypothesis{
			ID:          decl.ID,
			Description: decl.Description,
			Prior:       decl.Prior,
			Factory:     factory,
			Likelihood:  likelihood,
		})
	}
	return hypotheses, nil
}

// keywordLikelihood boosts hypotheses whose keyword appears in the sign's
// text, case-insensitively.
func keywordLikelihood(keyword string, boost float64) func(any) float64 {
	lowered := strings.ToLower(keyword)
	return func(sign any) float64 {
		if strings.Contains(strings.ToLower(signText(sign)), lowered) {
			return boost
		}
		return 1.0
	}
}

// signText extracts searchable text from an opaque sign.
func signText(sign any) string {
	switch s := sign.(type) {
	case interface{ SignText() string }:
		return s.SignText()
	case fmt.Stringer:
		return s.String()
	case string:
		return s
	}
	return fmt.Sprintf("%v", sign)
}

// #endregion registry

// #region governor-configs

// BuildGovernorConfigs produces per-manifold-id governor configs from
// manifest overrides layered onto a base config. Manifolds without
// overrides are omitted; they fall through to the controller's default.
func BuildGovernorConfigs(spec *Spec, base governor.Config) map[string]governor.Config {
	configs := make(map[string]governor.Config)
	for id, entry := range spec.Manifolds {
		if len(entry.Governor) == 0 {
			continue
		}
		configs[id] = applyOverrides(base, entry.Governor)
	}
	return configs
}

func applyOverrides(base governor.Config, overrides map[string]float64) governor.Config {
	cfg := base
	for key, value := range overrides {
		switch key {
		case "tension_warn":
			cfg.TensionWarn = value
		case "tension_ruin":
			cfg.TensionRuin = value
		case "velocity_shock":
			cfg.VelocityShock = value
		case "accel_shock":
			v := value
			cfg.AccelShock = &v
		case "max_history":
			cfg.MaxHistory = int(value)
		case "shock_cooldown_steps":
			cfg.ShockCooldownSteps = int(value)
		}
	}
	return cfg
}

// #endregion governor-configs
