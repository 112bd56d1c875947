package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/manifold-nav/internal/domains/clinical"
	"github.com/danielpatrickdp/manifold-nav/internal/domains/safety"
	"github.com/danielpatrickdp/manifold-nav/internal/domains/wordgame"
	"github.com/danielpatrickdp/manifold-nav/internal/governor"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a
// recorded sign stream for one domain plus the expected decisions.
type Fixture struct {
	Description string                 `json:"description"`
	Domain      string                 `json:"domain"` // "word_game" | "clinical" | "safety"
	Governor    *FixtureGovernorConfig `json:"governor,omitempty"`
	Signs       []FixtureSign          `json:"signs"`
	Expected    []FixtureExpected      `json:"expected"`
}

// FixtureGovernorConfig mirrors governor.Config with JSON tags.
type FixtureGovernorConfig struct {
	TensionWarn        float64  `json:"tension_warn"`
	TensionRuin        float64  `json:"tension_ruin"`
	VelocityShock      float64  `json:"velocity_shock"`
	AccelShock         *float64 `json:"accel_shock,omitempty"`
	MaxHistory         int      `json:"max_history"`
	ShockCooldownSteps int      `json:"shock_cooldown_steps"`
}

// FixtureSign is one recorded observation. Only the fields of the
// fixture's domain are read; Tension overrides the default tension
// function when present.
type FixtureSign struct {
	ID      string   `json:"id"`
	Tension *float64 `json:"tension,omitempty"`

	// word_game
	Letters   string `json:"letters,omitempty"`
	Candidate string `json:"candidate,omitempty"`

	// clinical
	RadicularPain      bool            `json:"radicular_pain,omitempty"`
	SpasmPresent       bool            `json:"spasm_present,omitempty"`
	SaddleAnesthesia   bool            `json:"saddle_anesthesia,omitempty"`
	BladderDysfunction bool            `json:"bladder_dysfunction,omitempty"`
	BilateralWeakness  bool            `json:"bilateral_weakness,omitempty"`
	Progression        bool            `json:"progression,omitempty"`
	Fever              bool            `json:"fever,omitempty"`
	Followup           map[string]bool `json:"followup,omitempty"`

	// safety
	CriticalSignal  bool `json:"critical_signal,omitempty"`
	PolicyViolation bool `json:"policy_violation,omitempty"`

	// shared
	Notes string `json:"notes,omitempty"`
}

// FixtureExpected captures the expected verdict (and optionally cause)
// per sign.
type FixtureExpected struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
	Cause    string `json:"cause,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSign converts a fixture sign into the domain sign type.
func (fs *FixtureSign) ToSign(domain string) (any, error) {
	switch domain {
	case "word_game":
		return wordgame.Sign{Letters: fs.Letters, Candidate: fs.Candidate}, nil
	case "clinical":
		return clinical.Sign{
			RadicularPain:      fs.RadicularPain,
			SpasmPresent:       fs.SpasmPresent,
			SaddleAnesthesia:   fs.SaddleAnesthesia,
			BladderDysfunction: fs.BladderDysfunction,
			BilateralWeakness:  fs.BilateralWeakness,
			Progression:        fs.Progression,
			Fever:              fs.Fever,
			Notes:              fs.Notes,
			Followup:           fs.Followup,
		}, nil
	case "safety":
		return safety.Sign{
			CriticalSignal:  fs.CriticalSignal,
			PolicyViolation: fs.PolicyViolation,
			Notes:           fs.Notes,
		}, nil
	}
	return nil, fmt.Errorf("unknown fixture domain %q", domain)
}

// ToGovernorConfig converts fixture overrides to a governor config,
// falling back to defaults when absent.
func (f *Fixture) ToGovernorConfig() governor.Config {
	if f.Governor == nil {
		return governor.DefaultConfig()
	}
	return governor.Config{
		TensionWarn:        f.Governor.TensionWarn,
		TensionRuin:        f.Governor.TensionRuin,
		VelocityShock:      f.Governor.VelocityShock,
		AccelShock:         f.Governor.AccelShock,
		MaxHistory:         f.Governor.MaxHistory,
		ShockCooldownSteps: f.Governor.ShockCooldownSteps,
	}
}

// #endregion fixture-loader
