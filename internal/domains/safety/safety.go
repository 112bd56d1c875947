package safety

import (
	"encoding/json"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// #region sign-state

// Sign is a safety-routing observation from an upstream monitor.
type Sign struct {
	CriticalSignal  bool
	PolicyViolation bool
	Notes           string
}

// SignText exposes the notes for keyword likelihoods.
func (s Sign) SignText() string { return s.Notes }

// ToState projects the sign into a safety state.
func (s Sign) ToState() State {
	return State(s)
}

// State is the immutable state inside a safety manifold.
type State struct {
	CriticalSignal  bool
	PolicyViolation bool
	Notes           string
}

// Describe returns a stable JSON description.
func (s State) Describe() string {
	payload := struct {
		CriticalSignal  bool   `json:"critical_signal"`
		PolicyViolation bool   `json:"policy_violation"`
		Notes           string `json:"notes"`
	}{s.CriticalSignal, s.PolicyViolation, s.Notes}
	data, _ := json.Marshal(payload)
	return string(data)
}

// #endregion sign-state

// #region constraints

// NoCriticalSignal fails the blue channel when a critical signal arrives.
type NoCriticalSignal struct{}

func (NoCriticalSignal) Name() string { return "no_critical_signal" }

func (NoCriticalSignal) Check(state constraint.State) []constraint.Violation {
	if !state.(State).CriticalSignal {
		return nil
	}
	return []constraint.Violation{{
		Message:  "Critical signal detected; route to red channel.",
		Code:     "critical_signal_present",
		Severity: constraint.SeverityError,
	}}
}

// RequiresCriticalSignal fails the red channel without a critical signal.
type RequiresCriticalSignal struct{}

func (RequiresCriticalSignal) Name() string { return "requires_critical_signal" }

func (RequiresCriticalSignal) Check(state constraint.State) []constraint.Violation {
	if state.(State).CriticalSignal {
		return nil
	}
	return []constraint.Violation{{
		Message:  "No critical signal; red channel likely mismatch.",
		Code:     "missing_critical_signal",
		Severity: constraint.SeverityError,
	}}
}

// NoPolicyViolation rejects any state carrying a policy violation.
type NoPolicyViolation struct{}

func (NoPolicyViolation) Name() string { return "no_policy_violation" }

func (NoPolicyViolation) Check(state constraint.State) []constraint.Violation {
	if !state.(State).PolicyViolation {
		return nil
	}
	return []constraint.Violation{{
		Message:  "Policy violation detected.",
		Code:     "policy_violation",
		Severity: constraint.SeverityError,
	}}
}

// EscalationNotice flags context notes for careful review.
type EscalationNotice struct{}

func (EscalationNotice) Name() string { return "escalation_notice" }

func (EscalationNotice) Check(state constraint.State) []constraint.Violation {
	if state.(State).Notes == "" {
		return nil
	}
	return []constraint.Violation{{
		Message:  "Context notes present; review carefully.",
		Code:     "context_notes",
		Severity: constraint.SeverityWarning,
	}}
}

// BuildBlueConstraintSet is the routine/blue channel geometry.
func BuildBlueConstraintSet() *constraint.Set {
	return constraint.NewSet("blue_channel",
		NoCriticalSignal{},
		NoPolicyViolation{},
		EscalationNotice{},
	)
}

// BuildRedConstraintSet is the escalation/red channel geometry.
func BuildRedConstraintSet() *constraint.Set {
	return constraint.NewSet("red_channel",
		RequiresCriticalSignal{},
		EscalationNotice{},
	)
}

// #endregion constraints

// #region manifolds

func projectSign(id string) func(any) (constraint.State, error) {
	return func(sign any) (constraint.State, error) {
		s, ok := sign.(Sign)
		if !ok {
			return nil, &manifold.ConsistencyError{
				ManifoldID: id,
				Reason:     "sign is not a safety sign",
			}
		}
		return s.ToState(), nil
	}
}

// NewBlueChannelManifold handles routine traffic with no critical signals.
func NewBlueChannelManifold() *manifold.Manifold {
	return &manifold.Manifold{
		ID:                "blue_channel",
		Family:            "safety",
		Constraints:       BuildBlueConstraintSet(),
		Seeds:             map[string]any{"channel": "blue"},
		SuccessSignatures: []string{"routine_clearance"},
		Project:           projectSign("blue_channel"),
	}
}

// NewRedChannelManifold handles critical signals; a policy violation is
// ruin and halts immediately.
func NewRedChannelManifold() *manifold.Manifold {
	return &manifold.Manifold{
		ID:          "red_channel",
		Family:      "safety",
		Constraints: BuildRedConstraintSet(),
		RuinNodes: []manifold.RuinNode{{
			Name:        "policy_violation_ruin",
			Description: "Immediate halt on policy violation.",
			Predicate: func(state constraint.State) bool {
				return state.(State).PolicyViolation
			},
		}},
		Seeds:             map[string]any{"channel": "red"},
		SuccessSignatures: []string{"escalation_active"},
		Project:           projectSign("red_channel"),
	}
}

// #endregion manifolds

// #region hypotheses

// Hypotheses returns the blue-vs-red channel hypothesis pair.
func Hypotheses() []interpretant.Hypothesis {
	return []interpretant.Hypothesis{
		{
			ID:          "blue_channel",
			Description: "Routine/blue channel; no critical signals.",
			Prior:       0.6,
			Factory:     func(any) *manifold.Manifold { return NewBlueChannelManifold() },
		},
		{
			ID:          "red_channel",
			Description: "Red channel for critical signals; policy violation is ruin.",
			Prior:       0.4,
			Factory:     func(any) *manifold.Manifold { return NewRedChannelManifold() },
			Likelihood: func(sign any) float64 {
				if s, ok := sign.(Sign); ok && s.CriticalSignal {
					return 2.0
				}
				return 1.0
			},
		},
	}
}

// Registry returns the factory registry for manifest-driven wiring.
func Registry() map[string]func(any) *manifold.Manifold {
	return map[string]func(any) *manifold.Manifold{
		"blue_channel": func(any) *manifold.Manifold { return NewBlueChannelManifold() },
		"red_channel":  func(any) *manifold.Manifold { return NewRedChannelManifold() },
	}
}

// #endregion hypotheses
