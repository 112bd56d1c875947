package clinical

import (
	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// #region wiring

var redFlagSeeds = map[string]any{
	"red_flags": []string{"saddle_anesthesia", "bladder_dysfunction", "bilateral_weakness"},
}

func projectSign(id string) func(any) (constraint.State, error) {
	return func(sign any) (constraint.State, error) {
		s, ok := sign.(Sign)
		if !ok {
			return nil, &manifold.ConsistencyError{
				ManifoldID: id,
				Reason:     "sign is not a clinical sign",
			}
		}
		return s.ToState(), nil
	}
}

func applyFollowup() manifold.TransformRule {
	return manifold.TransformRule{
		Name:        "apply_followup",
		Description: "Merge bedside follow-up findings into the state.",
		Apply: func(state constraint.State) constraint.State {
			return state.(State).WithFollowupApplied()
		},
	}
}

// ruinOnRedFlags fires on the hard red flags that demand immediate
// escalation regardless of tension.
func ruinOnRedFlags(state constraint.State) bool {
	cs := state.(State)
	return cs.SaddleAnesthesia || cs.BladderDysfunction
}

// #endregion wiring

// #region manifolds

// NewRadicularSpasmManifold models radicular pain with spasm and no red
// flags; red flags appearing after follow-up are ruin.
func NewRadicularSpasmManifold() *manifold.Manifold {
	return &manifold.Manifold{
		ID:          "radicular_spasm",
		Family:      "clinical",
		Constraints: BuildRadicularConstraintSet(),
		Rules:       []manifold.TransformRule{applyFollowup()},
		RuinNodes: []manifold.RuinNode{{
			Name:        "red_flag_ruin",
			Description: "Immediate escalation if red flags appear.",
			Predicate:   ruinOnRedFlags,
		}},
		Seeds:             redFlagSeeds,
		SuccessSignatures: []string{"spasm_breakthrough"},
		Project:           projectSign("radicular_spasm"),
	}
}

// NewCaudaEquinaManifold is the red-channel manifold for cauda equina
// presentations.
func NewCaudaEquinaManifold() *manifold.Manifold {
	return &manifold.Manifold{
		ID:                "cauda_equina",
		Family:            "clinical",
		Constraints:       BuildCaudaConstraintSet(),
		Rules:             []manifold.TransformRule{applyFollowup()},
		Seeds:             redFlagSeeds,
		SuccessSignatures: []string{"red_channel_engaged"},
		Project:           projectSign("cauda_equina"),
	}
}

// #endregion manifolds

// #region hypotheses

// Hypotheses returns the radicular-vs-cauda hypothesis pair.
func Hypotheses() []interpretant.Hypothesis {
	return []interpretant.Hypothesis{
		{
			ID:          "radicular_spasm",
			Description: "Radicular pain with spasm, no red flags.",
			Prior:       0.6,
			Factory:     func(any) *manifold.Manifold { return NewRadicularSpasmManifold() },
		},
		{
			ID:          "cauda_equina",
			Description: "Red-channel manifold for cauda equina red flags.",
			Prior:       0.4,
			Factory:     func(any) *manifold.Manifold { return NewCaudaEquinaManifold() },
			Likelihood: func(sign any) float64 {
				if s, ok := sign.(Sign); ok && (s.SaddleAnesthesia || s.BladderDysfunction) {
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
		"radicular_spasm": func(any) *manifold.Manifold { return NewRadicularSpasmManifold() },
		"cauda_equina":    func(any) *manifold.Manifold { return NewCaudaEquinaManifold() },
	}
}

// #endregion hypotheses
