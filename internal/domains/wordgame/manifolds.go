package wordgame

import (
	"strings"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// #region projection

func projectSign(id string) func(any) (constraint.State, error) {
	return func(sign any) (constraint.State, error) {
		s, ok := sign.(Sign)
		if !ok {
			return nil, &manifold.ConsistencyError{
				ManifoldID: id,
				Reason:     "sign is not a word puzzle sign",
			}
		}
		if s.Letters == "" || s.Candidate == "" {
			return nil, &manifold.ConsistencyError{
				ManifoldID: id,
				Reason:     "sign is missing letters or candidate",
			}
		}
		return State{Letters: s.Letters, Candidate: s.Candidate}, nil
	}
}

// enrich attaches puzzle scoring hints. The distance feeds the governor's
// default tension as the optional numeric addend.
func enrich(eval *manifold.Evaluation) {
	state := eval.State.(State)
	eval.Metadata["distance"] = float64(Distance(state))
	eval.Metadata["quality_score"] = QualityScore(state)
	eval.Metadata["repair_hints"] = RepairHints(state)
}

// #endregion projection

// #region strict

// missingRequired builds a ruin node that fires when the candidate lacks
// a required letter.
func missingRequired(letter string) manifold.RuinNode {
	upper := strings.ToUpper(letter)
	return manifold.RuinNode{
		Name:        "missing_" + strings.ToLower(letter),
		Description: "Required letter " + upper + " not present.",
		Predicate: func(state constraint.State) bool {
			return !strings.Contains(strings.ToUpper(state.(State).Candidate), upper)
		},
	}
}

// NewStrictManifold interprets the puzzle letter-for-letter; the hidden U
// is mandatory.
func NewStrictManifold() *manifold.Manifold {
	return &manifold.Manifold{
		ID:                "strict_set",
		Family:            "puzzle",
		Constraints:       BuildConstraintSet("strict_word_puzzle"),
		RuinNodes:         []manifold.RuinNode{missingRequired("U")},
		SuccessSignatures: []string{"exact_letter_use"},
		Project:           projectSign("strict_set"),
		Enrich:            enrich,
	}
}

// #endregion strict

// #region phonetic

func collapseIJ(state constraint.State) constraint.State {
	ws := state.(State)
	return State{
		Letters:   strings.ReplaceAll(ws.Letters, "J", "I"),
		Candidate: strings.ReplaceAll(ws.Candidate, "J", "I"),
	}
}

// dropSilentU removes U from the letter pool when the candidate does not
// use it.
func dropSilentU(state constraint.State) constraint.State {
	ws := state.(State)
	if strings.Contains(strings.ToUpper(ws.Candidate), "U") {
		return ws
	}
	return State{
		Letters:   strings.ReplaceAll(ws.Letters, "U", ""),
		Candidate: ws.Candidate,
	}
}

// NewPhoneticManifold treats I and J as phonetic variants and permits a
// silent, unused U.
func NewPhoneticManifold() *manifold.Manifold {
	return &manifold.Manifold{
		ID:          "phonetic_variant",
		Family:      "puzzle",
		Constraints: BuildConstraintSet("phonetic_word_puzzle"),
		Rules: []manifold.TransformRule{
			{
				Name:        "i_j_interchange",
				Description: "Treat I and J as phonetic variants for this manifold.",
				Apply:       collapseIJ,
			},
			{
				Name:        "allow_silent_u",
				Description: "Silent U is permitted; drop it from the letter set if unused.",
				Apply:       dropSilentU,
			},
		},
		Seeds:             map[string]any{"optional_letters": []string{"U"}},
		SuccessSignatures: []string{"phonetic_alignment"},
		Project:           projectSign("phonetic_variant"),
		Enrich:            enrich,
	}
}

// #endregion phonetic

// #region hypotheses

// Hypotheses returns the standard strict-vs-phonetic hypothesis pair.
func Hypotheses() []interpretant.Hypothesis {
	return []interpretant.Hypothesis{
		{
			ID:          "strict",
			Description: "Letter-for-letter interpretation; hidden U is mandatory.",
			Prior:       0.55,
			Factory:     func(any) *manifold.Manifold { return NewStrictManifold() },
		},
		{
			ID:          "phonetic",
			Description: "Phonetic variant allows I/J swap and silent U.",
			Prior:       0.45,
			Factory:     func(any) *manifold.Manifold { return NewPhoneticManifold() },
			Likelihood: func(sign any) float64 {
				if s, ok := sign.(Sign); ok && strings.Contains(strings.ToUpper(s.Letters), "PHONETIC") {
					return 1.5
				}
				return 1.0
			},
		},
	}
}

// Registry returns the factory registry for manifest-driven wiring.
func Registry() map[string]func(any) *manifold.Manifold {
	return map[string]func(any) *manifold.Manifold{
		"strict_set":       func(any) *manifold.Manifold { return NewStrictManifold() },
		"phonetic_variant": func(any) *manifold.Manifold { return NewPhoneticManifold() },
	}
}

// #endregion hypotheses
