package clinical

import (
	"encoding/json"
	"strings"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
)

// #region sign

// Sign is an incoming clinical story: presenting findings plus optional
// bedside follow-up results to merge in.
type Sign struct {
	RadicularPain      bool
	SpasmPresent       bool
	SaddleAnesthesia   bool
	BladderDysfunction bool
	BilateralWeakness  bool
	Progression        bool
	Fever              bool
	Notes              string
	Followup           map[string]bool
}

// SignText exposes the notes for keyword likelihoods.
func (s Sign) SignText() string { return s.Notes }

// ToState projects the sign into a clinical state.
func (s Sign) ToState() State {
	followup := make(map[string]bool, len(s.Followup))
	for k, v := range s.Followup {
		followup[k] = v
	}
	return State{
		RadicularPain:      s.RadicularPain,
		SpasmPresent:       s.SpasmPresent,
		SaddleAnesthesia:   s.SaddleAnesthesia,
		BladderDysfunction: s.BladderDysfunction,
		BilateralWeakness:  s.BilateralWeakness,
		Progression:        s.Progression,
		Fever:              s.Fever,
		Notes:              s.Notes,
		Followup:           followup,
	}
}

// #endregion sign

// #region state

// State is the immutable state inside a clinical manifold.
type State struct {
	RadicularPain      bool
	SpasmPresent       bool
	SaddleAnesthesia   bool
	BladderDysfunction bool
	BilateralWeakness  bool
	Progression        bool
	Fever              bool
	Notes              string
	Followup           map[string]bool
}

// Describe returns a stable JSON description of the findings.
func (s State) Describe() string {
	payload := struct {
		RadicularPain      bool   `json:"radicular_pain"`
		SpasmPresent       bool   `json:"spasm_present"`
		SaddleAnesthesia   bool   `json:"saddle_anesthesia"`
		BladderDysfunction bool   `json:"bladder_dysfunction"`
		BilateralWeakness  bool   `json:"bilateral_weakness"`
		Progression        bool   `json:"progression"`
		Fever              bool   `json:"fever"`
		Notes              string `json:"notes"`
	}{
		s.RadicularPain, s.SpasmPresent, s.SaddleAnesthesia,
		s.BladderDysfunction, s.BilateralWeakness, s.Progression,
		s.Fever, s.Notes,
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// WithFollowupApplied merges bedside follow-up findings into a new state
// and clears the follow-up map. Unknown keys are ignored.
func (s State) WithFollowupApplied() State {
	if len(s.Followup) == 0 {
		return s
	}
	next := s
	next.Followup = nil
	for key, value := range s.Followup {
		switch key {
		case "radicular_pain":
			next.RadicularPain = value
		case "spasm_present":
			next.SpasmPresent = value
		case "saddle_anesthesia":
			next.SaddleAnesthesia = value
		case "bladder_dysfunction":
			next.BladderDysfunction = value
		case "bilateral_weakness":
			next.BilateralWeakness = value
		case "progression":
			next.Progression = value
		case "fever":
			next.Fever = value
		}
	}
	return next
}

// redFlags lists which red flags are present, in fixed order.
func (s State) redFlags() []string {
	var flags []string
	if s.SaddleAnesthesia {
		flags = append(flags, "saddle_anesthesia")
	}
	if s.BladderDysfunction {
		flags = append(flags, "bladder_dysfunction")
	}
	if s.BilateralWeakness {
		flags = append(flags, "bilateral_weakness")
	}
	return flags
}

// #endregion state

// #region constraints

// RequiresRadicularPain gates the radicular manifolds: without radicular
// pain the manifold itself is a mismatch.
type RequiresRadicularPain struct{}

func (RequiresRadicularPain) Name() string { return "requires_radicular_pain" }

func (RequiresRadicularPain) Check(state constraint.State) []constraint.Violation {
	if state.(State).RadicularPain {
		return nil
	}
	return []constraint.Violation{{
		Message:  "No radicular pain present; manifold mismatch.",
		Code:     "missing_radicular",
		Severity: constraint.SeverityError,
	}}
}

// RequiresSpasm is advisory: absence suggests an alternative manifold.
type RequiresSpasm struct{}

func (RequiresSpasm) Name() string { return "requires_spasm" }

func (RequiresSpasm) Check(state constraint.State) []constraint.Violation {
	if state.(State).SpasmPresent {
		return nil
	}
	return []constraint.Violation{{
		Message:  "Spasm not present; consider alternative manifold.",
		Code:     "missing_spasm",
		Severity: constraint.SeverityWarning,
	}}
}

// NoRedFlags fails the benign manifold when any red flag appears.
type NoRedFlags struct{}

func (NoRedFlags) Name() string { return "no_red_flags" }

func (NoRedFlags) Check(state constraint.State) []constraint.Violation {
	flags := state.(State).redFlags()
	if len(flags) == 0 {
		return nil
	}
	return []constraint.Violation{{
		Message:  "Red flags present: " + strings.Join(flags, ", ") + ".",
		Code:     "red_flag_present",
		Severity: constraint.SeverityError,
		Metadata: map[string]any{"flags": flags},
	}}
}

// RedFlagsRequired fails the cauda equina manifold when no red flag is
// present.
type RedFlagsRequired struct{}

func (RedFlagsRequired) Name() string { return "red_flags_required" }

func (RedFlagsRequired) Check(state constraint.State) []constraint.Violation {
	if len(state.(State).redFlags()) > 0 {
		return nil
	}
	return []constraint.Violation{{
		Message:  "No red flags detected; cauda equina manifold likely mismatch.",
		Code:     "missing_red_flags",
		Severity: constraint.SeverityError,
	}}
}

// ProgressionWarning escalates monitoring on progressing symptoms.
type ProgressionWarning struct{}

func (ProgressionWarning) Name() string { return "progression_warning" }

func (ProgressionWarning) Check(state constraint.State) []constraint.Violation {
	if !state.(State).Progression {
		return nil
	}
	return []constraint.Violation{{
		Message:  "Symptoms are progressing; escalate monitoring.",
		Code:     "progression",
		Severity: constraint.SeverityWarning,
	}}
}

// BuildRadicularConstraintSet is the benign radicular-spasm geometry.
func BuildRadicularConstraintSet() *constraint.Set {
	return constraint.NewSet("radicular_spasm",
		RequiresRadicularPain{},
		RequiresSpasm{},
		NoRedFlags{},
		ProgressionWarning{},
	)
}

// BuildCaudaConstraintSet is the red-channel cauda equina geometry.
func BuildCaudaConstraintSet() *constraint.Set {
	return constraint.NewSet("cauda_equina",
		RequiresRadicularPain{},
		RedFlagsRequired{},
		ProgressionWarning{},
	)
}

// #endregion constraints
