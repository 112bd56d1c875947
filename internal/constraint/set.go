package constraint

import "fmt"

// #region set
// Set is a named, ordered collection of constraints. Order affects the
// order of reported violations, never validity.
type Set struct {
	Name        string
	Constraints []Constraint
}

// NewSet creates a constraint set with the given name and constraints.
func NewSet(name string, constraints ...Constraint) *Set {
	return &Set{Name: name, Constraints: constraints}
}

// #endregion set

// #region evaluate

// Evaluate runs every constraint in declaration order and concatenates
// the violations. A constraint whose Check panics contributes a single
// error-severity violation instead of aborting the rest of the set.
func (s *Set) Evaluate(state State) []Violation {
	violations := []Violation{}
	for _, c := range s.Constraints {
		violations = append(violations, checkOne(c, state)...)
	}
	return violations
}

// checkOne isolates a single constraint so a panic inside its check
// logic is converted into an error-severity violation.
func checkOne(c Constraint, state State) (out []Violation) {
	defer func() {
		if r := recover(); r != nil {
			out = []Violation{{
				Message:  fmt.Sprintf("constraint %q failed during evaluation: %v", c.Name(), r),
				Code:     "constraint_panic",
				Severity: SeverityError,
				Metadata: map[string]any{"constraint": c.Name()},
			}}
		}
	}()
	return c.Check(state)
}

// #endregion evaluate

// #region evaluate-state

// EvaluateState evaluates the set and packages the outcome. A state is
// valid when no violation carries error severity.
func (s *Set) EvaluateState(state State) Result {
	violations := s.Evaluate(state)
	isValid := true
	for _, v := range violations {
		if v.Severity == SeverityError {
			isValid = false
			break
		}
	}
	return Result{
		IsValid:          isValid,
		Violations:       violations,
		StateDescription: state.Describe(),
		Metadata: map[string]any{
			"constraint_set":  s.Name,
			"violation_count": len(violations),
		},
	}
}

// #endregion evaluate-state
