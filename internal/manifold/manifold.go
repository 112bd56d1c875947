package manifold

import (
	"fmt"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
)

// #region rules

// TransformRule rewrites a state before constraint evaluation. Rules are
// applied in declaration order; each must be a pure State → State function.
type TransformRule struct {
	Name        string
	Description string
	Apply       func(constraint.State) constraint.State
}

// RuinNode marks a state as catastrophically invalid. Predicates run
// against the post-transformation state only.
type RuinNode struct {
	Name        string
	Description string
	Predicate   func(constraint.State) bool
}

// #endregion rules

// #region consistency-error

// ConsistencyError reports a sign that cannot be projected into a valid
// state. This is a caller wiring bug, surfaced immediately and never
// retried inside the core.
type ConsistencyError struct {
	ManifoldID string
	Reason     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("manifold %s: inconsistent sign: %s", e.ManifoldID, e.Reason)
}

// #endregion consistency-error

// #region manifold

// Manifold bundles one hypothesis about what a sign means: a projection
// from sign to state, an ordered list of transformation rules, ruin
// predicates, and a constraint set. Instances are transient: one per
// evaluation, discarded afterwards.
type Manifold struct {
	ID          string
	Family      string
	Constraints *constraint.Set
	Rules       []TransformRule
	RuinNodes   []RuinNode

	// Seeds and SuccessSignatures are opaque manifold annotations carried
	// into evaluation metadata for downstream consumers.
	Seeds             map[string]any
	SuccessSignatures []string

	// Project maps a sign into the manifold's initial state.
	Project func(sign any) (constraint.State, error)

	// Enrich, when set, lets a domain attach extra metadata (e.g. a
	// distance hint) to the finished evaluation.
	Enrich func(*Evaluation)
}

// #endregion manifold

// #region evaluation

// Evaluation is the immutable result of running a manifold on one sign.
type Evaluation struct {
	ManifoldID        string
	Family            string
	State             constraint.State
	Result            constraint.Result
	IsRuin            bool
	AppliedTransforms []string
	RuinHits          []string
	Metadata          map[string]any
}

// #endregion evaluation

// #region run

// Run projects the sign, applies transformation rules in order, checks
// ruin nodes against the final state, evaluates constraints, and packages
// the evaluation. Ruin is a property of the post-transformation state,
// not the raw input.
func (m *Manifold) Run(sign any) (Evaluation, error) {
	if m.Project == nil {
		return Evaluation{}, &ConsistencyError{ManifoldID: m.ID, Reason: "no projection configured"}
	}
	state, err := m.Project(sign)
	if err != nil {
		if ce, ok := err.(*ConsistencyError); ok {
			return Evaluation{}, ce
		}
		return Evaluation{}, &ConsistencyError{ManifoldID: m.ID, Reason: err.Error()}
	}
	return m.evaluateState(state), nil
}

func (m *Manifold) evaluateState(state constraint.State) Evaluation {
	applied := make([]string, 0, len(m.Rules))
	for _, rule := range m.Rules {
		state = rule.Apply(state)
		applied = append(applied, rule.Name)
	}

	ruinHits := []string{}
	for _, node := range m.RuinNodes {
		if node.Predicate(state) {
			ruinHits = append(ruinHits, node.Name)
		}
	}

	result := m.Constraints.EvaluateState(state)

	eval := Evaluation{
		ManifoldID:        m.ID,
		Family:            m.Family,
		State:             state,
		Result:            result,
		IsRuin:            len(ruinHits) > 0,
		AppliedTransforms: applied,
		RuinHits:          ruinHits,
		Metadata: map[string]any{
			"constraint_set": m.Constraints.Name,
		},
	}
	if len(m.Seeds) > 0 {
		eval.Metadata["seeds"] = m.Seeds
	}
	if len(m.SuccessSignatures) > 0 {
		eval.Metadata["success_signatures"] = m.SuccessSignatures
	}
	if m.Enrich != nil {
		m.Enrich(&eval)
	}
	return eval
}

// #endregion run
