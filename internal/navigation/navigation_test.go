package navigation

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
	"github.com/danielpatrickdp/manifold-nav/internal/governor"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// Mini domain: signs carry a level, the manifold flags levels over 5 and
// ruins over 50.

type levelSign struct {
	level int
	bad   bool
}

type levelState struct {
	level int
}

func (s levelState) Describe() string { return "level state" }

type levelLimit struct{}

func (levelLimit) Name() string { return "level_limit" }

func (levelLimit) Check(state constraint.State) []constraint.Violation {
	if state.(levelState).level <= 5 {
		return nil
	}
	return []constraint.Violation{{
		Message:  "level over limit",
		Code:     "level_over_limit",
		Severity: constraint.SeverityError,
	}}
}

func levelManifold(id string) *manifold.Manifold {
	return &manifold.Manifold{
		ID:          id,
		Family:      "levels",
		Constraints: constraint.NewSet(id+"_set", levelLimit{}),
		RuinNodes: []manifold.RuinNode{{
			Name: "over_fifty",
			Predicate: func(s constraint.State) bool {
				return s.(levelState).level > 50
			},
		}},
		Project: func(sign any) (constraint.State, error) {
			ls := sign.(levelSign)
			if ls.bad {
				return nil, &manifold.ConsistencyError{ManifoldID: id, Reason: "bad sign"}
			}
			return levelState{level: ls.level}, nil
		},
	}
}

func levelController(t *testing.T, config ControllerConfig) *Controller {
	t.Helper()
	manager, err := interpretant.NewManager([]interpretant.Hypothesis{
		{ID: "primary", Prior: 0.7, Factory: func(any) *manifold.Manifold { return levelManifold("primary") }},
		{ID: "alternate", Prior: 0.3, Factory: func(any) *manifold.Manifold { return levelManifold("alternate") }},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return NewController(manager, config)
}

func TestStepProducesTraceEntry(t *testing.T) {
	c := levelController(t, DefaultControllerConfig())

	entry, err := c.Step(levelSign{level: 1})
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	if entry.ID == "" {
		t.Fatal("trace entry missing id")
	}
	if entry.Evaluation.ManifoldID != "primary" {
		t.Fatalf("expected primary manifold, got %s", entry.Evaluation.ManifoldID)
	}
	if entry.Decision.Verdict != governor.VerdictContinue {
		t.Fatalf("clean sign should continue, got %s", entry.Decision.Verdict)
	}
	if entry.Posterior["primary"] != 0.7 || entry.Posterior["alternate"] != 0.3 {
		t.Fatalf("posterior snapshot wrong: %v", entry.Posterior)
	}
	if entry.Metadata["manifold_id"] != "primary" {
		t.Fatalf("metadata missing manifold id: %v", entry.Metadata)
	}
	if len(c.Trace()) != 1 {
		t.Fatalf("expected one trace entry, got %d", len(c.Trace()))
	}
}

func TestGovernorHistorySurvivesAcrossSteps(t *testing.T) {
	// Per-manifold governor persists: explicit tensions 0.5, 1.5, 3.0 walk
	// continue → warn → collapse against the default thresholds.
	c := levelController(t, DefaultControllerConfig())

	steps := []struct {
		tension float64
		verdict governor.Verdict
	}{
		{0.5, governor.VerdictContinue},
		{1.5, governor.VerdictWarn},
		{3.0, governor.VerdictCollapse},
	}
	for i, step := range steps {
		entry, err := c.StepWithTension(levelSign{level: 1}, step.tension)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if entry.Decision.Verdict != step.verdict {
			t.Fatalf("step %d: expected %s, got %s", i, step.verdict, entry.Decision.Verdict)
		}
	}
}

func TestProjectionErrorLeavesStateUntouched(t *testing.T) {
	c := levelController(t, DefaultControllerConfig())

	if _, err := c.Step(levelSign{level: 1}); err != nil {
		t.Fatalf("setup step: %v", err)
	}

	_, err := c.Step(levelSign{bad: true})
	if err == nil {
		t.Fatal("expected projection error")
	}
	var ce *manifold.ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConsistencyError, got %T: %v", err, err)
	}

	if len(c.Trace()) != 1 {
		t.Fatalf("failed step leaked into the trace: %d entries", len(c.Trace()))
	}
	// The governor history must still reflect only the successful step:
	// with two zero-tension samples the velocity is zero.
	entry, err := c.StepWithTension(levelSign{level: 1}, 0.0)
	if err != nil {
		t.Fatalf("followup step: %v", err)
	}
	if entry.Decision.Metrics.Velocity != 0 {
		t.Fatalf("failed step leaked into governor history, velocity %v", entry.Decision.Metrics.Velocity)
	}
	if len(c.Trace()) != 2 {
		t.Fatalf("expected two trace entries after recovery, got %d", len(c.Trace()))
	}
}

func TestGovernorOverridePerManifold(t *testing.T) {
	config := DefaultControllerConfig()
	config.GovernorOverrides = map[string]governor.Config{
		"primary": {TensionWarn: 0.1, TensionRuin: 0.2, VelocityShock: 100, MaxHistory: 20},
	}
	c := levelController(t, config)

	entry, err := c.StepWithTension(levelSign{level: 1}, 0.15)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if entry.Decision.Verdict != governor.VerdictWarn {
		t.Fatalf("override thresholds not applied, got %s", entry.Decision.Verdict)
	}
}

func TestRuinSignProducesRuinDecision(t *testing.T) {
	c := levelController(t, DefaultControllerConfig())

	entry, err := c.Step(levelSign{level: 60})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if entry.Decision.Verdict != governor.VerdictRuin {
		t.Fatalf("expected ruin, got %s", entry.Decision.Verdict)
	}
	if entry.Decision.Cause != governor.CauseRuinNode {
		t.Fatalf("expected RUIN_NODE cause, got %s", entry.Decision.Cause)
	}
	if !entry.Evaluation.IsRuin {
		t.Fatal("evaluation should carry the ruin flag")
	}
}

func TestTraceReturnsCopy(t *testing.T) {
	c := levelController(t, DefaultControllerConfig())

	if _, err := c.Step(levelSign{level: 1}); err != nil {
		t.Fatalf("step: %v", err)
	}

	trace := c.Trace()
	trace[0].ID = "tampered"

	if c.Trace()[0].ID == "tampered" {
		t.Fatal("mutating the returned trace leaked into the controller")
	}
}
