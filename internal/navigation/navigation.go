package navigation

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/manifold-nav/internal/governor"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// #region trace-entry

// TraceEntry records one full navigation step: the sign, the selected
// manifold's evaluation, the governor decision, and a posterior snapshot.
// Entries are never mutated after creation.
type TraceEntry struct {
	ID         string
	Sign       any
	Evaluation manifold.Evaluation
	Decision   governor.Decision
	Posterior  map[string]float64
	Metadata   map[string]any
	CreatedAt  time.Time
}

// #endregion trace-entry

// #region controller-config

// ControllerConfig wires per-manifold governor overrides around a shared
// default.
type ControllerConfig struct {
	GovernorOverrides map[string]governor.Config
	DefaultGovernor   governor.Config
}

// DefaultControllerConfig uses the default governor thresholds for every
// manifold id.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{DefaultGovernor: governor.DefaultConfig()}
}

// #endregion controller-config

// #region controller

// Controller wires interpretant → manifold → governor for one sign at a
// time. It keeps one governor per manifold id so tension history survives
// across steps, and appends an immutable trace entry per step.
//
// A controller is single-owner: Step mutates governor state in place and
// the velocity/accel math depends on call order, so concurrent callers
// must serialize externally. Separate controllers share nothing.
type Controller struct {
	manager   *interpretant.Manager
	overrides map[string]governor.Config
	defaults  governor.Config
	governors map[string]*governor.Governor
	trace     []TraceEntry
}

// NewController creates a controller around a configured interpretant
// manager.
func NewController(manager *interpretant.Manager, config ControllerConfig) *Controller {
	overrides := make(map[string]governor.Config, len(config.GovernorOverrides))
	for id, cfg := range config.GovernorOverrides {
		overrides[id] = cfg
	}
	return &Controller{
		manager:   manager,
		overrides: overrides,
		defaults:  config.DefaultGovernor,
		governors: make(map[string]*governor.Governor),
	}
}

// governorFor fetches or lazily creates the governor for a manifold id,
// using that id's override config when one exists.
func (c *Controller) governorFor(manifoldID string) *governor.Governor {
	if g, ok := c.governors[manifoldID]; ok {
		return g
	}
	cfg, ok := c.overrides[manifoldID]
	if !ok {
		cfg = c.defaults
	}
	g := governor.New(cfg)
	c.governors[manifoldID] = g
	return g
}

// #endregion controller

// #region step

// Step runs one full navigation cycle for a sign. On error, neither the
// governor history nor the trace is modified.
func (c *Controller) Step(sign any) (TraceEntry, error) {
	return c.step(sign, nil)
}

// StepWithTension runs one cycle with a caller-supplied tension instead
// of the default tension function.
func (c *Controller) StepWithTension(sign any, tension float64) (TraceEntry, error) {
	return c.step(sign, &tension)
}

func (c *Controller) step(sign any, tension *float64) (TraceEntry, error) {
	// Interpretant selects the manifold (updating the posterior).
	m := c.manager.Select(sign)
	posterior := c.manager.Posterior()

	// Evaluate the manifold; a projection failure surfaces here, before
	// any governor or trace mutation.
	eval, err := m.Run(sign)
	if err != nil {
		return TraceEntry{}, err
	}

	g := c.governorFor(eval.ManifoldID)
	var decision governor.Decision
	if tension != nil {
		decision = g.EvaluateTension(eval, *tension)
	} else {
		decision = g.Evaluate(eval)
	}

	entry := TraceEntry{
		ID:         uuid.New().String(),
		Sign:       sign,
		Evaluation: eval,
		Decision:   decision,
		Posterior:  posterior,
		Metadata: map[string]any{
			"manifold_id": eval.ManifoldID,
			"family":      eval.Family,
			"decision":    string(decision.Verdict),
			"cause":       string(decision.Cause),
			"tension":     decision.Metrics.Tension,
			"velocity":    decision.Metrics.Velocity,
			"accel":       decision.Metrics.Accel,
		},
		CreatedAt: time.Now().UTC(),
	}
	c.trace = append(c.trace, entry)

	log.Printf("[NAV] step: manifold=%s family=%s decision=%s cause=%s tension=%.3f",
		eval.ManifoldID, eval.Family, decision.Verdict, decision.Cause, decision.Metrics.Tension)

	return entry, nil
}

// #endregion step

// #region trace

// Trace returns a copy of the append-only trace, oldest first.
func (c *Controller) Trace() []TraceEntry {
	return append([]TraceEntry(nil), c.trace...)
}

// #endregion trace
