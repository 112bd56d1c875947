package governor

import (
	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// #region tension-fn

// TensionFn maps a manifold evaluation into a scalar tension.
type TensionFn func(manifold.Evaluation) float64

// DefaultTension sums severity weights over all violations (error 1.0,
// warning 0.5, info 0.1, unknown 0.5), adds 2.0 when the manifold
// reported ruin, plus any numeric "distance" hint a domain placed in the
// evaluation metadata.
func DefaultTension(eval manifold.Evaluation) float64 {
	score := 0.0
	for _, v := range eval.Result.Violations {
		switch v.Severity {
		case constraint.SeverityError:
			score += 1.0
		case constraint.SeverityWarning:
			score += 0.5
		case constraint.SeverityInfo:
			score += 0.1
		default:
			score += 0.5
		}
	}
	if eval.IsRuin {
		score += 2.0
	}
	if d, ok := numericMetadata(eval.Metadata, "distance"); ok {
		score += d
	}
	return score
}

// numericMetadata reads an optional numeric addend from evaluation
// metadata, tolerating the int/float types domains actually produce.
func numericMetadata(meta map[string]any, key string) (float64, bool) {
	raw, ok := meta[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// #endregion tension-fn

// #region governor-struct

// Governor converts tension dynamics into a bounded decision. One
// instance per manifold id; it owns a FIFO-bounded tension history and a
// shock cooldown counter, both mutated only by Evaluate.
type Governor struct {
	config    Config
	tensionFn TensionFn

	history           []float64
	cooldownRemaining int
}

// New creates a governor with the default tension function.
func New(config Config) *Governor {
	return NewWithTension(config, DefaultTension)
}

// NewWithTension creates a governor with a custom tension function.
func NewWithTension(config Config, fn TensionFn) *Governor {
	if config.MaxHistory < 1 {
		config.MaxHistory = 1
	}
	if fn == nil {
		fn = DefaultTension
	}
	return &Governor{config: config, tensionFn: fn}
}

// Config returns the immutable configuration this governor was built from.
func (g *Governor) Config() Config {
	return g.config
}

// History returns a copy of the retained tension samples, oldest first.
func (g *Governor) History() []float64 {
	return append([]float64(nil), g.history...)
}

// CooldownRemaining returns the current shock cooldown counter.
func (g *Governor) CooldownRemaining() int {
	return g.cooldownRemaining
}

// #endregion governor-struct

// #region evaluate

// Evaluate computes the tension from the evaluation and decides.
func (g *Governor) Evaluate(eval manifold.Evaluation) Decision {
	return g.decide(eval, g.tensionFn(eval))
}

// EvaluateTension decides using a caller-supplied tension instead of the
// configured tension function.
func (g *Governor) EvaluateTension(eval manifold.Evaluation, tension float64) Decision {
	return g.decide(eval, tension)
}

// decide appends the tension sample, recomputes the window metrics, and
// applies the precedence order: ruin > accel shock > velocity shock >
// absolute collapse > warn > continue. First match wins.
func (g *Governor) decide(eval manifold.Evaluation, tension float64) Decision {
	g.push(tension)

	metrics := Metrics{
		Tension:  g.last(),
		Velocity: g.velocity(),
		Accel:    g.accel(),
	}

	verdict := VerdictContinue
	cause := CauseNone

	switch {
	case eval.IsRuin || len(eval.RuinHits) > 0:
		verdict, cause = VerdictRuin, CauseRuinNode
	case g.config.AccelShock != nil && metrics.Accel >= *g.config.AccelShock:
		verdict, cause = VerdictCollapse, CauseShockAccel
	case metrics.Velocity >= g.config.VelocityShock:
		verdict, cause = VerdictCollapse, CauseShockVelocity
		if g.config.ShockCooldownSteps > 0 {
			g.cooldownRemaining = g.config.ShockCooldownSteps
		}
	case metrics.Tension >= g.config.TensionRuin:
		verdict, cause = VerdictCollapse, CauseAbsTension
	case metrics.Tension >= g.config.TensionWarn:
		verdict, cause = VerdictWarn, CauseAbsTension
	}

	// The cooldown counter only drains on continue. It is surfaced in
	// metadata for observability; it does not suppress later decisions.
	if g.cooldownRemaining > 0 && verdict == VerdictContinue {
		g.cooldownRemaining--
	}

	return Decision{
		Verdict: verdict,
		Cause:   cause,
		Metrics: metrics,
		Metadata: map[string]any{
			"manifold_id":              eval.ManifoldID,
			"family":                   eval.Family,
			"active_transforms":        eval.AppliedTransforms,
			"ruin_hits":                eval.RuinHits,
			"shock_cooldown_remaining": g.cooldownRemaining,
		},
	}
}

// #endregion evaluate

// #region history

// push appends a tension sample, dropping the oldest entries once the
// history exceeds MaxHistory.
func (g *Governor) push(tension float64) {
	g.history = append(g.history, tension)
	if overflow := len(g.history) - g.config.MaxHistory; overflow > 0 {
		g.history = append(g.history[:0], g.history[overflow:]...)
	}
}

func (g *Governor) last() float64 {
	if len(g.history) == 0 {
		return 0
	}
	return g.history[len(g.history)-1]
}

// velocity is the difference of the two most recent samples.
func (g *Governor) velocity() float64 {
	n := len(g.history)
	if n < 2 {
		return 0
	}
	return g.history[n-1] - g.history[n-2]
}

// accel is the difference of the two most recent velocities, which needs
// the three most recent samples.
func (g *Governor) accel() float64 {
	n := len(g.history)
	if n < 3 {
		return 0
	}
	v1 := g.history[n-1] - g.history[n-2]
	v0 := g.history[n-2] - g.history[n-3]
	return v1 - v0
}

// #endregion history
