package governor

// #region verdict
// Verdict enumerates the bounded decisions a governor can produce.
type Verdict string

const (
	VerdictContinue Verdict = "continue"
	VerdictWarn     Verdict = "warn"
	VerdictCollapse Verdict = "collapse"
	VerdictRuin     Verdict = "ruin"
)

// #endregion verdict

// #region cause
// Cause identifies which rule produced a non-continue verdict.
type Cause string

const (
	CauseNone          Cause = ""
	CauseRuinNode      Cause = "RUIN_NODE"
	CauseShockAccel    Cause = "SHOCK_ACCEL"
	CauseShockVelocity Cause = "SHOCK_VELOCITY"
	CauseAbsTension    Cause = "ABS_TENSION"
)

// #endregion cause

// #region config
// Config holds governor thresholds. Immutable once a governor is
// constructed from it.
type Config struct {
	TensionWarn   float64
	TensionRuin   float64
	VelocityShock float64

	// AccelShock enables the acceleration shock rule when non-nil.
	AccelShock *float64

	MaxHistory         int // tension samples retained; minimum 1
	ShockCooldownSteps int // cooldown armed on velocity shock
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		TensionWarn:        1.0,
		TensionRuin:        2.0,
		VelocityShock:      5.0,
		AccelShock:         nil,
		MaxHistory:         20,
		ShockCooldownSteps: 0,
	}
}

// #endregion config

// #region metrics
// Metrics carries the tension dynamics behind a decision. Velocity is the
// first difference of the two most recent samples, accel the difference
// of the two most recent velocities.
type Metrics struct {
	Tension  float64
	Velocity float64
	Accel    float64
}

// #endregion metrics

// #region decision
// Decision is the outcome of one governor evaluation. Produced fresh each
// call; the governor retains only the numeric history behind it.
type Decision struct {
	Verdict  Verdict
	Cause    Cause
	Metrics  Metrics
	Metadata map[string]any
}

// #endregion decision
