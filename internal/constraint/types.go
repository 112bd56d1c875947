package constraint

// #region severity
// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// #endregion severity

// #region violation
// Violation is a single breach of a constraint.
type Violation struct {
	Message  string
	Code     string
	Severity Severity
	Metadata map[string]any
}

// #endregion violation

// #region state
// State is the minimal contract for anything a constraint can inspect.
// Domain packages implement this with their own value types.
type State interface {
	// Describe returns a stable textual description of the state,
	// used for logging and dedup rather than identity comparison.
	Describe() string
}

// #endregion state

// #region constraint
// Constraint inspects a state and returns zero or more violations.
// Implementations must be pure: no side effects, same state in,
// identical violations out.
type Constraint interface {
	Name() string
	Check(state State) []Violation
}

// #endregion constraint

// #region result
// Result bundles one full evaluation of a constraint set against a state.
type Result struct {
	IsValid          bool
	Violations       []Violation
	StateDescription string
	Metadata         map[string]any
}

// #endregion result
