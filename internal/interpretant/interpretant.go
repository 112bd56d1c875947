package interpretant

import (
	"fmt"

	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

// likelihoodFloor keeps every hypothesis reachable: a configured
// likelihood function can never starve a hypothesis to exactly zero.
const likelihoodFloor = 1e-9

// #region hypothesis

// Hypothesis is one weighted interpretation of incoming signs. It knows
// how to instantiate a manifold for a sign and optionally supplies a
// likelihood for Bayesian updating.
type Hypothesis struct {
	ID          string
	Description string
	Prior       float64

	// Factory builds a fresh, transient manifold for the given sign.
	Factory func(sign any) *manifold.Manifold

	// Likelihood may be nil, in which case it defaults to 1.0.
	Likelihood func(sign any) float64
}

// likelihood evaluates the hypothesis likelihood for a sign, floored at
// likelihoodFloor to avoid zero-weight starvation.
func (h Hypothesis) likelihood(sign any) float64 {
	if h.Likelihood == nil {
		return 1.0
	}
	v := h.Likelihood(sign)
	if v < likelihoodFloor {
		return likelihoodFloor
	}
	return v
}

// #endregion hypothesis

// #region configuration-error

// ConfigurationError reports invalid setup. It is detected when the
// manager is constructed, never mid-run.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "interpretant configuration: " + e.Reason
}

// #endregion configuration-error

// #region manager

// Manager holds a fixed, ordered set of hypotheses and maintains a
// normalized posterior over them. Hypothesis order is significant:
// posterior ties are broken in favor of the first-declared hypothesis,
// which keeps selection deterministic.
type Manager struct {
	hypotheses []Hypothesis
	posterior  map[string]float64
}

// NewManager validates the hypothesis set and seeds the posterior from
// the raw priors.
func NewManager(hypotheses []Hypothesis) (*Manager, error) {
	if len(hypotheses) == 0 {
		return nil, &ConfigurationError{Reason: "at least one hypothesis is required"}
	}
	seen := make(map[string]bool, len(hypotheses))
	for _, h := range hypotheses {
		if h.ID == "" {
			return nil, &ConfigurationError{Reason: "hypothesis with empty id"}
		}
		if seen[h.ID] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate hypothesis id %q", h.ID)}
		}
		if h.Factory == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("hypothesis %q has no manifold factory", h.ID)}
		}
		seen[h.ID] = true
	}

	m := &Manager{
		hypotheses: append([]Hypothesis(nil), hypotheses...),
		posterior:  make(map[string]float64, len(hypotheses)),
	}
	for _, h := range m.hypotheses {
		m.posterior[h.ID] = h.Prior
	}
	return m, nil
}

// #endregion manager

// #region update

// Update recomputes the posterior for a sign:
// weight_i = max(prior_i, floor) * likelihood_i(sign), normalized over
// all hypotheses. If every weight underflows to zero the posterior falls
// back to uniform rather than dividing by zero. Returns a snapshot.
func (m *Manager) Update(sign any) map[string]float64 {
	weights := make([]float64, len(m.hypotheses))
	var normalizer float64
	for i, h := range m.hypotheses {
		prior := h.Prior
		if prior < likelihoodFloor {
			prior = likelihoodFloor
		}
		w := prior * h.likelihood(sign)
		weights[i] = w
		normalizer += w
	}

	if normalizer == 0 {
		uniform := 1.0 / float64(len(m.hypotheses))
		for _, h := range m.hypotheses {
			m.posterior[h.ID] = uniform
		}
	} else {
		for i, h := range m.hypotheses {
			m.posterior[h.ID] = weights[i] / normalizer
		}
	}
	return m.Posterior()
}

// #endregion update

// #region select

// Select updates the posterior for the sign and instantiates the manifold
// of the maximum-posterior hypothesis. Ties break by declaration order:
// first-declared wins.
func (m *Manager) Select(sign any) *manifold.Manifold {
	m.Update(sign)

	best := m.hypotheses[0]
	bestP := m.posterior[best.ID]
	for _, h := range m.hypotheses[1:] {
		if p := m.posterior[h.ID]; p > bestP {
			best, bestP = h, p
		}
	}
	return best.Factory(sign)
}

// #endregion select

// #region posterior

// Posterior returns a copy of the current posterior distribution.
func (m *Manager) Posterior() map[string]float64 {
	out := make(map[string]float64, len(m.posterior))
	for id, p := range m.posterior {
		out[id] = p
	}
	return out
}

// Hypotheses returns the hypothesis IDs in declaration order.
func (m *Manager) Hypotheses() []string {
	ids := make([]string, len(m.hypotheses))
	for i, h := range m.hypotheses {
		ids[i] = h.ID
	}
	return ids
}

// #endregion posterior
