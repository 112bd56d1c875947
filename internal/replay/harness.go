package replay

import (
	"fmt"

	"github.com/danielpatrickdp/manifold-nav/internal/domains/clinical"
	"github.com/danielpatrickdp/manifold-nav/internal/domains/safety"
	"github.com/danielpatrickdp/manifold-nav/internal/domains/wordgame"
	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
	"github.com/danielpatrickdp/manifold-nav/internal/navigation"
)

// #region types

// Result captures the replayed outcome for one sign.
type Result struct {
	SignID     string
	ManifoldID string
	Decision   string
	Cause      string
	Tension    float64
	Velocity   float64
	Accel      float64
}

// Summary provides aggregate stats from a replay comparison.
type Summary struct {
	Total    int
	Matches  int
	Diverged int
}

// Comparison pairs an expected decision with the replayed one.
type Comparison struct {
	SignID   string
	Expected string
	Replayed string
	Match    bool
}

// #endregion types

// #region replay

// domainHypotheses returns the built-in hypothesis set for a fixture
// domain.
func domainHypotheses(domain string) ([]interpretant.Hypothesis, error) {
	switch domain {
	case "word_game":
		return wordgame.Hypotheses(), nil
	case "clinical":
		return clinical.Hypotheses(), nil
	case "safety":
		return safety.Hypotheses(), nil
	}
	return nil, fmt.Errorf("unknown fixture domain %q", domain)
}

// Replay feeds a fixture's sign stream through a fresh navigation
// controller and returns the per-sign outcomes. Operates entirely
// in-memory.
func Replay(f *Fixture) ([]Result, error) {
	hypotheses, err := domainHypotheses(f.Domain)
	if err != nil {
		return nil, err
	}
	manager, err := interpretant.NewManager(hypotheses)
	if err != nil {
		return nil, err
	}
	controller := navigation.NewController(manager, navigation.ControllerConfig{
		DefaultGovernor: f.ToGovernorConfig(),
	})

	results := make([]Result, 0, len(f.Signs))
	for i := range f.Signs {
		fs := &f.Signs[i]
		sign, err := fs.ToSign(f.Domain)
		if err != nil {
			return nil, err
		}

		var entry navigation.TraceEntry
		if fs.Tension != nil {
			entry, err = controller.StepWithTension(sign, *fs.Tension)
		} else {
			entry, err = controller.Step(sign)
		}
		if err != nil {
			return nil, fmt.Errorf("replay sign %s: %w", fs.ID, err)
		}

		results = append(results, Result{
			SignID:     fs.ID,
			ManifoldID: entry.Evaluation.ManifoldID,
			Decision:   string(entry.Decision.Verdict),
			Cause:      string(entry.Decision.Cause),
			Tension:    entry.Decision.Metrics.Tension,
			Velocity:   entry.Decision.Metrics.Velocity,
			Accel:      entry.Decision.Metrics.Accel,
		})
	}
	return results, nil
}

// #endregion replay

// #region compare

// Compare matches replayed results against the fixture's expectations,
// position by position. An expected cause, when set, must match too.
func Compare(results []Result, expected []FixtureExpected) ([]Comparison, Summary) {
	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	comparisons := make([]Comparison, 0, total)
	summary := Summary{Total: total}
	for i := 0; i < total; i++ {
		match := results[i].Decision == expected[i].Decision
		if match && expected[i].Cause != "" {
			match = results[i].Cause == expected[i].Cause
		}
		if match {
			summary.Matches++
		} else {
			summary.Diverged++
		}
		comparisons = append(comparisons, Comparison{
			SignID:   results[i].SignID,
			Expected: expected[i].Decision,
			Replayed: results[i].Decision,
			Match:    match,
		})
	}
	return comparisons, summary
}

// #endregion compare
