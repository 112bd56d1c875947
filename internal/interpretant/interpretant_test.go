package interpretant

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
	"github.com/danielpatrickdp/manifold-nav/internal/manifold"
)

func stubFactory(id string) func(any) *manifold.Manifold {
	return func(any) *manifold.Manifold {
		return &manifold.Manifold{ID: id, Constraints: constraint.NewSet(id)}
	}
}

func TestNewManagerRequiresHypotheses(t *testing.T) {
	_, err := NewManager(nil)
	if err == nil {
		t.Fatal("expected error for zero hypotheses")
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestNewManagerRejectsDuplicateIDs(t *testing.T) {
	_, err := NewManager([]Hypothesis{
		{ID: "a", Prior: 1, Factory: stubFactory("a")},
		{ID: "a", Prior: 1, Factory: stubFactory("a")},
	})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError for duplicate id, got %v", err)
	}
}

func TestNewManagerRejectsMissingFactory(t *testing.T) {
	_, err := NewManager([]Hypothesis{{ID: "a", Prior: 1}})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError for missing factory, got %v", err)
	}
}

func TestUpdatePriorsOnly(t *testing.T) {
	// With no likelihood functions the posterior is exactly the
	// normalized priors.
	m, err := NewManager([]Hypothesis{
		{ID: "h1", Prior: 0.6, Factory: stubFactory("m1")},
		{ID: "h2", Prior: 0.4, Factory: stubFactory("m2")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	posterior := m.Update("sign")

	if posterior["h1"] != 0.6 || posterior["h2"] != 0.4 {
		t.Fatalf("expected {h1: 0.6, h2: 0.4}, got %v", posterior)
	}
}

func TestUpdatePosteriorSumsToOne(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "a", Prior: 0.2, Factory: stubFactory("a"), Likelihood: func(any) float64 { return 3.7 }},
		{ID: "b", Prior: 1.4, Factory: stubFactory("b"), Likelihood: func(any) float64 { return 0.05 }},
		{ID: "c", Prior: 0.9, Factory: stubFactory("c")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	posterior := m.Update("sign")

	var sum float64
	for _, p := range posterior {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("posterior sums to %v, want 1.0", sum)
	}
}

func TestLikelihoodFloorPreventsStarvation(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "zero", Prior: 0.5, Factory: stubFactory("zero"), Likelihood: func(any) float64 { return 0 }},
		{ID: "live", Prior: 0.5, Factory: stubFactory("live")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	posterior := m.Update("sign")

	if posterior["zero"] <= 0 {
		t.Fatalf("zero likelihood should be floored, got posterior %v", posterior["zero"])
	}
}

func TestSelectArgmax(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "low", Prior: 0.3, Factory: stubFactory("low_manifold")},
		{ID: "high", Prior: 0.7, Factory: stubFactory("high_manifold")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	selected := m.Select("sign")
	if selected.ID != "high_manifold" {
		t.Fatalf("expected high_manifold, got %s", selected.ID)
	}
}

func TestSelectTieBreaksByDeclarationOrder(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "first", Prior: 0.5, Factory: stubFactory("first_manifold")},
		{ID: "second", Prior: 0.5, Factory: stubFactory("second_manifold")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	for i := 0; i < 10; i++ {
		if selected := m.Select("sign"); selected.ID != "first_manifold" {
			t.Fatalf("tie must resolve to first-declared hypothesis, got %s", selected.ID)
		}
	}
}

func TestLikelihoodShiftsSelection(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "prior_fav", Prior: 0.6, Factory: stubFactory("prior_fav")},
		{ID: "boosted", Prior: 0.4, Factory: stubFactory("boosted"),
			Likelihood: func(any) float64 { return 2.0 }},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	// weights: 0.6 vs 0.8 → boosted wins despite the lower prior.
	if selected := m.Select("sign"); selected.ID != "boosted" {
		t.Fatalf("expected boosted manifold, got %s", selected.ID)
	}
	posterior := m.Posterior()
	if math.Abs(posterior["boosted"]-0.8/1.4) > 1e-12 {
		t.Fatalf("unexpected boosted posterior %v", posterior["boosted"])
	}
}

func TestPosteriorReturnsCopy(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "a", Prior: 1, Factory: stubFactory("a")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	snapshot := m.Posterior()
	snapshot["a"] = -99

	if m.Posterior()["a"] == -99 {
		t.Fatal("mutating the snapshot leaked into the manager")
	}
}

func TestHypothesesOrder(t *testing.T) {
	m, err := NewManager([]Hypothesis{
		{ID: "x", Prior: 1, Factory: stubFactory("x")},
		{ID: "y", Prior: 1, Factory: stubFactory("y")},
		{ID: "z", Prior: 1, Factory: stubFactory("z")},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	ids := m.Hypotheses()
	if len(ids) != 3 || ids[0] != "x" || ids[1] != "y" || ids[2] != "z" {
		t.Fatalf("declaration order not preserved: %v", ids)
	}
}
