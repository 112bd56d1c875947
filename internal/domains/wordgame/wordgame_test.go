package wordgame

import (
	"testing"

	"github.com/danielpatrickdp/manifold-nav/internal/interpretant"
)

func TestStrictRejectsCandidateWithoutU(t *testing.T) {
	m := NewStrictManifold()

	eval, err := m.Run(Sign{Letters: "JAIILUNG", Candidate: "JAILING"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !eval.IsRuin {
		t.Fatal("candidate without U must hit the missing_u ruin node")
	}
	if len(eval.RuinHits) != 1 || eval.RuinHits[0] != "missing_u" {
		t.Fatalf("unexpected ruin hits: %v", eval.RuinHits)
	}
	if eval.Result.IsValid {
		t.Fatal("strict reading should also fail exact letter use")
	}
	foundMismatch := false
	for _, v := range eval.Result.Violations {
		if v.Code == "letter_count_mismatch" {
			foundMismatch = true
		}
	}
	if !foundMismatch {
		t.Fatalf("expected letter_count_mismatch, got %v", eval.Result.Violations)
	}
}

func TestPhoneticAcceptsSameCandidate(t *testing.T) {
	m := NewPhoneticManifold()

	eval, err := m.Run(Sign{Letters: "JAIILUNG", Candidate: "JAILING"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(eval.AppliedTransforms) != 2 ||
		eval.AppliedTransforms[0] != "i_j_interchange" || eval.AppliedTransforms[1] != "allow_silent_u" {
		t.Fatalf("unexpected transforms: %v", eval.AppliedTransforms)
	}
	if eval.IsRuin {
		t.Fatalf("phonetic reading has no ruin nodes, hits: %v", eval.RuinHits)
	}
	if !eval.Result.IsValid {
		t.Fatalf("phonetic reading should be valid, violations: %v", eval.Result.Violations)
	}
	if eval.Metadata["distance"] != 0.0 {
		t.Fatalf("perfect phonetic match should have distance 0, got %v", eval.Metadata["distance"])
	}
	if eval.Metadata["quality_score"] != 1.0 {
		t.Fatalf("expected quality 1.0, got %v", eval.Metadata["quality_score"])
	}
}

func TestOnlyAllowedLetters(t *testing.T) {
	state := State{Letters: "CAT", Candidate: "CAB"}

	violations := OnlyAllowedLetters{}.Check(state)

	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", violations)
	}
	if violations[0].Code != "illegal_letter" || violations[0].Metadata["letter"] != "B" {
		t.Fatalf("unexpected violation: %+v", violations[0])
	}
}

func TestExactLetterUseCountsBothDirections(t *testing.T) {
	// O underused, L overused relative to the pool.
	state := State{Letters: "LOOP", Candidate: "LLOP"}

	violations := ExactLetterUse{}.Check(state)

	codes := map[string]int{}
	for _, v := range violations {
		codes[v.Code]++
	}
	if codes["letter_count_mismatch"] != 2 {
		t.Fatalf("expected mismatches for L and O, got %v", violations)
	}
}

func TestDistanceAndQuality(t *testing.T) {
	state := State{Letters: "LOOP", Candidate: "LLOP"}

	// L +1, O −1 → distance 2.
	if got := Distance(state); got != 2 {
		t.Fatalf("expected distance 2, got %d", got)
	}
	if got := QualityScore(state); got != 1.0/3.0 {
		t.Fatalf("expected quality 1/3, got %v", got)
	}
}

func TestRepairHints(t *testing.T) {
	state := State{Letters: "LOOP", Candidate: "LLOPZ"}

	hints := RepairHints(state)

	// Letter order: L, O, Z.
	want := []string{
		`decrease 'L' by 1`,
		`increase 'O' by 1`,
		`remove all 'Z' (not in allowed letters)`,
	}
	if len(hints) != len(want) {
		t.Fatalf("expected %d hints, got %v", len(want), hints)
	}
	for i := range want {
		if hints[i] != want[i] {
			t.Fatalf("hint %d: want %q, got %q", i, want[i], hints[i])
		}
	}
}

func TestHypothesesSelection(t *testing.T) {
	manager, err := interpretant.NewManager(Hypotheses())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	// Default priors favor strict.
	if selected := manager.Select(Sign{Letters: "JAIILUNG", Candidate: "JAILING"}); selected.ID != "strict_set" {
		t.Fatalf("expected strict_set by prior, got %s", selected.ID)
	}

	// The phonetic hint shifts the likelihood: 0.45 × 1.5 = 0.675 > 0.55.
	boosted := manager.Select(Sign{Letters: "PHONETIC", Candidate: "X"})
	if boosted.ID != "phonetic_variant" {
		t.Fatalf("expected phonetic_variant with hint, got %s", boosted.ID)
	}
}

func TestProjectionRejectsEmptySign(t *testing.T) {
	m := NewStrictManifold()

	if _, err := m.Run(Sign{Letters: "", Candidate: "X"}); err == nil {
		t.Fatal("expected error for sign without letters")
	}
	if _, err := m.Run("not a puzzle sign"); err == nil {
		t.Fatal("expected error for foreign sign type")
	}
}

func TestRegistryCoversBothManifolds(t *testing.T) {
	registry := Registry()
	for _, id := range []string{"strict_set", "phonetic_variant"} {
		factory, ok := registry[id]
		if !ok {
			t.Fatalf("registry missing %s", id)
		}
		if m := factory(nil); m.ID != id {
			t.Fatalf("factory for %s built %s", id, m.ID)
		}
	}
}
