package wordgame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/manifold-nav/internal/constraint"
)

// #region sign

// Sign is a letter-multiset puzzle observation: the allowed letters and
// the candidate word to check against them.
type Sign struct {
	Letters   string
	Candidate string
}

// SignText exposes the sign's text for keyword likelihoods.
func (s Sign) SignText() string {
	return s.Letters + "|" + s.Candidate
}

// #endregion sign

// #region state

// State is the puzzle state: an allowed letter multiset and a candidate.
type State struct {
	Letters   string
	Candidate string
}

// Describe returns a stable textual description with letters sorted.
func (s State) Describe() string {
	letters := strings.Split(strings.ToUpper(s.Letters), "")
	sort.Strings(letters)
	return fmt.Sprintf("Letters: %s | Candidate: %s", strings.Join(letters, ""), s.Candidate)
}

// LetterCounts returns the allowed letter multiset, uppercased.
func (s State) LetterCounts() map[rune]int {
	return countRunes(s.Letters)
}

// CandidateCounts returns the candidate letter multiset, uppercased.
func (s State) CandidateCounts() map[rune]int {
	return countRunes(s.Candidate)
}

func countRunes(word string) map[rune]int {
	counts := make(map[rune]int)
	for _, r := range strings.ToUpper(word) {
		counts[r]++
	}
	return counts
}

// #endregion state

// #region constraints

// OnlyAllowedLetters rejects candidates that use letters outside the pool.
type OnlyAllowedLetters struct{}

func (OnlyAllowedLetters) Name() string { return "uses_only_allowed_letters" }

func (OnlyAllowedLetters) Check(state constraint.State) []constraint.Violation {
	ws := state.(State)
	allowed := ws.LetterCounts()
	var violations []constraint.Violation
	for _, letter := range sortedRunes(ws.CandidateCounts()) {
		if _, ok := allowed[letter]; !ok {
			violations = append(violations, constraint.Violation{
				Message:  fmt.Sprintf("Candidate uses illegal letter %q.", letter),
				Code:     "illegal_letter",
				Severity: constraint.SeverityError,
				Metadata: map[string]any{"letter": string(letter)},
			})
		}
	}
	return violations
}

// ExactLetterUse requires each allowed letter to be used exactly as many
// times as provided.
type ExactLetterUse struct{}

func (ExactLetterUse) Name() string { return "uses_each_letter_exactly_once" }

func (ExactLetterUse) Check(state constraint.State) []constraint.Violation {
	ws := state.(State)
	allowed := ws.LetterCounts()
	used := ws.CandidateCounts()
	var violations []constraint.Violation

	for _, letter := range sortedRunes(allowed) {
		want := allowed[letter]
		got := used[letter]
		if got != want {
			violations = append(violations, constraint.Violation{
				Message:  fmt.Sprintf("Letter %q used %d times; expected %d.", letter, got, want),
				Code:     "letter_count_mismatch",
				Severity: constraint.SeverityError,
				Metadata: map[string]any{"letter": string(letter), "expected": want, "used": got},
			})
		}
	}
	for _, letter := range sortedRunes(used) {
		if _, ok := allowed[letter]; !ok {
			violations = append(violations, constraint.Violation{
				Message:  fmt.Sprintf("Extra illegal letter %q present.", letter),
				Code:     "extra_illegal_letter",
				Severity: constraint.SeverityError,
				Metadata: map[string]any{"letter": string(letter)},
			})
		}
	}
	return violations
}

// sortedRunes keeps violation order deterministic across runs.
func sortedRunes(counts map[rune]int) []rune {
	out := make([]rune, 0, len(counts))
	for r := range counts {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildConstraintSet returns the exact-use puzzle constraint set.
func BuildConstraintSet(name string) *constraint.Set {
	return constraint.NewSet(name, OnlyAllowedLetters{}, ExactLetterUse{})
}

// #endregion constraints

// #region scoring

// LetterDeltas reports how candidate usage deviates from the allowed
// pool: positive means overused, negative underused.
func LetterDeltas(s State) map[rune]int {
	allowed := s.LetterCounts()
	used := s.CandidateCounts()
	deltas := make(map[rune]int)
	for letter := range allowed {
		if diff := used[letter] - allowed[letter]; diff != 0 {
			deltas[letter] = diff
		}
	}
	for letter := range used {
		if _, ok := allowed[letter]; !ok {
			deltas[letter] = used[letter]
		}
	}
	return deltas
}

// Distance is the Manhattan distance from the allowed multiset.
func Distance(s State) int {
	total := 0
	for _, diff := range LetterDeltas(s) {
		if diff < 0 {
			diff = -diff
		}
		total += diff
	}
	return total
}

// QualityScore maps the multiset distance into (0, 1].
func QualityScore(s State) float64 {
	return 1.0 / (1.0 + float64(Distance(s)))
}

// RepairHints generates human-friendly hints for fixing an invalid
// candidate, in letter order.
func RepairHints(s State) []string {
	allowed := s.LetterCounts()
	deltas := LetterDeltas(s)
	var hints []string
	for _, letter := range sortedRunes(deltas) {
		diff := deltas[letter]
		switch {
		case allowed[letter] == 0:
			hints = append(hints, fmt.Sprintf("remove all %q (not in allowed letters)", letter))
		case diff > 0:
			hints = append(hints, fmt.Sprintf("decrease %q by %d", letter, diff))
		default:
			hints = append(hints, fmt.Sprintf("increase %q by %d", letter, -diff))
		}
	}
	return hints
}

// #endregion scoring
