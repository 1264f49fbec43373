package engine_test

import (
	"testing"

	"github.com/braillepath/backend/internal/braille"
)

func TestChooseNextItem_FreshLearnerGetsFirstLetter(t *testing.T) {
	eng, _ := newTestEngine(t)

	st := stateWith("l", 0)

	if got := eng.ChooseNextItem(st, braille.Alphabet()); got != "a" {
		t.Errorf("expected the first unseen letter, got %q", got)
	}
	if _, ok := st.Items["a"]; !ok {
		t.Error("expected a record to be registered for the introduced letter")
	}
}

func TestChooseNextItem_IntroducesAfterStreak(t *testing.T) {
	eng, _ := newTestEngine(t)

	ready := learningStat("a")
	ready.Streak = 5
	ready.Correct = 8 // accuracy 0.8 with streak 5 signals readiness

	st := stateWith("l", 1, ready)

	if got := eng.ChooseNextItem(st, []string{"a", "b"}); got != "b" {
		t.Errorf("expected the next unseen letter, got %q", got)
	}
}

func TestChooseNextItem_NoIntroductionWhileStruggling(t *testing.T) {
	eng, _ := newTestEngine(t)

	st := stateWith("l", 1, weakStat("a"))

	if got := eng.ChooseNextItem(st, []string{"a", "b"}); got != "a" {
		t.Errorf("expected to keep drilling the weak letter, got %q", got)
	}
}

func TestChooseNextItem_AllIntroducedDrawsFromPool(t *testing.T) {
	eng, _ := newTestEngine(t)

	st := stateWith("l", 1, learningStat("a"), learningStat("b"), weakStat("c"))
	candidates := []string{"a", "b", "c"}

	got := eng.ChooseNextItem(st, candidates)
	if got != "a" && got != "b" && got != "c" {
		t.Errorf("expected a known candidate, got %q", got)
	}
}

func TestChooseNextItem_RevisionPrefersWeakLetters(t *testing.T) {
	eng, _ := newTestEngine(t)

	// Three weak letters force revision; the pool must then be weak-only.
	st := stateWith("l", 5,
		weakStat("a"), weakStat("b"), weakStat("c"),
		masteredStat("x"),
	)
	candidates := []string{"a", "b", "c", "x"}

	for i := 0; i < 20; i++ {
		got := eng.ChooseNextItem(st, candidates)
		if got == "x" {
			t.Fatalf("draw %d picked a mastered letter during revision", i)
		}
	}
}

func TestChooseNextItem_OverdueLetterDominates(t *testing.T) {
	eng, _ := newTestEngine(t)

	overdue := learningStat("m")
	overdue.NextReview = testNow - 10*86400
	overdue.LastSeen = testNow - 10*86400

	fresh := learningStat("n")

	st := stateWith("l", 5, overdue, fresh)
	candidates := []string{"m", "n"}

	// The overdue letter carries far more priority weight; across many
	// seeded draws it must be the common pick.
	picks := map[string]int{}
	for i := 0; i < 50; i++ {
		picks[eng.ChooseNextItem(st, candidates)]++
	}
	if picks["m"] <= picks["n"] {
		t.Errorf("expected the overdue letter to dominate, got %v", picks)
	}
}

func TestChooseNextItem_ExhaustedCandidatesFallBackToLeastAttempted(t *testing.T) {
	eng, _ := newTestEngine(t)

	// Everything introduced and the latest letter mastered: readiness
	// says introduce, but nothing is left, so the draw happens anyway.
	a := masteredStat("a")
	b := learningStat("b")
	b.LastSeen = testNow - 100 // a is the latest

	st := stateWith("l", 1, a, b)

	got := eng.ChooseNextItem(st, []string{"a", "b"})
	if got != "a" && got != "b" {
		t.Errorf("expected a known letter, got %q", got)
	}
}
