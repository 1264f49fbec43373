package engine_test

import (
	"context"
	"testing"

	"github.com/braillepath/backend/internal/domain/mastery"
	"github.com/braillepath/backend/internal/engine"
)

func TestGetLearningStep_FreshLearner(t *testing.T) {
	eng, repo := newTestEngine(t)

	step, err := eng.GetLearningStep(context.Background(), "learner-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Mode != engine.ModeGuided {
		t.Errorf("expected guided mode, got %q", step.Mode)
	}
	if step.NextItem != "a" {
		t.Errorf("expected the first letter, got %q", step.NextItem)
	}
	if step.MasteryStatus["z"] != mastery.LevelNew {
		t.Errorf("expected unseen letters reported as new, got %q", step.MasteryStatus["z"])
	}
	if len(step.MasteryStatus) != 26 {
		t.Errorf("expected every letter classified, got %d", len(step.MasteryStatus))
	}

	// The chosen letter must be published for the hardware poller and
	// the extended state persisted.
	if repo.current["learner-1"] != "a" {
		t.Errorf("expected current item published, got %q", repo.current["learner-1"])
	}
	if _, ok := repo.states["learner-1"].Items["a"]; !ok {
		t.Error("expected the introduced letter saved in state")
	}
}

func TestGetLearningStep_ContextForKnownItem(t *testing.T) {
	eng, repo := newTestEngine(t)

	st := stateWith("learner-1", 1, weakStat("a"))
	repo.states["learner-1"] = st

	step, err := eng.GetLearningStep(context.Background(), "learner-1", []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.NextItem != "a" {
		t.Fatalf("expected the only candidate, got %q", step.NextItem)
	}
	if step.Context == nil {
		t.Fatal("expected step context for a known item")
	}
	if step.Context.Attempts != 10 {
		t.Errorf("expected 10 attempts in context, got %d", step.Context.Attempts)
	}
	if step.MasteryStatus["a"] != mastery.LevelWeak {
		t.Errorf("expected weak classification, got %q", step.MasteryStatus["a"])
	}
}

func TestGetLearningStep_RecommendsConfusionFocus(t *testing.T) {
	eng, repo := newTestEngine(t)

	d := learningStat("d")
	d.ConfusedWith["f"] = 3
	st := stateWith("learner-1", 5, d, learningStat("f"))
	repo.states["learner-1"] = st

	step, err := eng.GetLearningStep(context.Background(), "learner-1", []string{"d", "f"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, rec := range step.Recommendations {
		if rec.Type == "confusion_focus" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a confusion_focus recommendation, got %+v", step.Recommendations)
	}
}

func TestGetLearnerStats_Aggregates(t *testing.T) {
	eng, repo := newTestEngine(t)

	a := masteredStat("a")
	b := weakStat("b")
	st := stateWith("learner-1", 4, a, b)
	st.TotalTime = 600
	repo.states["learner-1"] = st

	report, err := eng.GetLearnerStats(context.Background(), "learner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAttempts != 30 {
		t.Errorf("expected 30 total attempts, got %d", report.TotalAttempts)
	}
	if report.TotalCorrect != 23 {
		t.Errorf("expected 23 total correct, got %d", report.TotalCorrect)
	}
	if report.MasteryDistribution[mastery.LevelMastered] != 1 {
		t.Errorf("expected 1 mastered letter, got %d", report.MasteryDistribution[mastery.LevelMastered])
	}
	if report.MasteryDistribution[mastery.LevelWeak] != 1 {
		t.Errorf("expected 1 weak letter, got %d", report.MasteryDistribution[mastery.LevelWeak])
	}
	if report.BestStreak != 10 {
		t.Errorf("expected best streak 10, got %d", report.BestStreak)
	}
	if report.TotalTime != 600 {
		t.Errorf("expected total time carried through, got %v", report.TotalTime)
	}
	if len(report.Items) != 2 {
		t.Errorf("expected 2 item rows, got %d", len(report.Items))
	}
}

func TestGetLearningInsights_FreshLearner(t *testing.T) {
	eng, _ := newTestEngine(t)

	insights, err := eng.GetLearningInsights(context.Background(), "learner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights == nil {
		t.Fatal("expected an insights payload for a fresh learner")
	}
}
