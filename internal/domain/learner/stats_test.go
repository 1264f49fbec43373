package learner_test

import (
	"math"
	"testing"

	"github.com/braillepath/backend/internal/domain/learner"
)

func TestNewItemStats_Defaults(t *testing.T) {
	s := learner.NewItemStats("a", 1000)

	if s.EasinessFactor != 2.5 {
		t.Errorf("expected easiness factor 2.5, got %v", s.EasinessFactor)
	}
	if s.Interval != 1 {
		t.Errorf("expected interval 1, got %d", s.Interval)
	}
	if s.Difficulty != 0.5 {
		t.Errorf("expected difficulty 0.5, got %v", s.Difficulty)
	}
	if s.NextReview != 1000 {
		t.Errorf("expected next review at creation time, got %v", s.NextReview)
	}
	if s.ConfusedWith == nil {
		t.Error("expected confusion map to be initialized")
	}
}

func TestAccuracy_ZeroAttempts(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	if got := s.Accuracy(); got != 0 {
		t.Errorf("expected 0 accuracy with no attempts, got %v", got)
	}
}

func TestAccuracy_ClampsCorruptedRecord(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	s.Attempts = 3
	s.Correct = 7 // corrupted: more correct than attempts

	if got := s.Accuracy(); got != 1.0 {
		t.Errorf("expected accuracy clamped to 1.0, got %v", got)
	}
}

func TestPushResult_TruncatesToTrendWindow(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	for i := 0; i < learner.TrendWindow+5; i++ {
		s.PushResult(i%2 == 0)
	}

	if len(s.RecentResults) != learner.TrendWindow {
		t.Errorf("expected ring of %d, got %d", learner.TrendWindow, len(s.RecentResults))
	}
}

func TestPushResponseTime_KeepsNewest(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	for i := 0; i < learner.TrendWindow+3; i++ {
		s.PushResponseTime(float64(i))
	}

	if len(s.ResponseTimes) != learner.TrendWindow {
		t.Fatalf("expected ring of %d, got %d", learner.TrendWindow, len(s.ResponseTimes))
	}
	last := s.ResponseTimes[len(s.ResponseTimes)-1]
	if last != float64(learner.TrendWindow+2) {
		t.Errorf("expected newest value kept, got %v", last)
	}
}

func TestRecentTrend(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		correct  int
		recent   []bool
		want     string
	}{
		{
			name:   "too few results",
			recent: []bool{true, false},
			want:   learner.TrendInsufficient,
		},
		{
			name:     "improving over lifetime",
			attempts: 20,
			correct:  8, // lifetime 0.4
			recent:   []bool{true, true, true, true, false},
			want:     learner.TrendImproving,
		},
		{
			name:     "declining under lifetime",
			attempts: 20,
			correct:  18, // lifetime 0.9
			recent:   []bool{false, false, true, false, true},
			want:     learner.TrendDeclining,
		},
		{
			name:     "stable inside band",
			attempts: 10,
			correct:  6, // lifetime 0.6
			recent:   []bool{true, false, true, true, false},
			want:     learner.TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := learner.NewItemStats("a", 0)
			s.Attempts = tt.attempts
			s.Correct = tt.correct
			s.RecentResults = tt.recent

			if got := s.RecentTrend(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResponseTimeTrend(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
		want  string
	}{
		{
			name:  "too few samples",
			times: []float64{1, 2},
			want:  learner.TrendInsufficient,
		},
		{
			name:  "no older half yet",
			times: []float64{1, 2, 3},
			want:  learner.TrendStable,
		},
		{
			name:  "speeding up",
			times: []float64{5, 5, 5, 2, 2, 2, 2, 2},
			want:  learner.TrendSpeedingUp,
		},
		{
			name:  "slowing down",
			times: []float64{2, 2, 2, 5, 5, 5, 5, 5},
			want:  learner.TrendSlowingDown,
		},
		{
			name:  "stable",
			times: []float64{3, 3, 3, 3.1, 3, 2.9, 3, 3},
			want:  learner.TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := learner.NewItemStats("a", 0)
			s.ResponseTimes = tt.times

			if got := s.ResponseTimeTrend(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRetentionProbability_DecaysOverTime(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	s.Repetition = 1
	s.LastSeen = 0

	fresh := s.RetentionProbability(0)
	if fresh != 1.0 {
		t.Errorf("expected retention 1.0 immediately after review, got %v", fresh)
	}

	// One stability period later: e^-1.
	stability := s.EasinessFactor * 2 * 86400
	later := s.RetentionProbability(stability)
	if math.Abs(later-math.Exp(-1)) > 1e-9 {
		t.Errorf("expected e^-1 after one stability period, got %v", later)
	}
}

func TestDueForReview(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	s.NextReview = 100

	if s.DueForReview(99) {
		t.Error("not due before next review time")
	}
	if !s.DueForReview(100) {
		t.Error("due exactly at next review time")
	}
}

func TestState_ItemStat_CreatesOnFirstTouch(t *testing.T) {
	st := learner.NewState("learner-1")

	stat := st.ItemStat("a", 500)
	if stat == nil {
		t.Fatal("expected a record to be created")
	}
	if stat.FirstSeen != 500 {
		t.Errorf("expected first seen 500, got %v", stat.FirstSeen)
	}

	again := st.ItemStat("a", 900)
	if again != stat {
		t.Error("expected the same record on second touch")
	}
	if again.FirstSeen != 500 {
		t.Error("first seen must not change on later touches")
	}
}

func TestState_AddAchievement_Idempotent(t *testing.T) {
	st := learner.NewState("learner-1")

	if !st.AddAchievement("streak_5") {
		t.Error("expected first award to succeed")
	}
	if st.AddAchievement("streak_5") {
		t.Error("expected duplicate award to be rejected")
	}
	if len(st.Achievements) != 1 {
		t.Errorf("expected 1 achievement, got %d", len(st.Achievements))
	}
}

func TestState_PushDifficulty_CapsHistory(t *testing.T) {
	st := learner.NewState("learner-1")
	for i := 0; i < 120; i++ {
		st.PushDifficulty(0.5)
	}

	if len(st.DifficultyHistory) != 100 {
		t.Errorf("expected history capped at 100, got %d", len(st.DifficultyHistory))
	}
}
