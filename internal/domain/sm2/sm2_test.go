package sm2_test

import (
	"math"
	"testing"

	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/sm2"
)

func TestQuality(t *testing.T) {
	tests := []struct {
		name         string
		correct      bool
		responseTime float64
		avgTime      float64
		want         int
	}{
		{"incorrect is always 1", false, 0.1, 3.0, 1},
		{"very fast correct is 5", true, 1.0, 3.0, 5},
		{"fast correct is 4", true, 2.0, 3.0, 4},
		{"ordinary correct is 3", true, 3.0, 3.0, 3},
		{"slow correct is still 3", true, 10.0, 3.0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sm2.Quality(tt.correct, tt.responseTime, tt.avgTime)
			if got != tt.want {
				t.Errorf("expected quality %d, got %d", tt.want, got)
			}
		})
	}
}

func TestUpdate_IntervalSequence(t *testing.T) {
	s := learner.NewItemStats("a", 0)

	// First three successful reviews walk the 1, 6, round(6·ef) ladder.
	sm2.Update(s, 4, 0)
	if s.Interval != 1 || s.Repetition != 1 {
		t.Fatalf("after first review: interval=%d repetition=%d", s.Interval, s.Repetition)
	}

	sm2.Update(s, 4, 0)
	if s.Interval != 6 || s.Repetition != 2 {
		t.Fatalf("after second review: interval=%d repetition=%d", s.Interval, s.Repetition)
	}

	efBefore := s.EasinessFactor
	sm2.Update(s, 4, 0)
	want := int(math.Round(6 * s.EasinessFactor))
	if s.Interval != want {
		t.Errorf("after third review: expected interval %d, got %d", want, s.Interval)
	}
	if s.EasinessFactor != efBefore {
		t.Errorf("quality 4 must not change the easiness factor: %v -> %v", efBefore, s.EasinessFactor)
	}
}

func TestUpdate_FailureResetsSchedule(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	sm2.Update(s, 4, 0)
	sm2.Update(s, 4, 0)

	sm2.Update(s, 1, 0)

	if s.Repetition != 0 {
		t.Errorf("expected repetition reset to 0, got %d", s.Repetition)
	}
	if s.Interval != 1 {
		t.Errorf("expected interval reset to 1, got %d", s.Interval)
	}
}

func TestUpdate_EasinessFactorFloor(t *testing.T) {
	s := learner.NewItemStats("a", 0)

	for i := 0; i < 20; i++ {
		sm2.Update(s, 1, 0)
	}

	if s.EasinessFactor != sm2.MinEasiness {
		t.Errorf("expected easiness floored at %v, got %v", sm2.MinEasiness, s.EasinessFactor)
	}
}

func TestUpdate_IntervalCap(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	s.Repetition = 10
	s.Interval = 300
	s.EasinessFactor = 2.5

	sm2.Update(s, 5, 0)

	if s.Interval != sm2.MaxIntervalDays {
		t.Errorf("expected interval capped at %d, got %d", sm2.MaxIntervalDays, s.Interval)
	}
}

func TestUpdate_SchedulesNextReview(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	now := 1_000_000.0

	sm2.Update(s, 3, now)

	want := now + 1*86400
	if s.NextReview != want {
		t.Errorf("expected next review at %v, got %v", want, s.NextReview)
	}
}

func TestUpdate_QualityFiveRaisesEasiness(t *testing.T) {
	s := learner.NewItemStats("a", 0)
	before := s.EasinessFactor

	sm2.Update(s, 5, 0)

	if s.EasinessFactor <= before {
		t.Errorf("expected easiness to rise on quality 5: %v -> %v", before, s.EasinessFactor)
	}
}
