package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/mastery"
	"github.com/braillepath/backend/internal/domain/sm2"
	"github.com/braillepath/backend/internal/store"
)

// Achievement is one awarded badge.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AttemptResult summarizes the state of the target item after one attempt.
type AttemptResult struct {
	Success              bool          `json:"success"`
	Accuracy             float64       `json:"accuracy"`
	Streak               int           `json:"streak"`
	BestStreak           int           `json:"best_streak"`
	MasteryLevel         mastery.Level `json:"mastery_level"`
	Trend                string        `json:"trend"`
	RetentionProbability float64       `json:"retention_probability"`
	ConfusedWith         string        `json:"confused_with,omitempty"`
	NewAchievements      []Achievement `json:"new_achievements,omitempty"`
	FatigueWarning       bool          `json:"fatigue_warning,omitempty"`
}

// Feedback is the intent tag the caller renders for the learner.
type Feedback struct {
	Type         string        `json:"type"` // achievement, positive, corrective, warning
	MessageKey   string        `json:"message_key"`
	Item         string        `json:"letter"`
	Streak       int           `json:"streak,omitempty"`
	ConfusedWith string        `json:"confused_with,omitempty"`
	Achievements []Achievement `json:"achievements,omitempty"`
}

// AttemptOutcome is the full response for one processed attempt.
type AttemptOutcome struct {
	Result       AttemptResult `json:"result"`
	Feedback     Feedback      `json:"feedback"`
	NextReviewIn string        `json:"next_review_in"`
}

// ProcessAttempt applies one learner response to the full state: item
// counters, trend rings, SM-2 schedule, streaks, achievements, confusion
// map, and the adaptive difficulty controller, then persists everything
// and derives feedback. First touch of an unseen item always succeeds by
// creating a fresh record.
func (s *Service) ProcessAttempt(ctx context.Context, learnerID, target, spoken string, responseTime float64, sessionID *string) (*AttemptOutcome, error) {
	st, err := s.repo.GetState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stat := st.ItemStat(target, now)

	stat.Attempts++
	stat.SessionAttempts++
	stat.LastSeen = now
	stat.PushResponseTime(responseTime)
	stat.AvgResponseTime = (stat.AvgResponseTime*float64(stat.Attempts-1) + responseTime) / float64(stat.Attempts)

	correct := strings.EqualFold(spoken, target)
	stat.PushResult(correct)

	quality := sm2.Quality(correct, responseTime, stat.AvgResponseTime)
	sm2.Update(stat, quality, now)

	result := AttemptResult{
		Success:              correct,
		Trend:                stat.RecentTrend(),
		RetentionProbability: stat.RetentionProbability(now),
	}

	if correct {
		stat.Correct++
		stat.SessionCorrect++
		stat.Streak++
		if stat.Streak > stat.BestStreak {
			stat.BestStreak = stat.Streak
		}
		result.NewAchievements = s.checkAchievements(st, stat)
	} else {
		stat.Streak = 0
		RecordConfusion(stat, strings.ToLower(spoken))
		result.ConfusedWith = strings.ToLower(spoken)
	}

	result.Accuracy = stat.Accuracy()
	result.Streak = stat.Streak
	result.BestStreak = stat.BestStreak
	result.MasteryLevel = mastery.LevelFor(s.cfg, stat)

	s.adjustDifficulty(st, stat.RecentAccuracy())

	if s.detectFatigue(st) {
		result.FatigueWarning = true
	}

	if err := s.repo.SaveState(ctx, st); err != nil {
		return nil, err
	}
	if _, err := s.repo.RecordAttemptEvent(ctx, store.AttemptEvent{
		LearnerID:    learnerID,
		SessionID:    sessionID,
		Item:         target,
		Spoken:       spoken,
		Correct:      correct,
		ResponseTime: responseTime,
		At:           now,
	}); err != nil {
		return nil, err
	}
	correctInc := 0
	if correct {
		correctInc = 1
	}
	if err := s.repo.IncrementProgressCounters(ctx, learnerID, 1, correctInc); err != nil {
		return nil, err
	}

	return &AttemptOutcome{
		Result:       result,
		Feedback:     s.deriveFeedback(result, target, stat),
		NextReviewIn: s.formatNextReview(stat, now),
	}, nil
}

// checkAchievements awards threshold badges. Each id lands in the
// learner's achievement set at most once.
func (s *Service) checkAchievements(st *learner.State, stat *learner.ItemStats) []Achievement {
	var earned []Achievement
	award := func(id, title, description string) {
		if st.AddAchievement(id) {
			earned = append(earned, Achievement{ID: id, Title: title, Description: description})
		}
	}

	if stat.Streak == 5 {
		award("streak_5", "Hot Streak!", "Got 5 correct answers in a row")
	}
	if stat.Streak == 10 {
		award("streak_10", "Unstoppable!", "Got 10 correct answers in a row")
	}

	masteredCount := 0
	for _, other := range st.Items {
		if mastery.LevelFor(s.cfg, other) == mastery.LevelMastered {
			masteredCount++
		}
	}
	if masteredCount >= 5 {
		award("master_5", "Quick Learner", "Mastered 5 letters")
	}
	if masteredCount >= 10 {
		award("master_10", "Letter Expert", "Mastered 10 letters")
	}

	if stat.AvgResponseTime < 2.0 && stat.Attempts >= 10 {
		award("speed_demon", "Speed Demon", "Average response time under 2 seconds")
	}
	if stat.Accuracy() == 1.0 && stat.Attempts >= 10 {
		upper := strings.ToUpper(stat.Item)
		award("perfect_"+stat.Item, "Perfect "+upper, "100% accuracy on letter "+upper)
	}

	return earned
}

// detectFatigue flags a learner whose session accuracy has dropped well
// below their lifetime accuracy. Session counters accumulate across the
// item records; fewer than ten session attempts is too little signal.
func (s *Service) detectFatigue(st *learner.State) bool {
	sessionAttempts, sessionCorrect := 0, 0
	lifetimeAttempts, lifetimeCorrect := 0, 0
	for _, stat := range st.Items {
		sessionAttempts += stat.SessionAttempts
		sessionCorrect += stat.SessionCorrect
		lifetimeAttempts += stat.Attempts
		lifetimeCorrect += stat.Correct
	}
	if sessionAttempts < 10 {
		return false
	}

	sessionAccuracy := float64(sessionCorrect) / float64(sessionAttempts)
	lifetime := lifetimeAttempts
	if lifetime < 1 {
		lifetime = 1
	}
	overallAccuracy := float64(lifetimeCorrect) / float64(lifetime)

	return sessionAccuracy < overallAccuracy*fatigueThreshold
}

// formatNextReview renders the time until the next SM-2 review.
func (s *Service) formatNextReview(stat *learner.ItemStats, now float64) string {
	until := stat.NextReview - now
	switch {
	case until <= 0:
		return "now"
	case until < 3600:
		return fmt.Sprintf("%d minutes", int(until/60))
	case until < secondsPerDay:
		return fmt.Sprintf("%d hours", int(until/3600))
	default:
		return fmt.Sprintf("%d days", int(until/secondsPerDay))
	}
}

// deriveFeedback picks the intent tag in fixed priority: achievement,
// streak milestone, trend, then default positive or corrective.
func (s *Service) deriveFeedback(result AttemptResult, target string, stat *learner.ItemStats) Feedback {
	trend := stat.RecentTrend()

	if result.Success {
		if len(result.NewAchievements) > 0 {
			return Feedback{
				Type:         "achievement",
				MessageKey:   "achievement_unlocked",
				Item:         target,
				Streak:       result.Streak,
				Achievements: result.NewAchievements,
			}
		}
		if result.Streak == 5 {
			return Feedback{Type: "achievement", MessageKey: "streak_milestone", Item: target, Streak: 5}
		}
		if trend == learner.TrendImproving {
			return Feedback{Type: "positive", MessageKey: "improving", Item: target, Streak: result.Streak}
		}
		return Feedback{Type: "positive", MessageKey: "correct_letter", Item: target, Streak: result.Streak}
	}

	if result.FatigueWarning {
		return Feedback{Type: "warning", MessageKey: "fatigue_detected", Item: target, ConfusedWith: result.ConfusedWith}
	}
	if trend == learner.TrendDeclining {
		return Feedback{Type: "corrective", MessageKey: "take_break", Item: target, ConfusedWith: result.ConfusedWith}
	}
	return Feedback{Type: "corrective", MessageKey: "confusion_help", Item: target, ConfusedWith: result.ConfusedWith}
}
