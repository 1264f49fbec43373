package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/mastery"
)

// ItemReport is one per-letter row in the aggregate report.
type ItemReport struct {
	Item              string         `json:"letter"`
	Attempts          int            `json:"attempts"`
	Correct           int            `json:"correct"`
	Accuracy          float64        `json:"accuracy"`
	AvgResponseTime   float64        `json:"avg_response_time"`
	ConfusedWith      map[string]int `json:"confused_with"`
	Streak            int            `json:"streak"`
	BestStreak        int            `json:"best_streak"`
	MasteryLevel      mastery.Level  `json:"mastery_level"`
	SkillScore        float64        `json:"skill_score"`
	Retention         float64        `json:"retention"`
	Trend             string         `json:"trend"`
	ResponseTimeTrend string         `json:"response_time_trend"`
	NextReview        string         `json:"next_review"`
	Difficulty        float64        `json:"difficulty"`
	EasinessFactor    float64        `json:"easiness_factor"`
}

// ProblemArea flags one letter needing attention and why.
type ProblemArea struct {
	Item         string   `json:"letter"`
	Issue        string   `json:"issue"`
	Accuracy     float64  `json:"accuracy,omitempty"`
	ConfusedWith []string `json:"confused_with,omitempty"`
}

// LearnerReport is the aggregate statistics payload for one learner.
type LearnerReport struct {
	LearnerID           string                `json:"user_id"`
	Level               string                `json:"level"`
	SessionCount        int                   `json:"sessions_count"`
	TotalAttempts       int                   `json:"total_attempts"`
	TotalCorrect        int                   `json:"total_correct"`
	OverallAccuracy     float64               `json:"overall_accuracy"`
	TotalTime           float64               `json:"total_time"`
	CurrentStreak       int                   `json:"current_streak"`
	BestStreak          int                   `json:"best_streak"`
	ItemMastery         map[string]float64    `json:"letter_mastery"`
	MasteryDistribution map[mastery.Level]int `json:"mastery_distribution"`
	RecentAttempts      int                   `json:"recent_attempts"`
	RecentCorrect       int                   `json:"recent_correct"`
	RecentAccuracy      float64               `json:"recent_accuracy"`
	AvgRetention        float64               `json:"avg_retention"`
	NeedsReview         []string              `json:"needs_review"`
	LearningVelocity    float64               `json:"learning_velocity"`
	CurrentDifficulty   float64               `json:"current_difficulty"`
	ProblemAreas        []ProblemArea         `json:"problem_areas"`
	Achievements        []string              `json:"achievements"`
	Items               []ItemReport          `json:"letters"`
}

// GetLearnerStats assembles the aggregate learning report.
func (s *Service) GetLearnerStats(ctx context.Context, learnerID string) (*LearnerReport, error) {
	st, err := s.repo.GetState(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentAttempts(ctx, learnerID, 50)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &LearnerReport{
		LearnerID:         st.LearnerID,
		Level:             st.Level,
		SessionCount:      st.SessionCount,
		TotalTime:         st.TotalTime,
		ItemMastery:       make(map[string]float64, len(st.Items)),
		CurrentDifficulty: st.CurrentDifficulty,
		Achievements:      st.Achievements,
		MasteryDistribution: map[mastery.Level]int{
			mastery.LevelMastered: 0, mastery.LevelLearning: 0, mastery.LevelWeak: 0, mastery.LevelNew: 0,
		},
		NeedsReview:  []string{},
		ProblemAreas: []ProblemArea{},
	}

	retentionSum, retentionCount := 0.0, 0
	for item, stat := range st.Items {
		report.ItemMastery[item] = mastery.Score(s.cfg, stat)
		report.TotalAttempts += stat.Attempts
		report.TotalCorrect += stat.Correct
		if stat.Streak > report.CurrentStreak {
			report.CurrentStreak = stat.Streak
		}
		if stat.BestStreak > report.BestStreak {
			report.BestStreak = stat.BestStreak
		}
		report.MasteryDistribution[mastery.LevelFor(s.cfg, stat)]++

		if stat.Attempts > 0 {
			retentionSum += stat.RetentionProbability(now)
			retentionCount++
		}
		if stat.DueForReview(now) && stat.Attempts >= s.cfg.MinAttemptsForTier {
			report.NeedsReview = append(report.NeedsReview, item)
		}

		if stat.RecentTrend() == learner.TrendDeclining {
			report.ProblemAreas = append(report.ProblemAreas, ProblemArea{
				Item: item, Issue: "declining_performance", Accuracy: stat.Accuracy(),
			})
		}
		if len(stat.ConfusedWith) >= 2 {
			wrongs := make([]string, 0, len(stat.ConfusedWith))
			for wrong := range stat.ConfusedWith {
				wrongs = append(wrongs, wrong)
			}
			sort.Strings(wrongs)
			report.ProblemAreas = append(report.ProblemAreas, ProblemArea{
				Item: item, Issue: "high_confusion", ConfusedWith: wrongs,
			})
		}

		report.Items = append(report.Items, ItemReport{
			Item:              item,
			Attempts:          stat.Attempts,
			Correct:           stat.Correct,
			Accuracy:          stat.Accuracy(),
			AvgResponseTime:   stat.AvgResponseTime,
			ConfusedWith:      stat.ConfusedWith,
			Streak:            stat.Streak,
			BestStreak:        stat.BestStreak,
			MasteryLevel:      mastery.LevelFor(s.cfg, stat),
			SkillScore:        mastery.Score(s.cfg, stat),
			Retention:         stat.RetentionProbability(now),
			Trend:             stat.RecentTrend(),
			ResponseTimeTrend: stat.ResponseTimeTrend(),
			NextReview:        s.formatNextReview(stat, now),
			Difficulty:        stat.Difficulty,
			EasinessFactor:    stat.EasinessFactor,
		})
	}
	sort.Slice(report.Items, func(i, j int) bool { return report.Items[i].Item < report.Items[j].Item })
	sort.Strings(report.NeedsReview)

	if report.TotalAttempts > 0 {
		report.OverallAccuracy = float64(report.TotalCorrect) / float64(report.TotalAttempts)
	}

	report.RecentAttempts = len(recent)
	for _, ev := range recent {
		if ev.Correct {
			report.RecentCorrect++
		}
	}
	if report.RecentAttempts > 0 {
		report.RecentAccuracy = float64(report.RecentCorrect) / float64(report.RecentAttempts)
	}

	if retentionCount > 0 {
		report.AvgRetention = retentionSum / float64(retentionCount)
	} else {
		report.AvgRetention = 1.0
	}

	sessions := st.SessionCount
	if sessions < 1 {
		sessions = 1
	}
	report.LearningVelocity = float64(report.MasteryDistribution[mastery.LevelMastered]) / float64(sessions)

	return report, nil
}

// InsightItem is one strength, weakness, or prediction entry.
type InsightItem struct {
	Item       string   `json:"letter"`
	Accuracy   float64  `json:"accuracy,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
	Prediction string   `json:"prediction,omitempty"`
	Message    string   `json:"message,omitempty"`
	Retention  float64  `json:"retention,omitempty"`
}

// Insights is the qualitative analysis payload.
type Insights struct {
	Summary                  string        `json:"summary"`
	Strengths                []InsightItem `json:"strengths"`
	Weaknesses               []InsightItem `json:"weaknesses"`
	Predictions              []InsightItem `json:"predictions"`
	RecommendedSessionLength int           `json:"recommended_session_length"`
}

// GetLearningInsights derives strengths, weaknesses, and retention
// predictions from the learner's current state.
func (s *Service) GetLearningInsights(ctx context.Context, learnerID string) (*Insights, error) {
	st, err := s.repo.GetState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	insights := &Insights{
		Strengths:                []InsightItem{},
		Weaknesses:               []InsightItem{},
		Predictions:              []InsightItem{},
		RecommendedSessionLength: st.OptimalSessionLength,
	}
	if len(st.Items) == 0 {
		insights.Summary = "Start your learning journey! Begin with the first letter."
		return insights, nil
	}

	now := s.now()
	items := make([]string, 0, len(st.Items))
	for item := range st.Items {
		items = append(items, item)
	}
	sort.Strings(items)

	for _, item := range items {
		stat := st.Items[item]
		level := mastery.LevelFor(s.cfg, stat)

		if level == mastery.LevelMastered && stat.Accuracy() >= 0.9 {
			insights.Strengths = append(insights.Strengths, InsightItem{
				Item: item, Accuracy: stat.Accuracy(), Reason: "Consistently high performance",
			})
		}

		if level == mastery.LevelWeak {
			var reasons []string
			if stat.Accuracy() < 0.5 {
				reasons = append(reasons, "Low accuracy")
			}
			if len(stat.ConfusedWith) > 0 {
				wrongs := make([]string, 0, len(stat.ConfusedWith))
				for wrong := range stat.ConfusedWith {
					wrongs = append(wrongs, wrong)
				}
				sort.Strings(wrongs)
				if len(wrongs) > 2 {
					wrongs = wrongs[:2]
				}
				reasons = append(reasons, "Often confused with "+strings.Join(wrongs, ", "))
			}
			if stat.RecentTrend() == learner.TrendDeclining {
				reasons = append(reasons, "Performance declining")
			}
			insights.Weaknesses = append(insights.Weaknesses, InsightItem{
				Item: item, Accuracy: stat.Accuracy(), Reasons: reasons,
			})
		}

		if stat.Attempts >= 5 {
			retention := stat.RetentionProbability(now)
			if retention < 0.7 {
				insights.Predictions = append(insights.Predictions, InsightItem{
					Item:       item,
					Prediction: "at_risk",
					Message:    fmt.Sprintf("You might forget %s soon without review", strings.ToUpper(item)),
					Retention:  retention,
				})
			} else if retention > 0.9 && level == mastery.LevelMastered {
				insights.Predictions = append(insights.Predictions, InsightItem{
					Item:       item,
					Prediction: "stable",
					Message:    fmt.Sprintf("%s is well memorized", strings.ToUpper(item)),
					Retention:  retention,
				})
			}
		}
	}

	masteredCount := len(insights.Strengths)
	weakCount := len(insights.Weaknesses)
	switch {
	case weakCount == 0 && masteredCount > 0:
		insights.Summary = fmt.Sprintf("Excellent progress! You've mastered %d letters. Keep it up!", masteredCount)
	case weakCount > masteredCount:
		insights.Summary = "Focus on practicing your weak letters. Slow and steady wins the race!"
	default:
		insights.Summary = fmt.Sprintf("Good progress! %d mastered, %d need work.", masteredCount, weakCount)
	}

	return insights, nil
}
