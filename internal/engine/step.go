package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/braillepath/backend/internal/braille"
	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/mastery"
)

// ItemDetail is the per-letter snapshot returned with a learning step.
type ItemDetail struct {
	Mastery     mastery.Level `json:"mastery"`
	Score       float64       `json:"score"`
	Retention   float64       `json:"retention"`
	Trend       string        `json:"trend"`
	NeedsReview bool          `json:"needs_review"`
}

// StepContext carries the selected item's statistics for the caller.
type StepContext struct {
	Attempts             int     `json:"attempts"`
	Correct              int     `json:"correct"`
	AvgResponseTime      float64 `json:"avg_response_time"`
	LastSeenAgo          float64 `json:"last_seen_ago"`
	Streak               int     `json:"streak"`
	BestStreak           int     `json:"best_streak"`
	RetentionProbability float64 `json:"retention_probability"`
	Trend                string  `json:"trend"`
	Interval             int     `json:"sm2_interval"`
	EasinessFactor       float64 `json:"easiness_factor"`
}

// Recommendation is one personalized suggestion for the learner.
type Recommendation struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Priority string   `json:"priority"`
	Items    []string `json:"letters"`
}

// LearningStep is the read-path response: what to present next and why.
type LearningStep struct {
	Mode            Mode                     `json:"mode"`
	NextItem        string                   `json:"next_letter"`
	Reason          string                   `json:"reason"`
	Difficulty      float64                  `json:"difficulty"`
	LearnerLevel    float64                  `json:"user_difficulty_level"`
	Context         *StepContext             `json:"context,omitempty"`
	MasteryStatus   map[string]mastery.Level `json:"mastery_status"`
	ItemDetails     map[string]ItemDetail    `json:"letter_details"`
	Recommendations []Recommendation         `json:"recommendations"`
}

// GetLearningStep chooses the mode and the next letter for a learner,
// saves the (possibly extended) state, and publishes the presented item
// for the hardware display poller.
func (s *Service) GetLearningStep(ctx context.Context, learnerID string, candidates []string) (*LearningStep, error) {
	if len(candidates) == 0 {
		candidates = braille.Alphabet()
	}

	st, err := s.repo.GetState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	mode := s.ChooseMode(st)
	next := s.ChooseNextItem(st, candidates)
	stat := st.Items[next]

	step := &LearningStep{
		Mode:          mode,
		NextItem:      next,
		Reason:        s.stepReason(mode, stat, next),
		Difficulty:    0.5,
		LearnerLevel:  st.CurrentDifficulty,
		MasteryStatus: make(map[string]mastery.Level, len(candidates)),
		ItemDetails:   make(map[string]ItemDetail, len(candidates)),
	}
	if stat != nil {
		step.Difficulty = stat.Difficulty
		step.Context = &StepContext{
			Attempts:             stat.Attempts,
			Correct:              stat.Correct,
			AvgResponseTime:      stat.AvgResponseTime,
			LastSeenAgo:          stat.TimeSinceLastSeen(now),
			Streak:               stat.Streak,
			BestStreak:           stat.BestStreak,
			RetentionProbability: stat.RetentionProbability(now),
			Trend:                stat.RecentTrend(),
			Interval:             stat.Interval,
			EasinessFactor:       stat.EasinessFactor,
		}
	}

	for _, item := range candidates {
		itemStat, ok := st.Items[item]
		if !ok {
			step.MasteryStatus[item] = mastery.LevelNew
			step.ItemDetails[item] = ItemDetail{Mastery: mastery.LevelNew, Retention: 1.0, Trend: "new"}
			continue
		}
		level := mastery.LevelFor(s.cfg, itemStat)
		step.MasteryStatus[item] = level
		step.ItemDetails[item] = ItemDetail{
			Mastery:     level,
			Score:       mastery.Score(s.cfg, itemStat),
			Retention:   itemStat.RetentionProbability(now),
			Trend:       itemStat.RecentTrend(),
			NeedsReview: itemStat.DueForReview(now),
		}
	}

	step.Recommendations = s.recommendations(st, candidates, now)

	if err := s.repo.SaveState(ctx, st); err != nil {
		return nil, err
	}
	if err := s.repo.SetCurrentItem(ctx, learnerID, strings.ToLower(next)); err != nil {
		return nil, err
	}

	return step, nil
}

// recommendations derives the personalized suggestion list: urgent
// reviews first, then confusion focus, declining items, and readiness
// for new letters.
func (s *Service) recommendations(st *learner.State, candidates []string, now float64) []Recommendation {
	recs := []Recommendation{}

	type atRisk struct {
		item      string
		retention float64
	}
	var urgent []atRisk
	for item, stat := range st.Items {
		if stat.DueForReview(now) && stat.RetentionProbability(now) < 0.7 {
			urgent = append(urgent, atRisk{item, stat.RetentionProbability(now)})
		}
	}
	if len(urgent) > 0 {
		sort.Slice(urgent, func(i, j int) bool { return urgent[i].retention < urgent[j].retention })
		items := make([]string, 0, 3)
		for i, u := range urgent {
			if i == 3 {
				break
			}
			items = append(items, u.item)
		}
		recs = append(recs, Recommendation{
			Type:     "urgent_review",
			Message:  fmt.Sprintf("Review %s soon - you might be forgetting it!", strings.ToUpper(urgent[0].item)),
			Priority: "high",
			Items:    items,
		})
	}

	if pairs := s.MostConfusedPairs(st, 3); len(pairs) > 0 {
		top := pairs[0]
		recs = append(recs, Recommendation{
			Type:     "confusion_focus",
			Message:  fmt.Sprintf("You often confuse %s with %s. Focus on their differences!", strings.ToUpper(top.Item), strings.ToUpper(top.ConfusedWith)),
			Priority: "medium",
			Items:    []string{top.Item, top.ConfusedWith},
		})
	}

	var declining []string
	for _, item := range candidates {
		if stat, ok := st.Items[item]; ok && stat.RecentTrend() == learner.TrendDeclining {
			declining = append(declining, item)
		}
	}
	if len(declining) > 0 {
		items := declining
		if len(items) > 3 {
			items = items[:3]
		}
		recs = append(recs, Recommendation{
			Type:     "declining_performance",
			Message:  fmt.Sprintf("Your performance on %s is declining. Take a break and revisit!", strings.ToUpper(declining[0])),
			Priority: "medium",
			Items:    items,
		})
	}

	masteredCount := 0
	for _, stat := range st.Items {
		if mastery.LevelFor(s.cfg, stat) == mastery.LevelMastered {
			masteredCount++
		}
	}
	if len(st.Items) < len(candidates) && float64(masteredCount) >= float64(len(st.Items))*0.5 {
		recs = append(recs, Recommendation{
			Type:     "ready_for_new",
			Message:  "You're doing great! Ready to learn a new letter?",
			Priority: "low",
			Items:    []string{},
		})
	}

	return recs
}

// stepReason renders a human-readable explanation for the chosen step.
func (s *Service) stepReason(mode Mode, stat *learner.ItemStats, item string) string {
	upper := strings.ToUpper(item)
	if stat == nil || stat.Attempts == 0 {
		return fmt.Sprintf("Let's learn a new letter: %s!", upper)
	}

	now := s.now()
	retention := stat.RetentionProbability(now)
	trend := stat.RecentTrend()

	switch mode {
	case ModeSpacedReview:
		if retention < 0.7 {
			return fmt.Sprintf("Time for a quick review of %s before you forget it!", upper)
		}
		return fmt.Sprintf("Perfect timing to reinforce %s!", upper)
	case ModeRevision:
		if trend == learner.TrendDeclining {
			return fmt.Sprintf("Let's work on %s - your recent attempts need a boost.", upper)
		}
		return fmt.Sprintf("Time to practice %s - you're still learning this one.", upper)
	case ModeReview:
		return fmt.Sprintf("Let's review %s to keep it fresh!", upper)
	case ModeGuided:
		return fmt.Sprintf("Keep going! Practice makes perfect with %s.", upper)
	case ModeConfusionDrill:
		top, topCount := "", 0
		for wrong, count := range stat.ConfusedWith {
			if count > topCount || (count == topCount && wrong < top) {
				top, topCount = wrong, count
			}
		}
		if top != "" {
			return fmt.Sprintf("Focus time! %s is often confused with %s.", upper, strings.ToUpper(top))
		}
		return fmt.Sprintf("Let's clarify %s!", upper)
	case ModeChallenge:
		if trend == learner.TrendImproving {
			return fmt.Sprintf("You're on fire with %s! Keep the momentum!", upper)
		}
		return fmt.Sprintf("Challenge mode! You have %d%% accuracy on %s.", int(stat.Accuracy()*100+0.5), upper)
	default:
		return fmt.Sprintf("Next up: %s", upper)
	}
}
