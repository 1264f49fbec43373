// Package mastery turns a per-item record into a skill score and a
// mastery tier.
package mastery

import (
	"github.com/braillepath/backend/internal/domain/learner"
)

// Level is the mastery tier for one item.
type Level string

const (
	LevelNew      Level = "new"
	LevelWeak     Level = "weak"
	LevelLearning Level = "learning"
	LevelMastered Level = "mastered"
)

// Config holds the scoring thresholds. All engine formulas read these
// instead of package globals so tests can tighten or relax them.
type Config struct {
	MaxResponseTime    float64 // seconds; slower than this scores 0 on speed
	High               float64 // skill score for the mastered tier
	Mid                float64 // skill score floor for the learning tier
	MinAttemptsForTier int     // attempts before anything can be called weak or mastered
}

// DefaultConfig matches the tuning used on the device: response times are
// child-friendly, mastery requires sustained performance.
func DefaultConfig() Config {
	return Config{
		MaxResponseTime:    6.0,
		High:               0.85,
		Mid:                0.6,
		MinAttemptsForTier: 5,
	}
}

// Score computes the skill score for an item in [0,1]:
// 0.6·accuracy + 0.25·speed + streak bonus (≤0.1) + consistency bonus (≤0.05).
func Score(cfg Config, s *learner.ItemStats) float64 {
	if s.Attempts == 0 {
		return 0
	}

	accuracy := s.Accuracy()
	speed := 1.0 - s.AvgResponseTime/cfg.MaxResponseTime
	if speed < 0 {
		speed = 0
	}
	streakBonus := float64(s.Streak) * 0.02
	if streakBonus > 0.1 {
		streakBonus = 0.1
	}

	score := 0.6*accuracy + 0.25*speed + streakBonus + consistencyBonus(s)
	if score > 1 {
		score = 1
	}
	return score
}

// consistencyBonus rewards low variance in the recent-result ring. Fewer
// than five recorded results earns nothing; a variance of 0.25 (pure
// coin-flip) zeroes the bonus.
func consistencyBonus(s *learner.ItemStats) float64 {
	if len(s.RecentResults) < 5 {
		return 0
	}

	recent := s.RecentResults
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	mean := 0.0
	for _, ok := range recent {
		if ok {
			mean++
		}
	}
	mean /= float64(len(recent))

	variance := 0.0
	for _, ok := range recent {
		x := 0.0
		if ok {
			x = 1.0
		}
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(recent))

	consistency := 1 - variance*4
	if consistency < 0 {
		consistency = 0
	}
	return consistency * 0.05
}

// LevelFor classifies an item. Before MinAttemptsForTier attempts the
// answer is always learning: an item cannot be judged weak on a handful
// of tries.
func LevelFor(cfg Config, s *learner.ItemStats) Level {
	if s.Attempts < cfg.MinAttemptsForTier {
		return LevelLearning
	}

	score := Score(cfg, s)
	switch {
	case score >= cfg.High:
		return LevelMastered
	case score >= cfg.Mid:
		return LevelLearning
	default:
		return LevelWeak
	}
}
