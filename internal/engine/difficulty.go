package engine

import (
	"github.com/braillepath/backend/internal/domain/learner"
)

// adjustDifficulty nudges the learner's difficulty scalar to hold the
// recent success rate inside the 60-85% band. Two thresholds, no
// hysteresis: above the band steps up, below steps down.
func (s *Service) adjustDifficulty(st *learner.State, recentAccuracy float64) {
	switch {
	case recentAccuracy > zoneMax:
		st.CurrentDifficulty += difficultyStep
		if st.CurrentDifficulty > 1 {
			st.CurrentDifficulty = 1
		}
	case recentAccuracy < zoneMin:
		st.CurrentDifficulty -= difficultyStep
		if st.CurrentDifficulty < 0 {
			st.CurrentDifficulty = 0
		}
	}
	st.PushDifficulty(st.CurrentDifficulty)
}

// estimateItemDifficulty refreshes an item's difficulty estimate from
// the learner's own accuracy, the breadth of its confusion map, and its
// response time relative to the learner's cross-item average. Items with
// fewer than three attempts sit at medium difficulty.
func (s *Service) estimateItemDifficulty(stat *learner.ItemStats, items map[string]*learner.ItemStats) float64 {
	if stat.Attempts < 3 {
		return 0.5
	}

	accuracy := stat.Accuracy()

	confusionFactor := float64(len(stat.ConfusedWith)) * 0.15
	if confusionFactor > 1 {
		confusionFactor = 1
	}

	sum, n := 0.0, 0
	for _, other := range items {
		if other.Attempts > 0 {
			sum += other.AvgResponseTime
			n++
		}
	}
	avgTime := s.cfg.MaxResponseTime / 2
	if n > 0 {
		avgTime = sum / float64(n)
	}
	timeFactor := 0.5
	if avgTime > 0 {
		timeFactor = stat.AvgResponseTime / avgTime
		if timeFactor > 1 {
			timeFactor = 1
		}
	}

	difficulty := (1-accuracy)*0.5 + confusionFactor*0.3 + timeFactor*0.2
	if difficulty > 1 {
		difficulty = 1
	}
	if difficulty < 0 {
		difficulty = 0
	}
	stat.Difficulty = difficulty
	return difficulty
}
