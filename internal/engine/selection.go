package engine

import (
	"sort"

	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/mastery"
)

// buckets holds the introduced items grouped by mastery tier.
type buckets struct {
	weak     []*learner.ItemStats
	learning []*learner.ItemStats
	mastered []*learner.ItemStats
}

// ChooseNextItem picks the letter to present next. Introduced candidates
// are bucketed by tier and their difficulty estimates refreshed; either
// a brand-new letter is introduced, or a mode-specific pool is scored
// and one of the top five drawn with priority-proportional weights.
func (s *Service) ChooseNextItem(st *learner.State, candidates []string) string {
	mode := s.ChooseMode(st)

	var b buckets
	var introduced []string
	for _, item := range candidates {
		stat, ok := st.Items[item]
		if !ok {
			continue
		}
		introduced = append(introduced, item)
		switch mastery.LevelFor(s.cfg, stat) {
		case mastery.LevelWeak:
			b.weak = append(b.weak, stat)
		case mastery.LevelMastered:
			b.mastered = append(b.mastered, stat)
		default:
			b.learning = append(b.learning, stat)
		}
		s.estimateItemDifficulty(stat, st.Items)
	}

	if s.shouldIntroduceNew(st, introduced, candidates, b) && len(introduced) < len(candidates) {
		return s.introduceNew(st, candidates)
	}

	pool := s.poolForMode(mode, b)
	if len(pool) == 0 {
		return s.introduceNew(st, candidates)
	}

	now := s.now()
	type scored struct {
		stat     *learner.ItemStats
		priority float64
	}
	ranked := make([]scored, len(pool))
	for i, stat := range pool {
		ranked[i] = scored{stat, s.selectionPriority(stat, st, now)}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority > ranked[j].priority
		}
		return ranked[i].stat.Item < ranked[j].stat.Item
	})

	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	// Weighted draw over the top candidates: strongly biased toward
	// high priority, +1 keeps zero-priority items drawable.
	total := 0.0
	for _, c := range ranked {
		total += c.priority + 1
	}
	r := s.rng.Float64() * total
	for _, c := range ranked {
		r -= c.priority + 1
		if r <= 0 {
			return c.stat.Item
		}
	}
	return ranked[len(ranked)-1].stat.Item
}

// shouldIntroduceNew decides whether to bring in an unseen letter
// instead of drilling a known one.
func (s *Service) shouldIntroduceNew(st *learner.State, introduced, candidates []string, b buckets) bool {
	if len(introduced) == 0 {
		return true
	}
	if len(introduced) >= len(candidates) {
		return false
	}

	// Most recently practiced letter drives the readiness check.
	var latest *learner.ItemStats
	for _, item := range introduced {
		stat := st.Items[item]
		if stat == nil {
			continue
		}
		if latest == nil || stat.LastSeen > latest.LastSeen {
			latest = stat
		}
	}
	if latest != nil {
		if latest.Streak >= 5 && latest.Accuracy() >= 0.7 {
			return true
		}
		if mastery.LevelFor(s.cfg, latest) == mastery.LevelMastered {
			return true
		}
	}

	if len(b.mastered) > 0 && len(b.weak) == 0 && len(b.learning) == 0 {
		return true
	}

	// Periodic cadence: every second mastered letter earns a new one.
	if len(b.mastered) > 0 && len(b.mastered)%2 == 0 {
		return true
	}

	return false
}

// introduceNew registers the first unseen candidate in reference order,
// or falls back to the least-attempted known item when everything has
// been introduced already.
func (s *Service) introduceNew(st *learner.State, candidates []string) string {
	now := s.now()
	for _, item := range candidates {
		if _, ok := st.Items[item]; !ok {
			st.ItemStat(item, now)
			return item
		}
	}

	least := ""
	for _, item := range candidates {
		stat, ok := st.Items[item]
		if !ok {
			continue
		}
		if least == "" || stat.Attempts < st.Items[least].Attempts {
			least = item
		}
	}
	return least
}

// poolForMode selects the candidate pool for the chosen mode. Every mode
// falls back along the learning → weak → mastered chain when its
// preferred pool is empty.
func (s *Service) poolForMode(mode Mode, b buckets) []*learner.ItemStats {
	now := s.now()

	switch mode {
	case ModeRevision:
		if len(b.weak) > 0 {
			return b.weak
		}
		return defaultPool(b)

	case ModeSpacedReview:
		var due []*learner.ItemStats
		for _, stat := range append(append([]*learner.ItemStats{}, b.mastered...), b.learning...) {
			if stat.DueForReview(now) {
				due = append(due, stat)
			}
		}
		if len(due) > 0 {
			return due
		}
		return b.learning

	case ModeReview:
		if len(b.mastered) > 0 {
			var stale []*learner.ItemStats
			for _, stat := range b.mastered {
				if stat.Stale(now, stalenessIntervals[mastery.LevelMastered]) {
					stale = append(stale, stat)
				}
			}
			if len(stale) > 0 {
				return stale
			}
			if len(b.learning) > 0 {
				return b.learning
			}
			return b.weak
		}
		return defaultPool(b)

	case ModeConfusionDrill:
		confused := make(map[string]bool)
		for _, stat := range append(append([]*learner.ItemStats{}, b.weak...), b.learning...) {
			if len(stat.ConfusedWith) > 0 {
				confused[stat.Item] = true
				for wrong := range stat.ConfusedWith {
					confused[wrong] = true
				}
			}
		}
		var pool []*learner.ItemStats
		for _, stat := range append(append([]*learner.ItemStats{}, b.weak...), b.learning...) {
			if confused[stat.Item] {
				pool = append(pool, stat)
			}
		}
		return pool

	case ModeGuided, ModeChallenge:
		return defaultPool(b)

	default:
		return defaultPool(b)
	}
}

func defaultPool(b buckets) []*learner.ItemStats {
	if len(b.learning) > 0 {
		return b.learning
	}
	if len(b.weak) > 0 {
		return b.weak
	}
	return b.mastered
}

// selectionPriority scores one pooled item. Factors, in points:
// SM-2 overdue 0-30, retention risk 0-25, trend 0-15, difficulty match
// 0-20, recency 0-10.
func (s *Service) selectionPriority(stat *learner.ItemStats, st *learner.State, now float64) float64 {
	priority := 0.0

	if stat.DueForReview(now) {
		overdueDays := (now - stat.NextReview) / secondsPerDay
		bonus := 15 + overdueDays*5
		if bonus > 30 {
			bonus = 30
		}
		priority += bonus
	}

	if retention := stat.RetentionProbability(now); retention < 0.9 {
		priority += (1 - retention) * 25
	}

	switch trend := stat.RecentTrend(); {
	case trend == learner.TrendDeclining:
		priority += 15
	case trend == learner.TrendStable && stat.Accuracy() < s.cfg.Mid:
		priority += 8
	}

	diff := stat.Difficulty - st.CurrentDifficulty
	if diff < 0 {
		diff = -diff
	}
	priority += (1 - diff) * 20

	hoursSince := stat.TimeSinceLastSeen(now) / 3600
	recency := hoursSince * 0.5
	if recency > 10 {
		recency = 10
	}
	priority += recency

	return priority
}
