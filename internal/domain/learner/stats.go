package learner

import "math"

const (
	// TrendWindow bounds the in-memory result/response-time rings.
	TrendWindow = 10
	// PersistWindow bounds the rings when written to storage.
	PersistWindow = 20

	secondsPerDay = 86400.0
)

// ItemStats tracks a single learner's progress on one letter.
type ItemStats struct {
	Item            string
	Attempts        int
	Correct         int
	AvgResponseTime float64 // running mean, seconds
	LastSeen        float64 // unix epoch seconds
	ConfusedWith    map[string]int
	Streak          int
	BestStreak      int

	// SM-2 scheduling state
	EasinessFactor float64
	Interval       int // days
	Repetition     int
	NextReview     float64 // unix epoch seconds

	// Bounded trend rings, newest last
	RecentResults []bool
	ResponseTimes []float64

	// Difficulty estimation
	Difficulty     float64 // 0-1, 0.5 = medium
	Discrimination float64 // carried for the reporting layer

	SessionAttempts int
	SessionCorrect  int
	FirstSeen       float64
}

// NewItemStats returns a fresh record for an item first seen at now.
func NewItemStats(item string, now float64) *ItemStats {
	return &ItemStats{
		Item:           item,
		ConfusedWith:   make(map[string]int),
		EasinessFactor: 2.5,
		Interval:       1,
		NextReview:     now,
		Difficulty:     0.5,
		Discrimination: 1.0,
		LastSeen:       now,
		FirstSeen:      now,
	}
}

// Accuracy returns correct/attempts, clamped so a corrupted record can
// never report more than 1.0. Zero attempts reports 0.
func (s *ItemStats) Accuracy() float64 {
	if s.Attempts <= 0 {
		return 0
	}
	correct := s.Correct
	if correct > s.Attempts {
		correct = s.Attempts
	}
	return float64(correct) / float64(s.Attempts)
}

// TimeSinceLastSeen returns the seconds elapsed since the last attempt.
func (s *ItemStats) TimeSinceLastSeen(now float64) float64 {
	return now - s.LastSeen
}

// Stale reports whether the item has gone unseen longer than the given
// staleness interval in seconds.
func (s *ItemStats) Stale(now, interval float64) bool {
	return s.TimeSinceLastSeen(now) >= interval
}

// DueForReview reports whether the SM-2 schedule has come due.
func (s *ItemStats) DueForReview(now float64) bool {
	return now >= s.NextReview
}

// RetentionProbability estimates current recall probability with the
// Ebbinghaus forgetting curve R = e^(-t/S), where stability S grows with
// the easiness factor and the successful-repetition count.
func (s *ItemStats) RetentionProbability(now float64) float64 {
	stability := s.EasinessFactor * float64(s.Repetition+1) * secondsPerDay
	if stability <= 0 {
		return 0.5
	}
	retention := math.Exp(-s.TimeSinceLastSeen(now) / stability)
	return math.Max(0, math.Min(1, retention))
}

// Trend labels for RecentTrend and ResponseTimeTrend.
const (
	TrendInsufficient = "insufficient_data"
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendSpeedingUp   = "speeding_up"
	TrendSlowingDown  = "slowing_down"
)

// RecentTrend compares the last five results against lifetime accuracy.
func (s *ItemStats) RecentTrend() string {
	if len(s.RecentResults) < 3 {
		return TrendInsufficient
	}

	recent := s.RecentResults
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	hits := 0
	for _, ok := range recent {
		if ok {
			hits++
		}
	}
	recentAccuracy := float64(hits) / float64(len(recent))
	overall := s.Accuracy()

	switch {
	case recentAccuracy > overall+0.15:
		return TrendImproving
	case recentAccuracy < overall-0.15:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// ResponseTimeTrend compares the last five response times against the
// older portion of the ring. A 20% shift either way changes the label.
func (s *ItemStats) ResponseTimeTrend() string {
	if len(s.ResponseTimes) < 3 {
		return TrendInsufficient
	}

	split := len(s.ResponseTimes) - 5
	if split <= 0 {
		return TrendStable
	}
	older := s.ResponseTimes[:split]
	recent := s.ResponseTimes[split:]

	recentAvg := mean(recent)
	olderAvg := mean(older)

	switch {
	case recentAvg < olderAvg*0.8:
		return TrendSpeedingUp
	case recentAvg > olderAvg*1.2:
		return TrendSlowingDown
	default:
		return TrendStable
	}
}

// PushResult appends to the result ring, truncating to TrendWindow.
func (s *ItemStats) PushResult(correct bool) {
	s.RecentResults = append(s.RecentResults, correct)
	if len(s.RecentResults) > TrendWindow {
		s.RecentResults = s.RecentResults[len(s.RecentResults)-TrendWindow:]
	}
}

// PushResponseTime appends to the response-time ring, truncating to TrendWindow.
func (s *ItemStats) PushResponseTime(rt float64) {
	s.ResponseTimes = append(s.ResponseTimes, rt)
	if len(s.ResponseTimes) > TrendWindow {
		s.ResponseTimes = s.ResponseTimes[len(s.ResponseTimes)-TrendWindow:]
	}
}

// RecentAccuracy returns the mean of the result ring, 0 when empty.
func (s *ItemStats) RecentAccuracy() float64 {
	if len(s.RecentResults) == 0 {
		return 0
	}
	hits := 0
	for _, ok := range s.RecentResults {
		if ok {
			hits++
		}
	}
	return float64(hits) / float64(len(s.RecentResults))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
