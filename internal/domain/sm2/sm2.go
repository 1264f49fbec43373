// Package sm2 implements the SuperMemo-2 spaced-repetition schedule for
// per-item review intervals.
package sm2

import (
	"math"

	"github.com/braillepath/backend/internal/domain/learner"
)

const (
	// MinEasiness is the floor for the SM-2 easiness factor.
	MinEasiness = 1.3
	// MaxIntervalDays caps the review interval at one year.
	MaxIntervalDays = 365

	secondsPerDay = 86400.0
)

// Quality grades a response on the SM-2 0-5 scale. An incorrect answer
// is a 1; correct answers grade on speed relative to the learner's own
// running average for the item.
func Quality(correct bool, responseTime, avgTime float64) int {
	if !correct {
		return 1
	}
	switch {
	case responseTime <= avgTime*0.5:
		return 5
	case responseTime <= avgTime*0.75:
		return 4
	default:
		return 3
	}
}

// Update applies one graded response to the item's scheduling state:
// easiness factor, interval, repetition streak, and next review time.
func Update(s *learner.ItemStats, quality int, now float64) {
	q := float64(quality)
	ef := s.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < MinEasiness {
		ef = MinEasiness
	}
	s.EasinessFactor = ef

	if quality >= 3 {
		switch s.Repetition {
		case 0:
			s.Interval = 1
		case 1:
			s.Interval = 6
		default:
			s.Interval = int(math.Round(float64(s.Interval) * s.EasinessFactor))
		}
		s.Repetition++
	} else {
		s.Repetition = 0
		s.Interval = 1
	}

	if s.Interval > MaxIntervalDays {
		s.Interval = MaxIntervalDays
	}
	if s.Interval < 1 {
		s.Interval = 1
	}

	s.NextReview = now + float64(s.Interval)*secondsPerDay
}
