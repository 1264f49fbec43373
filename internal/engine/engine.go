// Package engine implements the adaptive learning engine: mastery
// scoring, SM-2 scheduling, adaptive difficulty, confusion analysis,
// item selection, and attempt processing. Every operation loads the full
// learner state from the repository, transforms it in memory, and writes
// it back; the engine holds no cross-call state of its own.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/braillepath/backend/internal/domain/mastery"
	"github.com/braillepath/backend/internal/store"
)

// Staleness intervals per mastery tier, in seconds. A mastered letter is
// allowed to rest half an hour before plain review kicks in.
var stalenessIntervals = map[mastery.Level]float64{
	mastery.LevelWeak:     60,
	mastery.LevelLearning: 300,
	mastery.LevelMastered: 1800,
}

const (
	// difficultyStep is the bang-bang controller step size.
	difficultyStep = 0.1
	// zoneMin/zoneMax bound the target success-rate band.
	zoneMin = 0.6
	zoneMax = 0.85
	// fatigueThreshold flags a session running below this fraction of
	// lifetime accuracy.
	fatigueThreshold = 0.7

	secondsPerDay = 86400.0
)

// Service is the learning engine. The clock and the random source are
// injectable so selection is reproducible under test.
type Service struct {
	repo   store.Repository
	cfg    mastery.Config
	logger *slog.Logger
	rng    *rand.Rand
	now    func() float64
}

// New creates a Service with the wall clock and a time-seeded random
// source.
func New(repo store.Repository, cfg mastery.Config, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    func() float64 { return float64(time.Now().UnixNano()) / 1e9 },
	}
}

// WithClock replaces the engine clock. Returns the service for chaining.
func (s *Service) WithClock(now func() float64) *Service {
	s.now = now
	return s
}

// WithRand replaces the random source used by the weighted draw.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// ResetProgress wipes all learning progress for a learner.
func (s *Service) ResetProgress(ctx context.Context, learnerID string) error {
	return s.repo.ResetProgress(ctx, learnerID)
}

// AddLearningTime adds practice seconds to the learner's lifetime total.
func (s *Service) AddLearningTime(ctx context.Context, learnerID string, seconds float64) error {
	return s.repo.AddLearningTime(ctx, learnerID, seconds)
}

// RecentAttempts returns the learner's latest attempt events, newest first.
func (s *Service) RecentAttempts(ctx context.Context, learnerID string, limit int) ([]store.AttemptEvent, error) {
	return s.repo.RecentAttempts(ctx, learnerID, limit)
}

// RecentSessions returns the learner's latest sessions, newest first.
func (s *Service) RecentSessions(ctx context.Context, learnerID string, limit int) ([]store.SessionSummary, error) {
	return s.repo.RecentSessions(ctx, learnerID, limit)
}

// StartSession opens a session record and bumps the learner's session
// count, which drives the guided-mode gate for new learners.
func (s *Service) StartSession(ctx context.Context, learnerID, sessionType string) (string, error) {
	id, err := s.repo.StartSession(ctx, learnerID, sessionType)
	if err != nil {
		return "", err
	}
	if err := s.repo.IncrementSessionCount(ctx, learnerID); err != nil {
		return "", err
	}
	return id, nil
}

// EndSession closes a session record with its final counters.
func (s *Service) EndSession(ctx context.Context, sessionID string, attempts, correct int) error {
	return s.repo.EndSession(ctx, sessionID, attempts, correct)
}

// Config exposes the scoring thresholds for the constants endpoint.
func (s *Service) Config() mastery.Config {
	return s.cfg
}
