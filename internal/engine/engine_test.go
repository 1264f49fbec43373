package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/mastery"
	"github.com/braillepath/backend/internal/engine"
	"github.com/braillepath/backend/internal/store"
)

// testNow is the frozen clock used by every engine test.
const testNow = 1_000_000.0

// fakeRepo is an in-memory store.Repository for engine tests.
type fakeRepo struct {
	mu       sync.Mutex
	states   map[string]*learner.State
	attempts []store.AttemptEvent
	sessions map[string]*store.SessionSummary
	current  map[string]string

	sessionCounts map[string]int
	learningTime  map[string]float64
	saveCalls     int
	nextSessionID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		states:        make(map[string]*learner.State),
		sessions:      make(map[string]*store.SessionSummary),
		current:       make(map[string]string),
		sessionCounts: make(map[string]int),
		learningTime:  make(map[string]float64),
	}
}

func (f *fakeRepo) GetState(_ context.Context, learnerID string) (*learner.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[learnerID]
	if !ok {
		st = learner.NewState(learnerID)
		f.states[learnerID] = st
	}
	return st, nil
}

func (f *fakeRepo) SaveState(_ context.Context, st *learner.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[st.LearnerID] = st
	f.saveCalls++
	return nil
}

func (f *fakeRepo) RecordAttemptEvent(_ context.Context, ev store.AttemptEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = fmt.Sprintf("attempt-%d", len(f.attempts)+1)
	f.attempts = append(f.attempts, ev)
	return ev.ID, nil
}

func (f *fakeRepo) IncrementProgressCounters(_ context.Context, learnerID string, attempts, correct int) error {
	return nil
}

func (f *fakeRepo) IncrementSessionCount(_ context.Context, learnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCounts[learnerID]++
	return nil
}

func (f *fakeRepo) AddLearningTime(_ context.Context, learnerID string, seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.learningTime[learnerID] += seconds
	return nil
}

func (f *fakeRepo) RecentAttempts(_ context.Context, learnerID string, limit int) ([]store.AttemptEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.AttemptEvent
	for i := len(f.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if f.attempts[i].LearnerID == learnerID {
			out = append(out, f.attempts[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) StartSession(_ context.Context, learnerID, sessionType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSessionID++
	id := fmt.Sprintf("session-%d", f.nextSessionID)
	f.sessions[id] = &store.SessionSummary{ID: id, LearnerID: learnerID, SessionType: sessionType}
	return id, nil
}

func (f *fakeRepo) EndSession(_ context.Context, sessionID string, attempts, correct int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return store.ErrNotFound
	}
	ended := testNow
	s.EndedAt = &ended
	s.TotalAttempts = attempts
	s.CorrectAttempts = correct
	return nil
}

func (f *fakeRepo) RecentSessions(_ context.Context, learnerID string, limit int) ([]store.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.SessionSummary
	for _, s := range f.sessions {
		if s.LearnerID == learnerID && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetCurrentItem(_ context.Context, learnerID, item string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current[learnerID] = item
	return nil
}

func (f *fakeRepo) CurrentItem(_ context.Context, learnerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.current[learnerID]
	if !ok {
		return "", store.ErrNotFound
	}
	return item, nil
}

func (f *fakeRepo) ResetProgress(_ context.Context, learnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, learnerID)
	delete(f.current, learnerID)
	return nil
}

// newTestEngine returns an engine with a frozen clock, a seeded random
// source, and a fresh fake repository.
func newTestEngine(t *testing.T) (*engine.Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(repo, mastery.DefaultConfig(), logger).
		WithClock(func() float64 { return testNow }).
		WithRand(rand.New(rand.NewSource(1)))
	return eng, repo
}

// masteredStat builds a record that classifies as mastered and is
// neither due nor stale at testNow.
func masteredStat(item string) *learner.ItemStats {
	s := learner.NewItemStats(item, testNow)
	s.Attempts = 20
	s.Correct = 20
	s.AvgResponseTime = 1.0
	s.Streak = 10
	s.BestStreak = 10
	s.RecentResults = []bool{true, true, true, true, true}
	s.NextReview = testNow + 6*86400
	s.LastSeen = testNow
	return s
}

// weakStat builds a record that classifies as weak and is neither due
// nor stale at testNow.
func weakStat(item string) *learner.ItemStats {
	s := learner.NewItemStats(item, testNow)
	s.Attempts = 10
	s.Correct = 3
	s.AvgResponseTime = 6.0
	s.NextReview = testNow + 86400
	s.LastSeen = testNow
	return s
}

// learningStat builds a record that classifies as learning and is
// neither due nor stale at testNow.
func learningStat(item string) *learner.ItemStats {
	s := learner.NewItemStats(item, testNow)
	s.Attempts = 10
	s.Correct = 8
	s.AvgResponseTime = 3.0
	s.Streak = 1
	s.NextReview = testNow + 86400
	s.LastSeen = testNow
	return s
}

func stateWith(learnerID string, sessionCount int, items ...*learner.ItemStats) *learner.State {
	st := learner.NewState(learnerID)
	st.SessionCount = sessionCount
	for _, s := range items {
		st.Items[s.Item] = s
	}
	return st
}

func TestStartSession_CountsSessions(t *testing.T) {
	eng, repo := newTestEngine(t)

	id, err := eng.StartSession(context.Background(), "learner-1", "practice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Error("expected a session id")
	}
	if repo.sessionCounts["learner-1"] != 1 {
		t.Errorf("expected session count 1, got %d", repo.sessionCounts["learner-1"])
	}
}

func TestAddLearningTime(t *testing.T) {
	eng, repo := newTestEngine(t)

	if err := eng.AddLearningTime(context.Background(), "learner-1", 120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.learningTime["learner-1"] != 120 {
		t.Errorf("expected 120 seconds recorded, got %v", repo.learningTime["learner-1"])
	}
}
