// Package tutorial implements the fixed-sequence walkthrough over the
// alphabet: a bounded index cursor per session, held in an in-process
// keyed store with a scheduled TTL sweep for abandoned sessions.
package tutorial

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/braillepath/backend/internal/id"
)

var ErrSessionNotFound = errors.New("tutorial session not found")

// Session is one walkthrough in progress. Index always stays within
// [0, len(alphabet)).
type Session struct {
	ID           string
	LearnerID    string
	Index        int
	StartedAt    time.Time
	LastActivity time.Time
}

// Store owns all tutorial sessions for this process. Sessions idle
// longer than the TTL are dropped by a periodic sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	alphabet []string
	ttl      time.Duration
	logger   *slog.Logger
	sched    *gocron.Scheduler
}

// NewStore creates a Store walking the given alphabet in order.
func NewStore(alphabet []string, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		alphabet: alphabet,
		ttl:      ttl,
		logger:   logger,
	}
}

// StartSweeper schedules the TTL sweep every 10 minutes.
func (s *Store) StartSweeper() {
	s.sched = gocron.NewScheduler(time.UTC)
	s.sched.Every(10).Minutes().Do(s.sweep)
	s.sched.StartAsync()
}

// Stop halts the sweep scheduler.
func (s *Store) Stop() {
	if s.sched != nil {
		s.sched.Stop()
	}
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for sid, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, sid)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("swept inactive tutorial sessions", "removed", removed)
	}
}

// Start opens a new session at the first letter.
func (s *Store) Start(learnerID string) *Session {
	now := time.Now()
	sess := &Session{
		ID:           id.GenerateID(),
		LearnerID:    learnerID,
		StartedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a snapshot of a session.
func (s *Store) Get(sessionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// Letter returns the letter at the session's cursor.
func (s *Store) Letter(sess Session) string {
	return s.alphabet[sess.Index]
}

// Total returns the walkthrough length.
func (s *Store) Total() int {
	return len(s.alphabet)
}

// Next advances the cursor, clamping at the last letter.
func (s *Store) Next(sessionID string) (Session, error) {
	return s.move(sessionID, +1)
}

// Prev moves the cursor back, clamping at the first letter.
func (s *Store) Prev(sessionID string) (Session, error) {
	return s.move(sessionID, -1)
}

func (s *Store) move(sessionID string, delta int) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	next := sess.Index + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.alphabet)-1 {
		next = len(s.alphabet) - 1
	}
	sess.Index = next
	sess.LastActivity = time.Now()
	return *sess, nil
}

// Jump moves the cursor to an absolute position.
func (s *Store) Jump(sessionID string, index int) (Session, error) {
	if index < 0 || index >= len(s.alphabet) {
		return Session{}, errors.New("index out of range")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.Index = index
	sess.LastActivity = time.Now()
	return *sess, nil
}

// End removes a session.
func (s *Store) End(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}
