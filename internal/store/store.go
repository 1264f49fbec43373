package store

import (
	"context"
	"errors"

	"github.com/braillepath/backend/internal/domain/learner"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps any driver-level failure so callers can
	// surface a generic storage-unavailable fault.
	ErrUnavailable = errors.New("storage unavailable")
)

// AttemptEvent is one immutable response record.
type AttemptEvent struct {
	ID           string  `db:"id" json:"id"`
	LearnerID    string  `db:"learner_id" json:"learner_id"`
	SessionID    *string `db:"session_id" json:"session_id,omitempty"`
	Item         string  `db:"item" json:"letter"`
	Spoken       string  `db:"spoken" json:"spoken_letter"`
	Correct      bool    `db:"correct" json:"is_correct"`
	ResponseTime float64 `db:"response_time" json:"response_time"`
	At           float64 `db:"at" json:"timestamp"`
}

// SessionSummary describes one closed or in-flight learning session.
type SessionSummary struct {
	ID              string   `db:"id" json:"id"`
	LearnerID       string   `db:"learner_id" json:"learner_id"`
	SessionType     string   `db:"session_type" json:"session_type"`
	StartedAt       float64  `db:"started_at" json:"started_at"`
	EndedAt         *float64 `db:"ended_at" json:"ended_at,omitempty"`
	TotalAttempts   int      `db:"total_attempts" json:"total_attempts"`
	CorrectAttempts int      `db:"correct_attempts" json:"correct_attempts"`
}

// Repository is the persistence collaborator for the learning engine.
//
// SaveState is deliberately not one atomic transaction: the aggregate
// learner row and each item row are independent upserts, so two
// concurrent operations on the same learner can lose updates. Callers
// keep at most one in-flight operation per learner (one active device
// session).
type Repository interface {
	// GetState loads the full learner state, creating a default record
	// when the learner has never been seen.
	GetState(ctx context.Context, learnerID string) (*learner.State, error)
	SaveState(ctx context.Context, st *learner.State) error

	RecordAttemptEvent(ctx context.Context, ev AttemptEvent) (string, error)
	IncrementProgressCounters(ctx context.Context, learnerID string, attempts, correct int) error
	IncrementSessionCount(ctx context.Context, learnerID string) error
	AddLearningTime(ctx context.Context, learnerID string, seconds float64) error
	RecentAttempts(ctx context.Context, learnerID string, limit int) ([]AttemptEvent, error)

	StartSession(ctx context.Context, learnerID, sessionType string) (string, error)
	EndSession(ctx context.Context, sessionID string, attempts, correct int) error
	RecentSessions(ctx context.Context, learnerID string, limit int) ([]SessionSummary, error)

	// SetCurrentItem publishes the last presented item for the hardware
	// display poller; CurrentItem reads it back.
	SetCurrentItem(ctx context.Context, learnerID, item string) error
	CurrentItem(ctx context.Context, learnerID string) (string, error)

	ResetProgress(ctx context.Context, learnerID string) error
}
