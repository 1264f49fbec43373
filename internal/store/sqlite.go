package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/braillepath/backend/internal/domain/learner"
)

const schema = `
CREATE TABLE IF NOT EXISTS learner_progress (
    learner_id TEXT PRIMARY KEY,
    level TEXT NOT NULL DEFAULT 'letters_basic',
    session_count INTEGER NOT NULL DEFAULT 0,
    total_attempts INTEGER NOT NULL DEFAULT 0,
    total_correct INTEGER NOT NULL DEFAULT 0,
    total_time_spent REAL NOT NULL DEFAULT 0,
    achievements TEXT NOT NULL DEFAULT '[]',
    preferred_pace TEXT NOT NULL DEFAULT 'normal',
    learning_style TEXT NOT NULL DEFAULT 'balanced',
    optimal_session_length INTEGER NOT NULL DEFAULT 15,
    daily_goal INTEGER NOT NULL DEFAULT 20,
    weekly_streak INTEGER NOT NULL DEFAULT 0,
    longest_weekly_streak INTEGER NOT NULL DEFAULT 0,
    last_active_date TEXT NOT NULL DEFAULT '',
    current_difficulty REAL NOT NULL DEFAULT 0.5,
    difficulty_history TEXT NOT NULL DEFAULT '[]',
    last_updated REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS item_stats (
    learner_id TEXT NOT NULL,
    item TEXT NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0,
    correct INTEGER NOT NULL DEFAULT 0,
    avg_response_time REAL NOT NULL DEFAULT 0,
    last_seen REAL NOT NULL DEFAULT 0,
    confused_with TEXT NOT NULL DEFAULT '{}',
    streak INTEGER NOT NULL DEFAULT 0,
    best_streak INTEGER NOT NULL DEFAULT 0,
    easiness_factor REAL NOT NULL DEFAULT 2.5,
    interval INTEGER NOT NULL DEFAULT 1,
    repetition INTEGER NOT NULL DEFAULT 0,
    next_review REAL NOT NULL DEFAULT 0,
    recent_results TEXT NOT NULL DEFAULT '[]',
    response_times TEXT NOT NULL DEFAULT '[]',
    difficulty REAL NOT NULL DEFAULT 0.5,
    discrimination REAL NOT NULL DEFAULT 1.0,
    session_attempts INTEGER NOT NULL DEFAULT 0,
    session_correct INTEGER NOT NULL DEFAULT 0,
    first_seen REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (learner_id, item)
);

CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    learner_id TEXT NOT NULL,
    session_id TEXT,
    item TEXT NOT NULL,
    spoken TEXT NOT NULL,
    correct INTEGER NOT NULL,
    response_time REAL NOT NULL,
    at REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_learner ON attempts (learner_id, at DESC);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    learner_id TEXT NOT NULL,
    session_type TEXT NOT NULL DEFAULT 'practice',
    started_at REAL NOT NULL,
    ended_at REAL,
    total_attempts INTEGER NOT NULL DEFAULT 0,
    correct_attempts INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_learner ON sessions (learner_id, started_at DESC);

CREATE TABLE IF NOT EXISTS device_state (
    learner_id TEXT PRIMARY KEY,
    current_item TEXT NOT NULL,
    updated_at REAL NOT NULL
);
`

// SQLite is the Repository implementation backed by a local database
// file. Rings are truncated to the persisted window on every write.
type SQLite struct {
	db *sqlx.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer connection keeps concurrent learners queueing on the
	// pool instead of racing into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// fail tags a driver error with the generic storage-unavailable fault.
func fail(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// ============================================================================
// Row types
// ============================================================================

type progressRow struct {
	LearnerID            string  `db:"learner_id"`
	Level                string  `db:"level"`
	SessionCount         int     `db:"session_count"`
	TotalAttempts        int     `db:"total_attempts"`
	TotalCorrect         int     `db:"total_correct"`
	TotalTimeSpent       float64 `db:"total_time_spent"`
	Achievements         string  `db:"achievements"`
	PreferredPace        string  `db:"preferred_pace"`
	LearningStyle        string  `db:"learning_style"`
	OptimalSessionLength int     `db:"optimal_session_length"`
	DailyGoal            int     `db:"daily_goal"`
	WeeklyStreak         int     `db:"weekly_streak"`
	LongestWeeklyStreak  int     `db:"longest_weekly_streak"`
	LastActiveDate       string  `db:"last_active_date"`
	CurrentDifficulty    float64 `db:"current_difficulty"`
	DifficultyHistory    string  `db:"difficulty_history"`
	LastUpdated          float64 `db:"last_updated"`
}

type itemRow struct {
	LearnerID       string  `db:"learner_id"`
	Item            string  `db:"item"`
	Attempts        int     `db:"attempts"`
	Correct         int     `db:"correct"`
	AvgResponseTime float64 `db:"avg_response_time"`
	LastSeen        float64 `db:"last_seen"`
	ConfusedWith    string  `db:"confused_with"`
	Streak          int     `db:"streak"`
	BestStreak      int     `db:"best_streak"`
	EasinessFactor  float64 `db:"easiness_factor"`
	Interval        int     `db:"interval"`
	Repetition      int     `db:"repetition"`
	NextReview      float64 `db:"next_review"`
	RecentResults   string  `db:"recent_results"`
	ResponseTimes   string  `db:"response_times"`
	Difficulty      float64 `db:"difficulty"`
	Discrimination  float64 `db:"discrimination"`
	SessionAttempts int     `db:"session_attempts"`
	SessionCorrect  int     `db:"session_correct"`
	FirstSeen       float64 `db:"first_seen"`
}

// ============================================================================
// Learner state
// ============================================================================

func (s *SQLite) GetState(ctx context.Context, learnerID string) (*learner.State, error) {
	var row progressRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM learner_progress WHERE learner_id = ?", learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO learner_progress (learner_id, last_updated) VALUES (?, ?)",
			learnerID, now(),
		); err != nil {
			return nil, fail("create learner progress", err)
		}
		return learner.NewState(learnerID), nil
	}
	if err != nil {
		return nil, fail("load learner progress", err)
	}

	st := learner.NewState(learnerID)
	st.Level = row.Level
	st.SessionCount = row.SessionCount
	st.TotalTime = row.TotalTimeSpent
	st.PreferredPace = row.PreferredPace
	st.LearningStyle = row.LearningStyle
	st.OptimalSessionLength = row.OptimalSessionLength
	st.DailyGoal = row.DailyGoal
	st.WeeklyStreak = row.WeeklyStreak
	st.LongestWeeklyStreak = row.LongestWeeklyStreak
	st.LastActiveDate = row.LastActiveDate
	st.CurrentDifficulty = row.CurrentDifficulty
	json.Unmarshal([]byte(row.Achievements), &st.Achievements)
	json.Unmarshal([]byte(row.DifficultyHistory), &st.DifficultyHistory)

	var items []itemRow
	if err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM item_stats WHERE learner_id = ?", learnerID); err != nil {
		return nil, fail("load item stats", err)
	}

	for _, ir := range items {
		stat := &learner.ItemStats{
			Item:            ir.Item,
			Attempts:        ir.Attempts,
			Correct:         ir.Correct,
			AvgResponseTime: ir.AvgResponseTime,
			LastSeen:        ir.LastSeen,
			ConfusedWith:    map[string]int{},
			Streak:          ir.Streak,
			BestStreak:      ir.BestStreak,
			EasinessFactor:  ir.EasinessFactor,
			Interval:        ir.Interval,
			Repetition:      ir.Repetition,
			NextReview:      ir.NextReview,
			Difficulty:      ir.Difficulty,
			Discrimination:  ir.Discrimination,
			SessionAttempts: ir.SessionAttempts,
			SessionCorrect:  ir.SessionCorrect,
			FirstSeen:       ir.FirstSeen,
		}
		json.Unmarshal([]byte(ir.ConfusedWith), &stat.ConfusedWith)
		json.Unmarshal([]byte(ir.RecentResults), &stat.RecentResults)
		json.Unmarshal([]byte(ir.ResponseTimes), &stat.ResponseTimes)
		st.Items[ir.Item] = stat
	}

	return st, nil
}

func (s *SQLite) SaveState(ctx context.Context, st *learner.State) error {
	achievements, _ := json.Marshal(st.Achievements)
	history, _ := json.Marshal(tailFloats(st.DifficultyHistory, 100))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learner_progress (
			learner_id, level, session_count, total_time_spent, achievements,
			preferred_pace, learning_style, optimal_session_length, daily_goal,
			weekly_streak, longest_weekly_streak, last_active_date,
			current_difficulty, difficulty_history, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			level = excluded.level,
			session_count = excluded.session_count,
			total_time_spent = excluded.total_time_spent,
			achievements = excluded.achievements,
			preferred_pace = excluded.preferred_pace,
			learning_style = excluded.learning_style,
			optimal_session_length = excluded.optimal_session_length,
			daily_goal = excluded.daily_goal,
			weekly_streak = excluded.weekly_streak,
			longest_weekly_streak = excluded.longest_weekly_streak,
			last_active_date = excluded.last_active_date,
			current_difficulty = excluded.current_difficulty,
			difficulty_history = excluded.difficulty_history,
			last_updated = excluded.last_updated`,
		st.LearnerID, st.Level, st.SessionCount, st.TotalTime, string(achievements),
		st.PreferredPace, st.LearningStyle, st.OptimalSessionLength, st.DailyGoal,
		st.WeeklyStreak, st.LongestWeeklyStreak, st.LastActiveDate,
		st.CurrentDifficulty, string(history), now(),
	)
	if err != nil {
		return fail("save learner progress", err)
	}

	// Each item row is an independent upsert; there is no transaction
	// spanning the aggregate row and the item rows.
	for _, stat := range st.Items {
		if err := s.saveItemStat(ctx, st.LearnerID, stat); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) saveItemStat(ctx context.Context, learnerID string, stat *learner.ItemStats) error {
	confused, _ := json.Marshal(stat.ConfusedWith)
	results, _ := json.Marshal(tailBools(stat.RecentResults, learner.PersistWindow))
	times, _ := json.Marshal(tailFloats(stat.ResponseTimes, learner.PersistWindow))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_stats (
			learner_id, item, attempts, correct, avg_response_time, last_seen,
			confused_with, streak, best_streak, easiness_factor, interval,
			repetition, next_review, recent_results, response_times,
			difficulty, discrimination, session_attempts, session_correct, first_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, item) DO UPDATE SET
			attempts = excluded.attempts,
			correct = excluded.correct,
			avg_response_time = excluded.avg_response_time,
			last_seen = excluded.last_seen,
			confused_with = excluded.confused_with,
			streak = excluded.streak,
			best_streak = excluded.best_streak,
			easiness_factor = excluded.easiness_factor,
			interval = excluded.interval,
			repetition = excluded.repetition,
			next_review = excluded.next_review,
			recent_results = excluded.recent_results,
			response_times = excluded.response_times,
			difficulty = excluded.difficulty,
			discrimination = excluded.discrimination,
			session_attempts = excluded.session_attempts,
			session_correct = excluded.session_correct,
			first_seen = excluded.first_seen`,
		learnerID, stat.Item, stat.Attempts, stat.Correct, stat.AvgResponseTime, stat.LastSeen,
		string(confused), stat.Streak, stat.BestStreak, stat.EasinessFactor, stat.Interval,
		stat.Repetition, stat.NextReview, string(results), string(times),
		stat.Difficulty, stat.Discrimination, stat.SessionAttempts, stat.SessionCorrect, stat.FirstSeen,
	)
	if err != nil {
		return fail("save item stat", err)
	}
	return nil
}

// ============================================================================
// Attempts and progress counters
// ============================================================================

func (s *SQLite) RecordAttemptEvent(ctx context.Context, ev AttemptEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At == 0 {
		ev.At = now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, learner_id, session_id, item, spoken, correct, response_time, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.LearnerID, ev.SessionID, ev.Item, ev.Spoken, ev.Correct, ev.ResponseTime, ev.At,
	)
	if err != nil {
		return "", fail("record attempt", err)
	}
	return ev.ID, nil
}

func (s *SQLite) IncrementProgressCounters(ctx context.Context, learnerID string, attempts, correct int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE learner_progress
		SET total_attempts = total_attempts + ?,
		    total_correct = total_correct + ?,
		    last_updated = ?
		WHERE learner_id = ?`,
		attempts, correct, now(), learnerID,
	)
	if err != nil {
		return fail("increment progress counters", err)
	}
	return nil
}

func (s *SQLite) IncrementSessionCount(ctx context.Context, learnerID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE learner_progress
		SET session_count = session_count + 1, last_updated = ?
		WHERE learner_id = ?`,
		now(), learnerID,
	)
	if err != nil {
		return fail("increment session count", err)
	}
	return nil
}

func (s *SQLite) AddLearningTime(ctx context.Context, learnerID string, seconds float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE learner_progress
		SET total_time_spent = total_time_spent + ?, last_updated = ?
		WHERE learner_id = ?`,
		seconds, now(), learnerID,
	)
	if err != nil {
		return fail("add learning time", err)
	}
	return nil
}

func (s *SQLite) RecentAttempts(ctx context.Context, learnerID string, limit int) ([]AttemptEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	var events []AttemptEvent
	err := s.db.SelectContext(ctx, &events, `
		SELECT * FROM attempts WHERE learner_id = ? ORDER BY at DESC LIMIT ?`,
		learnerID, limit,
	)
	if err != nil {
		return nil, fail("load recent attempts", err)
	}
	return events, nil
}

// ============================================================================
// Sessions
// ============================================================================

func (s *SQLite) StartSession(ctx context.Context, learnerID, sessionType string) (string, error) {
	if sessionType == "" {
		sessionType = "practice"
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, learner_id, session_type, started_at)
		VALUES (?, ?, ?, ?)`,
		id, learnerID, sessionType, now(),
	)
	if err != nil {
		return "", fail("start session", err)
	}
	return id, nil
}

func (s *SQLite) EndSession(ctx context.Context, sessionID string, attempts, correct int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET ended_at = ?, total_attempts = ?, correct_attempts = ?
		WHERE id = ?`,
		now(), attempts, correct, sessionID,
	)
	if err != nil {
		return fail("end session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fail("end session", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) RecentSessions(ctx context.Context, learnerID string, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	var sessions []SessionSummary
	err := s.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions WHERE learner_id = ? ORDER BY started_at DESC LIMIT ?`,
		learnerID, limit,
	)
	if err != nil {
		return nil, fail("load recent sessions", err)
	}
	return sessions, nil
}

// ============================================================================
// Device state
// ============================================================================

func (s *SQLite) SetCurrentItem(ctx context.Context, learnerID, item string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_state (learner_id, current_item, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			current_item = excluded.current_item,
			updated_at = excluded.updated_at`,
		learnerID, item, now(),
	)
	if err != nil {
		return fail("set current item", err)
	}
	return nil
}

func (s *SQLite) CurrentItem(ctx context.Context, learnerID string) (string, error) {
	var item string
	err := s.db.GetContext(ctx, &item,
		"SELECT current_item FROM device_state WHERE learner_id = ?", learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fail("load current item", err)
	}
	return item, nil
}

// ============================================================================
// Reset
// ============================================================================

func (s *SQLite) ResetProgress(ctx context.Context, learnerID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fail("reset progress", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM item_stats WHERE learner_id = ?", learnerID); err != nil {
		return fail("reset item stats", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE learner_progress
		SET level = 'letters_basic', session_count = 0, total_attempts = 0,
		    total_correct = 0, total_time_spent = 0, achievements = '[]',
		    current_difficulty = 0.5, difficulty_history = '[]', last_updated = ?
		WHERE learner_id = ?`,
		now(), learnerID); err != nil {
		return fail("reset learner progress", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM device_state WHERE learner_id = ?", learnerID); err != nil {
		return fail("reset device state", err)
	}

	if err := tx.Commit(); err != nil {
		return fail("reset progress", err)
	}
	return nil
}

func tailFloats(xs []float64, n int) []float64 {
	if xs == nil {
		return []float64{}
	}
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}

func tailBools(xs []bool, n int) []bool {
	if xs == nil {
		return []bool{}
	}
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}
