package tutorial_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/braillepath/backend/internal/tutorial"
)

var testAlphabet = []string{"a", "b", "c", "d"}

func newTestStore(t *testing.T, ttl time.Duration) *tutorial.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tutorial.NewStore(testAlphabet, ttl, logger)
}

func TestStart_BeginsAtFirstLetter(t *testing.T) {
	s := newTestStore(t, time.Hour)

	sess := s.Start("learner-1")

	if sess.ID == "" {
		t.Error("expected a session id")
	}
	if sess.Index != 0 {
		t.Errorf("expected index 0, got %d", sess.Index)
	}
	if got := s.Letter(*sess); got != "a" {
		t.Errorf("expected first letter, got %q", got)
	}
	if s.Total() != len(testAlphabet) {
		t.Errorf("expected total %d, got %d", len(testAlphabet), s.Total())
	}
}

func TestGet_UnknownSession(t *testing.T) {
	s := newTestStore(t, time.Hour)

	_, err := s.Get("nope")
	if !errors.Is(err, tutorial.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestNext_ClampsAtLastLetter(t *testing.T) {
	s := newTestStore(t, time.Hour)
	sess := s.Start("learner-1")

	var got tutorial.Session
	var err error
	for i := 0; i < len(testAlphabet)+3; i++ {
		got, err = s.Next(sess.ID)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}

	if got.Index != len(testAlphabet)-1 {
		t.Errorf("expected cursor clamped at %d, got %d", len(testAlphabet)-1, got.Index)
	}
	if s.Letter(got) != "d" {
		t.Errorf("expected last letter, got %q", s.Letter(got))
	}
}

func TestPrev_ClampsAtFirstLetter(t *testing.T) {
	s := newTestStore(t, time.Hour)
	sess := s.Start("learner-1")

	got, err := s.Prev(sess.ID)
	if err != nil {
		t.Fatalf("prev: %v", err)
	}
	if got.Index != 0 {
		t.Errorf("expected cursor clamped at 0, got %d", got.Index)
	}
}

func TestJump(t *testing.T) {
	s := newTestStore(t, time.Hour)
	sess := s.Start("learner-1")

	got, err := s.Jump(sess.ID, 2)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	if got.Index != 2 || s.Letter(got) != "c" {
		t.Errorf("expected cursor at c, got index %d", got.Index)
	}

	if _, err := s.Jump(sess.ID, -1); err == nil {
		t.Error("expected negative index rejected")
	}
	if _, err := s.Jump(sess.ID, len(testAlphabet)); err == nil {
		t.Error("expected out-of-range index rejected")
	}
	if _, err := s.Jump("nope", 1); !errors.Is(err, tutorial.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestEnd_RemovesSession(t *testing.T) {
	s := newTestStore(t, time.Hour)
	sess := s.Start("learner-1")

	if err := s.End(sess.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := s.Get(sess.ID); !errors.Is(err, tutorial.ErrSessionNotFound) {
		t.Errorf("expected session gone, got %v", err)
	}
	if err := s.End(sess.ID); !errors.Is(err, tutorial.ErrSessionNotFound) {
		t.Errorf("expected double end rejected, got %v", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	s := newTestStore(t, time.Hour)
	one := s.Start("learner-1")
	two := s.Start("learner-2")

	if _, err := s.Next(one.ID); err != nil {
		t.Fatalf("next: %v", err)
	}

	got, err := s.Get(two.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Index != 0 {
		t.Errorf("expected the second session untouched, got index %d", got.Index)
	}
}
