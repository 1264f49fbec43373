package engine

import (
	"github.com/braillepath/backend/internal/domain/learner"
	"github.com/braillepath/backend/internal/domain/mastery"
)

// Mode is the pedagogical mode for the next step. The set is closed;
// pool selection matches it exhaustively.
type Mode string

const (
	ModeGuided         Mode = "guided"
	ModeRevision       Mode = "revision"
	ModeSpacedReview   Mode = "spaced_review"
	ModeReview         Mode = "review"
	ModeConfusionDrill Mode = "confusion_drill"
	ModeChallenge      Mode = "challenge"
)

// ChooseMode picks the mode for the next step. Rules are ordered;
// the first match wins.
func (s *Service) ChooseMode(st *learner.State) Mode {
	now := s.now()

	// The first sessions are always guided regardless of performance.
	if st.SessionCount < 3 {
		return ModeGuided
	}

	weakCount := 0
	for _, stat := range st.Items {
		if stat.Attempts >= s.cfg.MinAttemptsForTier && mastery.Score(s.cfg, stat) < s.cfg.Mid {
			weakCount++
		}
	}
	if weakCount >= 3 {
		return ModeRevision
	}

	for _, stat := range st.Items {
		if stat.DueForReview(now) && stat.Attempts >= s.cfg.MinAttemptsForTier {
			return ModeSpacedReview
		}
	}

	for _, stat := range st.Items {
		if stat.Attempts >= s.cfg.MinAttemptsForTier &&
			mastery.Score(s.cfg, stat) >= s.cfg.High &&
			stat.Stale(now, stalenessIntervals[mastery.LevelMastered]) {
			return ModeReview
		}
	}

	if len(s.ConfusionClusters(st)) > 0 {
		return ModeConfusionDrill
	}

	return ModeChallenge
}
