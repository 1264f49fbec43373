// simulation/simulation.go
//
// Package simulation drives the learning engine with synthetic learners.
// Useful for seeding a demo database and for eyeballing how the adaptive
// pieces behave over a long run without a physical device.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/braillepath/backend/internal/engine"
	"github.com/braillepath/backend/internal/worker"
)

// attemptReport is the pool job output for one simulated attempt.
type attemptReport struct {
	LearnerID string
	Target    string
	Correct   bool
	Err       error
}

// Learner is one synthetic user. Skill is the probability of answering
// correctly on first exposure; it creeps upward with practice.
type Learner struct {
	ID    string
	Skill float64

	exposure map[string]int
}

// Simulator runs scripted learners against the engine concurrently.
type Simulator struct {
	engine *engine.Service
	logger *slog.Logger
	rng    *rand.Rand
	pool   *worker.Pool[attemptReport]

	mu sync.Mutex // guards rng and learner exposure maps
}

func New(eng *engine.Service, logger *slog.Logger, seed int64) *Simulator {
	return &Simulator{
		engine: eng,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
		pool:   worker.NewPool[attemptReport](3, 10),
	}
}

// Run plays attemptsPerLearner rounds for each learner. Every round asks
// the engine what to present, fakes a response, and submits the grading
// to the worker pool. Returns the number of correct attempts observed.
func (s *Simulator) Run(ctx context.Context, learners []*Learner, attemptsPerLearner int) (correct, total int, err error) {
	for _, l := range learners {
		if l.exposure == nil {
			l.exposure = make(map[string]int)
		}
	}

	for round := 0; round < attemptsPerLearner; round++ {
		submitted := 0
		for _, l := range learners {
			step, stepErr := s.engine.GetLearningStep(ctx, l.ID, nil)
			if stepErr != nil {
				return correct, total, fmt.Errorf("learning step for %s: %w", l.ID, stepErr)
			}

			target := step.NextItem
			spoken, responseTime := s.respond(l, target)

			lid := l.ID
			s.pool.Submit(fmt.Sprintf("%s-%d", lid, round), func() attemptReport {
				outcome, attErr := s.engine.ProcessAttempt(ctx, lid, target, spoken, responseTime, nil)
				if attErr != nil {
					return attemptReport{LearnerID: lid, Target: target, Err: attErr}
				}
				return attemptReport{
					LearnerID: lid,
					Target:    target,
					Correct:   outcome.Result.Success,
				}
			})
			submitted++
		}

		for i := 0; i < submitted; i++ {
			result := <-s.pool.Results()
			if result.Output.Err != nil {
				s.logger.Error("simulated attempt failed",
					"learner", result.Output.LearnerID, "error", result.Output.Err)
				continue
			}
			total++
			if result.Output.Correct {
				correct++
			}
		}
	}

	return correct, total, nil
}

// Close shuts the worker pool down. The simulator must not be reused.
func (s *Simulator) Close() {
	s.pool.Close()
}

// respond fakes one answer. Success probability starts at the learner's
// base skill and gains 5 points per prior exposure to the letter, capped
// at 0.98. Wrong answers pick a neighbouring letter to exercise the
// confusion tracking.
func (s *Simulator) respond(l *Learner, target string) (spoken string, responseTime float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := l.exposure[target]
	l.exposure[target]++

	p := l.Skill + 0.05*float64(seen)
	if p > 0.98 {
		p = 0.98
	}

	responseTime = 1.0 + s.rng.Float64()*4.0
	if s.rng.Float64() < p {
		return target, responseTime
	}

	// Miss: answer with an adjacent letter, wrapping at the ends.
	r := []rune(target)
	if len(r) != 1 {
		return "?", responseTime
	}
	c := r[0] + 1
	if c > 'z' {
		c = 'a'
	}
	return string(c), responseTime + 1.5
}
