// Seeds a database by playing synthetic learners against the engine.
//
//	go run ./cmd/simulate -db demo.db -learners 3 -attempts 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/braillepath/backend/internal/domain/mastery"
	"github.com/braillepath/backend/internal/engine"
	"github.com/braillepath/backend/internal/simulation"
	"github.com/braillepath/backend/internal/store"
)

func main() {
	dbPath := flag.String("db", "simulation.db", "sqlite database path")
	learnerCount := flag.Int("learners", 3, "number of synthetic learners")
	attempts := flag.Int("attempts", 40, "attempts per learner")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	db, err := store.NewSQLite(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	eng := engine.New(db, mastery.DefaultConfig(), logger)

	sim := simulation.New(eng, logger, *seed)
	defer sim.Close()

	learners := make([]*simulation.Learner, 0, *learnerCount)
	for i := 0; i < *learnerCount; i++ {
		learners = append(learners, &simulation.Learner{
			ID:    fmt.Sprintf("sim-learner-%d", i+1),
			Skill: 0.5 + 0.1*float64(i),
		})
	}

	correct, total, err := sim.Run(context.Background(), learners, *attempts)
	if err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("simulated %d attempts, %d correct (%.0f%%)\n",
		total, correct, 100*float64(correct)/float64(max(total, 1)))
}
