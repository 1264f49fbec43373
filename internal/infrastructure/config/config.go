package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/braillepath/backend/internal/domain/mastery"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	DBPath          string

	// Learning engine tuning
	Mastery mastery.Config

	// Tutorial sessions idle longer than this are swept.
	TutorialTTL time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout: mustGetDuration("SHUTDOWN_TIMEOUT"),
		DBPath:          getenvDefault("DB_PATH", "braillepath.db"),
		Mastery: mastery.Config{
			MaxResponseTime:    getenvFloat("MAX_RESPONSE_TIME", 6.0),
			High:               getenvFloat("MASTERY_HIGH", 0.85),
			Mid:                getenvFloat("MASTERY_MID", 0.6),
			MinAttemptsForTier: getenvInt("MIN_ATTEMPTS_FOR_MASTERY", 5),
		},
		TutorialTTL: getenvDurationDefault("TUTORIAL_SESSION_TTL", time.Hour),
	}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid number: %v", k, v, err)
	}
	return f
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid integer: %v", k, v, err)
	}
	return n
}

func getenvDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}
