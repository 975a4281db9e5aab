package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
	// HostInactivityTimeout is how long a session survives without a bound
	// host connection before it is torn down.
	HostInactivityTimeout time.Duration
	// ScoreDecayFactor stretches the scoring window: a correct answer earns
	// points until timeLimit * factor seconds have elapsed.
	ScoreDecayFactor float64
	// FirstCorrectBonus is a flat award for the first correct answer on each
	// question. Zero disables the bonus.
	FirstCorrectBonus int
	// RevealAnswerEnabled inserts a REVEAL_ANSWER phase between QUESTION and
	// LEADERBOARD showing the correct option and a per-option tally.
	RevealAnswerEnabled bool
	// CommandQueueSize bounds the game engine's inbound command channel.
	CommandQueueSize int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "pretty"),
		AllowedOrigins:        parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		HostInactivityTimeout: getEnvDuration("HOST_INACTIVITY_TIMEOUT", 5*time.Minute),
		ScoreDecayFactor:      getEnvFloat("SCORE_DECAY_FACTOR", 2.0),
		FirstCorrectBonus:     getEnvInt("FIRST_CORRECT_BONUS", 0),
		RevealAnswerEnabled:   getEnvBool("REVEAL_ANSWER_ENABLED", false),
		CommandQueueSize:      getEnvInt("COMMAND_QUEUE_SIZE", 256),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 1.0 {
		// A factor at or below 1 would zero out instant answers.
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
