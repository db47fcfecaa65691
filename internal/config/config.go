// Package config reads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Snapshot backends
const (
	SnapshotSQL   = "sql"
	SnapshotRedis = "redis"
)

// Config is the runtime configuration read from the environment and .env
type Config struct {
	DBDriver    string
	DatabaseURL string

	SnapshotBackend string // sql or redis
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Question generation
	OpenAIAPIKey      string // empty disables remote generation
	OpenAIAPIURL      string
	OpenAIModel       string
	GenerationTimeout time.Duration

	QuestionBankFile string // optional Excel/CSV merged into the built-in bank
	DefaultSubject   string

	LogLevel slog.Level
}

// Load reads the configuration. Values already in the environment win over
// the .env files, which are optional.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to read %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBDriver:          getenvDefault("DB_DRIVER", "sqlite3"),
		DatabaseURL:       getenvDefault("DATABASE_URL", "data/adaptedmind.db"),
		SnapshotBackend:   strings.ToLower(getenvDefault("SNAPSHOT_BACKEND", SnapshotSQL)),
		RedisAddr:         getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIURL:      os.Getenv("OPENAI_API_URL"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		QuestionBankFile:  os.Getenv("QUESTION_BANK_FILE"),
		DefaultSubject:    getenvDefault("DEFAULT_SUBJECT", "Programming Fundamentals"),
		GenerationTimeout: 20 * time.Second,
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if v := os.Getenv("GENERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("config: GENERATION_TIMEOUT=%q is not a valid duration", v)
		}
		cfg.GenerationTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("config: LOG_LEVEL=%q: %w", v, err)
		}
	}

	switch cfg.DBDriver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("config: DB_DRIVER=%q must be sqlite3 or postgres", cfg.DBDriver)
	}
	switch cfg.SnapshotBackend {
	case SnapshotSQL, SnapshotRedis:
	default:
		return nil, fmt.Errorf("config: SNAPSHOT_BACKEND=%q must be sql or redis", cfg.SnapshotBackend)
	}

	return cfg, nil
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getInt(k string, fallback int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", k, v)
	}
	return n, nil
}
