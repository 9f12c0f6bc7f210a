package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pable/go-match-stats/internal/logging"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config stores runtime configuration for the CLI and the HTTP server.
type Config struct {
	Backend         string
	DBPath          string
	JSONPath        string
	HTTPAddr        string
	LogLevel        logging.Level
	RecentLimit     int
	AnthropicAPIKey string
}

// DataPath returns the file the selected backend stores its data in.
func (c Config) DataPath() string {
	if c.Backend == BackendJSON {
		return c.JSONPath
	}
	return c.DBPath
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	dataDir := filepath.Join(userHome(), ".matchstats")

	backend := strings.ToLower(strings.TrimSpace(getEnv("MATCHSTATS_BACKEND", BackendSQLite)))
	if backend != BackendSQLite && backend != BackendJSON {
		return Config{}, fmt.Errorf("MATCHSTATS_BACKEND must be %q or %q, got %q", BackendSQLite, BackendJSON, backend)
	}

	logLevel, err := logging.ParseLevel(getEnv("MATCHSTATS_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCHSTATS_LOG_LEVEL: %w", err)
	}

	recentLimit, err := getEnvAsInt("MATCHSTATS_RECENT_LIMIT", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCHSTATS_RECENT_LIMIT: %w", err)
	}
	if recentLimit <= 0 {
		return Config{}, fmt.Errorf("MATCHSTATS_RECENT_LIMIT must be > 0")
	}

	httpAddr := strings.TrimSpace(getEnv("MATCHSTATS_HTTP_ADDR", ":3001"))
	if httpAddr == "" {
		return Config{}, fmt.Errorf("MATCHSTATS_HTTP_ADDR must not be empty")
	}

	return Config{
		Backend:         backend,
		DBPath:          getEnv("MATCHSTATS_DB", filepath.Join(dataDir, "matchstats.db")),
		JSONPath:        getEnv("MATCHSTATS_JSON_PATH", filepath.Join(dataDir, "data.json")),
		HTTPAddr:        httpAddr,
		LogLevel:        logLevel,
		RecentLimit:     recentLimit,
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
