package config

import (
	"testing"

	"github.com/pable/go-match-stats/internal/logging"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MATCHSTATS_BACKEND", "")
	t.Setenv("MATCHSTATS_LOG_LEVEL", "")
	t.Setenv("MATCHSTATS_RECENT_LIMIT", "")
	t.Setenv("MATCHSTATS_HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("unexpected Backend: %q", cfg.Backend)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.RecentLimit != 10 {
		t.Fatalf("unexpected RecentLimit: %d", cfg.RecentLimit)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
	if cfg.DataPath() != cfg.DBPath {
		t.Fatalf("sqlite backend should store in DBPath")
	}
}

func TestLoad_BackendValidation(t *testing.T) {
	t.Setenv("MATCHSTATS_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestLoad_JSONBackend(t *testing.T) {
	t.Setenv("MATCHSTATS_BACKEND", "JSON")
	t.Setenv("MATCHSTATS_JSON_PATH", "/tmp/matchstats.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataPath() != "/tmp/matchstats.json" {
		t.Fatalf("unexpected DataPath: %q", cfg.DataPath())
	}
}

func TestLoad_RecentLimitMustBePositive(t *testing.T) {
	t.Setenv("MATCHSTATS_BACKEND", "")
	t.Setenv("MATCHSTATS_RECENT_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for MATCHSTATS_RECENT_LIMIT=0")
	}

	t.Setenv("MATCHSTATS_RECENT_LIMIT", "ten")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric MATCHSTATS_RECENT_LIMIT")
	}
}

func TestLoad_LogLevel(t *testing.T) {
	t.Setenv("MATCHSTATS_BACKEND", "")
	t.Setenv("MATCHSTATS_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}

	t.Setenv("MATCHSTATS_LOG_LEVEL", "chatty")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}
