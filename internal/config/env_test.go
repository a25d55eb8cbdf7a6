package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("MOTIONLINE_FORMAT", " EDN ")
	t.Setenv("MOTIONLINE_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("MOTIONLINE_SYNC_DEBOUNCE", "750ms")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "edn" {
		t.Fatalf("format: got %q", cfg.Format)
	}
	if cfg.RedisURL != "redis://localhost:6379/2" {
		t.Fatalf("redis url: got %q", cfg.RedisURL)
	}
	if cfg.SyncDebounce != 750*time.Millisecond {
		t.Fatalf("debounce: got %v", cfg.SyncDebounce)
	}
}

func TestLoad_DotenvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MOTIONLINE_LOG_LEVEL=debug\nMOTIONLINE_TUI_GLYPHS=ascii\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOTIONLINE_LOG_LEVEL", "error")
	// Registered so t.Setenv restores the variable that godotenv sets.
	t.Setenv("MOTIONLINE_TUI_GLYPHS", "")
	os.Unsetenv("MOTIONLINE_TUI_GLYPHS")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("log level: got %q", cfg.LogLevel)
	}
	if cfg.Glyphs != "ascii" {
		t.Fatalf("glyphs: got %q", cfg.Glyphs)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("MOTIONLINE_SYNC_DEBOUNCE", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil || !strings.HasPrefix(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestWithDefaultsAndValidate(t *testing.T) {
	cfg := Config{LogLevel: "info"}.WithDefaults()
	if cfg.Format != DefaultFormat || cfg.LogLevel != "info" || cfg.SyncDebounce != DefaultSyncDebounce {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (Config{Format: "xml"}).Validate(); err == nil {
		t.Fatalf("expected error for xml format")
	}
}
