package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_SaveLoadYAML(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("MOTIONLINE_CONFIG_DIR", cfgDir)

	empty, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig(missing): %v", err)
	}
	if empty.CurrentWorkspace != "" || empty.TUI != nil {
		t.Fatalf("expected zero config, got %+v", empty)
	}

	want := &GlobalConfig{
		CurrentWorkspace: "/tmp/walk/.motionline",
		TUI:              &TUIConfig{Glyphs: "ascii", FrameWidth: 2},
		Remote:           &RemoteConfig{RedisURL: "redis://localhost:6379/0", Debounce: "500ms"},
	}
	if err := SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(cfgDir, "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "redisUrl: redis://localhost:6379/0") {
		t.Fatalf("expected yaml keys, got:\n%s", b)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.CurrentWorkspace != want.CurrentWorkspace || got.TUI.Glyphs != "ascii" || got.TUI.FrameWidth != 2 || got.Remote.Debounce != "500ms" {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestConfig_RejectsBrokenYAML(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("MOTIONLINE_CONFIG_DIR", cfgDir)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("tui: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}
