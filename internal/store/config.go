package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig is ~/.motionline/config.yaml.
type GlobalConfig struct {
	// CurrentWorkspace is the .motionline dir used when neither --dir nor MOTIONLINE_DIR is set.
	CurrentWorkspace string `yaml:"currentWorkspace,omitempty"`

	TUI    *TUIConfig    `yaml:"tui,omitempty"`
	Remote *RemoteConfig `yaml:"remote,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `yaml:"glyphs,omitempty"`
	// FrameWidth is the number of terminal cells per frame column.
	FrameWidth int `yaml:"frameWidth,omitempty"`
}

type RemoteConfig struct {
	RedisURL string `yaml:"redisUrl,omitempty"`
	// Debounce is a Go duration string, e.g. "2s".
	Debounce string `yaml:"debounce,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.motionline).
	if v := strings.TrimSpace(os.Getenv("MOTIONLINE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// Unique temp name + rename so the CLI and a running TUI never see a torn file.
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}
