package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WIPRoot string `toml:"wip_root"`
	OutRoot string `toml:"out_root"`
	LogDir  string `toml:"log_dir"`
}

// Drive contains optical drive settings.
type Drive struct {
	Device    string `toml:"device"`
	SkipEject bool   `toml:"skip_eject"`
}

// MakeMKV contains settings for makemkvcon and its beta-key refresh.
type MakeMKV struct {
	UpdateKey    bool   `toml:"update_key"`
	SettingsPath string `toml:"settings_path"`
	KeyURL       string `toml:"key_url"`
	KeyTimeout   int    `toml:"key_timeout"`
}

// Transcode contains ffmpeg invocation settings.
type Transcode struct {
	FFmpegArgs   []string `toml:"ffmpeg_args"`
	StableWindow int      `toml:"stable_window"`
}

// Workflow contains loop timing settings, in seconds.
type Workflow struct {
	RipPollInterval       int `toml:"rip_poll_interval"`
	TranscodePollInterval int `toml:"transcode_poll_interval"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for rippa.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Drive     Drive     `toml:"drive"`
	MakeMKV   MakeMKV   `toml:"makemkv"`
	Transcode Transcode `toml:"transcode"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rippa/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("rippa.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WIPRoot, c.Paths.OutRoot}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RipPollInterval returns the rip loop tick interval.
func (c *Config) RipPollInterval() time.Duration {
	return secondsOr(c.Workflow.RipPollInterval, defaultPollSeconds)
}

// TranscodePollInterval returns the transcode loop tick interval.
func (c *Config) TranscodePollInterval() time.Duration {
	return secondsOr(c.Workflow.TranscodePollInterval, defaultPollSeconds)
}

// StableWindow returns the file-stability sampling window.
func (c *Config) StableWindow() time.Duration {
	return secondsOr(c.Transcode.StableWindow, defaultStableWindowSeconds)
}

// KeyTimeout returns the timeout for the MakeMKV key fetch.
func (c *Config) KeyTimeout() time.Duration {
	return secondsOr(c.MakeMKV.KeyTimeout, defaultKeyTimeoutSeconds)
}

// Sample returns the embedded sample configuration file contents.
func Sample() string {
	return sampleConfig
}

func secondsOr(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
