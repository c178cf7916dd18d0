package config

import (
	"fmt"
	"strings"
)

// Normalize expands and absolutizes path fields and fills empty values
// with defaults. Called by Load; exported so the CLI can re-normalize
// after applying flag overrides.
func (c *Config) Normalize() error {
	var err error
	if c.Paths.WIPRoot, err = expandPath(valueOr(c.Paths.WIPRoot, defaultWIPRoot)); err != nil {
		return fmt.Errorf("paths.wip_root: %w", err)
	}
	if c.Paths.OutRoot, err = expandPath(valueOr(c.Paths.OutRoot, defaultOutRoot)); err != nil {
		return fmt.Errorf("paths.out_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}

	c.Drive.Device = valueOr(c.Drive.Device, defaultDevice)

	if c.MakeMKV.SettingsPath, err = expandPath(valueOr(c.MakeMKV.SettingsPath, defaultMakeMKVSettingsPath)); err != nil {
		return fmt.Errorf("makemkv.settings_path: %w", err)
	}
	c.MakeMKV.KeyURL = valueOr(c.MakeMKV.KeyURL, defaultMakeMKVKeyURL)

	if len(c.Transcode.FFmpegArgs) == 0 {
		c.Transcode.FFmpegArgs = DefaultFFmpegArgs()
	}

	c.Logging.Level = valueOr(c.Logging.Level, defaultLogLevel)
	return nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
