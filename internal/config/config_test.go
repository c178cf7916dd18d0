package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := cfg.RipPollInterval(); got != 5*time.Second {
		t.Fatalf("rip poll interval = %v", got)
	}
	if got := cfg.StableWindow(); got != 10*time.Second {
		t.Fatalf("stable window = %v", got)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rippa.toml")
	contents := `
[paths]
wip_root = "` + filepath.Join(dir, "work") + `"
out_root = "` + filepath.Join(dir, "done") + `"

[drive]
device = "/dev/sr1"
skip_eject = true

[transcode]
ffmpeg_args = ["-c:v", "libx265"]
stable_window = 3

[workflow]
rip_poll_interval = 2
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Drive.Device != "/dev/sr1" || !cfg.Drive.SkipEject {
		t.Fatalf("drive section not applied: %+v", cfg.Drive)
	}
	if len(cfg.Transcode.FFmpegArgs) != 2 || cfg.Transcode.FFmpegArgs[1] != "libx265" {
		t.Fatalf("ffmpeg args not applied: %v", cfg.Transcode.FFmpegArgs)
	}
	if cfg.RipPollInterval() != 2*time.Second {
		t.Fatalf("rip poll interval = %v", cfg.RipPollInterval())
	}
	if cfg.TranscodePollInterval() != 5*time.Second {
		t.Fatalf("unset interval should default: %v", cfg.TranscodePollInterval())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("exists should be false for a missing file")
	}
	if cfg.Drive.Device != "/dev/sr0" {
		t.Fatalf("default device = %q", cfg.Drive.Device)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"same roots", func(c *Config) { c.Paths.OutRoot = c.Paths.WIPRoot }, "must differ"},
		{"bad device", func(c *Config) { c.Drive.Device = "sr0" }, "/dev"},
		{"negative interval", func(c *Config) { c.Workflow.RipPollInterval = -1 }, "negative"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "console or json"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.Normalize(); err != nil {
				t.Fatal(err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeExpandsHome(t *testing.T) {
	cfg := Default()
	cfg.Paths.LogDir = "~/logs"
	if err := cfg.Normalize(); err != nil {
		t.Fatal(err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if cfg.Paths.LogDir != filepath.Join(home, "logs") {
		t.Fatalf("log dir = %q", cfg.Paths.LogDir)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(Sample()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}
