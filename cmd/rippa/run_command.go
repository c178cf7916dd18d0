package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"rippa/internal/config"
	"rippa/internal/daemon"
	"rippa/internal/disc"
	"rippa/internal/logging"
	"rippa/internal/mounts"
	"rippa/internal/process"
	"rippa/internal/ripping"
	"rippa/internal/transcoding"
)

type runFlags struct {
	drive        string
	wipRoot      string
	outRoot      string
	skipEject    bool
	debug        bool
	updateKey    bool
	settingsPath string
}

func newRunCommand(configFlag *string) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the rip and transcode loops until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := applyRunFlags(cfg, cmd, flags); err != nil {
				return err
			}
			return runDaemonProcess(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.drive, "drive", "d", "", "Optical drive device path")
	cmd.Flags().StringVar(&flags.wipRoot, "wip-root", "", "Work-in-progress directory root")
	cmd.Flags().StringVar(&flags.outRoot, "out-root", "", "Output directory root")
	cmd.Flags().BoolVar(&flags.skipEject, "skip-eject", false, "Keep the tray closed after a rip")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&flags.updateKey, "makemkv-update-key", false, "Refresh the MakeMKV beta key before DVD rips")
	cmd.Flags().StringVar(&flags.settingsPath, "makemkv-settings-path", "", "Path to the MakeMKV settings file")

	return cmd
}

// applyRunFlags layers CLI overrides on top of the loaded config, then
// re-normalizes so flag paths get the same expansion as file values.
func applyRunFlags(cfg *config.Config, cmd *cobra.Command, flags runFlags) error {
	if flags.drive != "" {
		cfg.Drive.Device = flags.drive
	}
	if flags.wipRoot != "" {
		cfg.Paths.WIPRoot = flags.wipRoot
	}
	if flags.outRoot != "" {
		cfg.Paths.OutRoot = flags.outRoot
	}
	if cmd.Flags().Changed("skip-eject") {
		cfg.Drive.SkipEject = flags.skipEject
	}
	if cmd.Flags().Changed("makemkv-update-key") {
		cfg.MakeMKV.UpdateKey = flags.updateKey
	}
	if flags.settingsPath != "" {
		cfg.MakeMKV.SettingsPath = flags.settingsPath
	}
	if flags.debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func runDaemonProcess(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runner := process.NewRunner(logger)
	escalator := process.NewEscalator(runner, logger)
	registry := mounts.NewRegistry(escalator, logger)
	classifier := disc.NewClassifier(runner, registry, logger, cfg.Drive.Device, cfg.Paths.WIPRoot)

	var keys ripping.KeyRefresher
	if cfg.MakeMKV.UpdateKey {
		keys = ripping.NewBetaKeyRefresher(cfg.MakeMKV.KeyURL, cfg.MakeMKV.SettingsPath, cfg.KeyTimeout(), logger)
	}

	orchestrator := ripping.NewOrchestrator(cfg, classifier, runner, escalator, keys, logger)
	worker := transcoding.NewWorker(cfg, runner, logger)

	d, err := daemon.New(cfg, orchestrator, worker, registry, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	return d.Run(ctx)
}

// buildLogger tees logs to stdout and, when a log directory is configured,
// to rippa.log inside it. An unset format follows the terminal: console
// for a TTY, JSON otherwise.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	format := strings.TrimSpace(cfg.Logging.Format)
	if format == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			format = "console"
		} else {
			format = "json"
		}
	}

	outputs := []string{"stdout"}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "rippa.log"))
	}

	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      format,
		OutputPaths: outputs,
	})
}
