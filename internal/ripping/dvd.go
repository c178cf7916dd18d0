package ripping

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rippa/internal/disc"
	"rippa/internal/logging"
	"rippa/internal/services"
	"rippa/internal/staging"
)

// ripDVD extracts every title with makemkvcon into a rip-in-progress
// directory, then moves the result into the staged tree where the
// transcode loop picks it up.
func (o *Orchestrator) ripDVD(ctx context.Context, d *disc.Disc) (Outcome, error) {
	outDir := o.layout.DVDOutDir(d.Identity)
	stagedDir := o.layout.DVDStagedDir(d.Identity)
	ripDir := o.layout.DVDRipDir(d.Identity)

	switch {
	case pathExists(outDir):
		o.logger.Info("already ripped", logging.String("identity", d.Identity))
		return OutcomeSkipped, nil
	case pathExists(stagedDir):
		o.logger.Info("already staged for transcode", logging.String("identity", d.Identity))
		return OutcomeSkipped, nil
	case pathExists(ripDir):
		// Stale directories were cleared at startup, so this is a rip
		// already running in this process.
		o.logger.Info("rip already in progress", logging.String("identity", d.Identity))
		return OutcomeSkipped, nil
	}

	if o.keys != nil {
		if err := o.keys.Refresh(ctx); err != nil {
			o.logger.Warn("makemkv key refresh failed, ripping with existing key", logging.Error(err))
		}
	}

	o.logger.Info("ripping dvd",
		logging.String("identity", d.Identity),
		logging.String("title", disc.DisplayTitle(d.Label)),
	)

	if err := os.MkdirAll(ripDir, 0o755); err != nil {
		return OutcomeSkipped, fmt.Errorf("create rip directory: %w", err)
	}

	index, err := ParseDriveIndex(o.cfg.Drive.Device)
	if err != nil {
		return OutcomeSkipped, services.Wrap(services.ErrConfiguration, "ripper", "drive index", o.cfg.Drive.Device, err)
	}
	absRipDir, err := filepath.Abs(ripDir)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("resolve rip directory: %w", err)
	}

	cmd := []string{"makemkvcon", "mkv", fmt.Sprintf("disc:%d", index), "all", absRipDir}
	if err := o.runner.Run(ctx, cmd...); err != nil {
		return OutcomeSkipped, services.Wrap(services.ErrExternalTool, "ripper", "makemkvcon", d.Identity, err)
	}

	if err := staging.MoveContents(ripDir, stagedDir); err != nil {
		return OutcomeSkipped, fmt.Errorf("stage rip output: %w", err)
	}
	if removed, err := staging.RemoveDirIfEmpty(ripDir); err != nil {
		return OutcomeSkipped, err
	} else if !removed {
		// Extraction left extra entries behind; worth a look, not fatal.
		o.logger.Warn("rip directory not empty after staging", logging.String("path", ripDir))
	}

	o.logger.Info("finished ripping dvd, awaiting transcode", logging.String("identity", d.Identity))
	return OutcomeRipped, nil
}
