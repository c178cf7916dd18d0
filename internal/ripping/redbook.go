package ripping

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rippa/internal/disc"
	"rippa/internal/logging"
	"rippa/internal/services"
	"rippa/internal/staging"
)

// ripRedbook extracts an audio CD with abcde. The tool names the album
// directory itself (from CDDB metadata), so idempotency is checked by
// fingerprint suffix against existing output, and the final directory
// carries both names: <album>-<fingerprint>.
func (o *Orchestrator) ripRedbook(ctx context.Context, d *disc.Disc) (Outcome, error) {
	outRoot := o.layout.RedbookOutRoot()
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return OutcomeSkipped, fmt.Errorf("create redbook output root: %w", err)
	}

	entries, err := os.ReadDir(outRoot)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("read redbook output root: %w", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), "-"+d.Identity) {
			o.logger.Info("redbook already ripped",
				logging.String("identity", d.Identity),
				logging.String("album", entry.Name()),
			)
			return OutcomeSkipped, nil
		}
	}

	o.logger.Info("ripping redbook", logging.String("identity", d.Identity), logging.Int("tracks", len(d.TrackLengths)))

	// Fresh working directory: the tool is located by "the single
	// subdirectory it produced", so leftovers from a crashed run would
	// be indistinguishable from this rip's output.
	wipDir := o.layout.RedbookWIPDir()
	if err := os.RemoveAll(wipDir); err != nil {
		return OutcomeSkipped, fmt.Errorf("clear redbook wip: %w", err)
	}
	if err := os.MkdirAll(wipDir, 0o755); err != nil {
		return OutcomeSkipped, fmt.Errorf("create redbook wip: %w", err)
	}

	cmd := []string{"abcde", "-d", o.cfg.Drive.Device, "-o", "flac", "-B", "-N"}
	if err := o.runner.RunIn(ctx, wipDir, cmd...); err != nil {
		return OutcomeSkipped, services.Wrap(services.ErrExternalTool, "ripper", "abcde", d.Identity, err)
	}

	album, err := singleSubdirectory(wipDir)
	if err != nil {
		return OutcomeSkipped, services.Wrap(services.ErrExternalTool, "ripper", "abcde", "locate album output", err)
	}

	outDir := o.layout.RedbookOutDir(album, d.Identity)
	if err := staging.MoveDir(filepath.Join(wipDir, album), outDir); err != nil {
		return OutcomeSkipped, fmt.Errorf("promote album: %w", err)
	}

	o.logger.Info("finished ripping redbook",
		logging.String("identity", d.Identity),
		logging.String("album", album),
	)
	return OutcomeRipped, nil
}

func singleSubdirectory(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("expected exactly one output directory in %s, found %d", dir, len(dirs))
	}
	return dirs[0], nil
}
