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

// ripDataDisc streams a raw block copy of the whole device into a single
// image file and promotes it to the output tree once its size settles.
func (o *Orchestrator) ripDataDisc(ctx context.Context, d *disc.Disc) (Outcome, error) {
	outPath := o.layout.ISOOutPath(d.Identity)
	if pathExists(outPath) {
		o.logger.Info("already ripped", logging.String("identity", d.Identity))
		return OutcomeSkipped, nil
	}

	wipPath := o.layout.ISOWIPPath(d.Identity)
	for _, dir := range []string{filepath.Dir(wipPath), filepath.Dir(outPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return OutcomeSkipped, fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	o.logger.Info("ripping data disc",
		logging.String("identity", d.Identity),
		logging.String("title", disc.DisplayTitle(d.Label)),
	)

	cmd := []string{"dd", "if=" + o.cfg.Drive.Device, "of=" + wipPath, "status=progress"}
	if err := o.runner.Run(ctx, cmd...); err != nil {
		return OutcomeSkipped, services.Wrap(services.ErrExternalTool, "ripper", "dd", d.Identity, err)
	}

	stable, err := o.isStable(ctx, wipPath, o.cfg.StableWindow())
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("confirm image stability: %w", err)
	}
	if !stable {
		// dd has exited, so a still-growing image means something else
		// is writing it; leave it for the next poll.
		return OutcomeSkipped, services.Wrap(services.ErrTransient, "ripper", "dd", "image still growing", nil)
	}

	if err := staging.MoveFile(wipPath, outPath); err != nil {
		return OutcomeSkipped, fmt.Errorf("promote image: %w", err)
	}

	o.logger.Info("finished ripping data disc", logging.String("identity", d.Identity))
	return OutcomeRipped, nil
}
