package disc

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rippa/internal/logging"
	"rippa/internal/mounts"
	"rippa/internal/process"
)

// Classifier probes the optical drive and classifies the inserted medium.
//
// The probe order is a fixed state machine: try the audio TOC first (fast,
// non-destructive, and an audio-only disc may expose no block metadata at
// all), then block-device metadata, then conclude no disc. Distinguishing
// DVD from Blu-ray from data requires mounting and inspecting the
// directory layout.
type Classifier struct {
	runner    process.Runner
	registry  *mounts.Registry
	logger    *slog.Logger
	device    string
	mountRoot string
}

// NewClassifier builds a classifier for the configured drive. Mount points
// for inspection are created under mountRoot.
func NewClassifier(runner process.Runner, registry *mounts.Registry, logger *slog.Logger, device, mountRoot string) *Classifier {
	return &Classifier{
		runner:    runner,
		registry:  registry,
		logger:    logging.NewComponentLogger(logger, "classifier"),
		device:    device,
		mountRoot: mountRoot,
	}
}

// Classify probes the drive. It returns (nil, nil) when no disc is
// present; that is an expected per-poll outcome, not an error.
func (c *Classifier) Classify(ctx context.Context) (*Disc, error) {
	if d := c.tryAudioProbe(ctx); d != nil {
		return d, nil
	}
	return c.tryMetadataProbe(ctx)
}

// tryAudioProbe treats the drive as a Redbook disc. A failing probe just
// means the disc (if any) has no audio TOC.
func (c *Classifier) tryAudioProbe(ctx context.Context) *Disc {
	output, err := c.runner.Output(ctx, "cdparanoia", "-d", c.device, "-sQ")
	if err != nil {
		c.logger.Debug("no audio table", logging.Error(err))
		return nil
	}
	lengths := ParseTOC(output)
	if len(lengths) == 0 {
		c.logger.Debug("audio probe returned an empty table")
		return nil
	}
	identity := Fingerprint(lengths)
	c.logger.Info("redbook disc detected", logging.String("identity", identity), logging.Int("tracks", len(lengths)))
	return &Disc{Kind: KindRedbook, Identity: identity, TrackLengths: lengths}
}

func (c *Classifier) tryMetadataProbe(ctx context.Context) (*Disc, error) {
	output, err := c.runner.Output(ctx, "blkid", c.device)
	if err != nil || strings.TrimSpace(output) == "" {
		// blkid exits non-zero when the drive is empty.
		c.logger.Debug("no disc detected")
		return nil, nil
	}

	params := ParseBlkid(output)[c.device]
	if len(params) == 0 {
		c.logger.Debug("no metadata for device", logging.String("device", c.device))
		return nil, nil
	}

	identity := MetadataIdentity(params)
	d := &Disc{Identity: identity, Label: params["LABEL"], UUID: params["UUID"]}

	mountPoint := c.mountPoint()
	if err := c.registry.Mount(ctx, c.device, mountPoint); err != nil {
		// Tolerated: the disc may already be mounted from a previous poll.
		c.logger.Debug("mount failed", logging.String("mount_point", mountPoint), logging.Error(err))
	}

	switch {
	case dirExists(filepath.Join(mountPoint, "VIDEO_TS")):
		d.Kind = KindDVD
		c.logger.Info("dvd detected",
			logging.String("identity", identity),
			logging.String("title", DisplayTitle(d.Label)),
		)
	case dirExists(filepath.Join(mountPoint, "BDMV")):
		// Classified as Blu-ray rather than data so the rip dispatch
		// surfaces the capability gap loudly instead of producing a
		// bogus iso.
		d.Kind = KindBluRay
		c.logger.Info("blu-ray detected", logging.String("identity", identity))
	default:
		d.Kind = KindDataDisc
		c.logger.Info("data disc detected",
			logging.String("identity", identity),
			logging.String("title", DisplayTitle(d.Label)),
		)
	}
	return d, nil
}

// mountPoint returns the inspection mount point for the drive, derived
// from the device name so multiple rippa instances never collide.
func (c *Classifier) mountPoint() string {
	return filepath.Join(c.mountRoot, "mnt", filepath.Base(c.device))
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
