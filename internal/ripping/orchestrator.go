package ripping

import (
	"context"
	"log/slog"
	"os"
	"time"

	"rippa/internal/config"
	"rippa/internal/disc"
	"rippa/internal/logging"
	"rippa/internal/process"
	"rippa/internal/services"
	"rippa/internal/staging"
)

// Classifier yields the disc currently in the drive, or nil when empty.
type Classifier interface {
	Classify(ctx context.Context) (*disc.Disc, error)
}

// KeyRefresher updates the MakeMKV beta key before a DVD rip.
type KeyRefresher interface {
	Refresh(ctx context.Context) error
}

// stabilityFunc matches staging.IsStable; injectable for tests.
type stabilityFunc func(ctx context.Context, path string, window time.Duration) (bool, error)

// Orchestrator classifies the drive and runs the kind-specific extraction
// strategy, staging raw results for the transcode loop.
type Orchestrator struct {
	cfg        *config.Config
	layout     staging.Layout
	classifier Classifier
	runner     process.Runner
	escalator  *process.Escalator
	keys       KeyRefresher
	logger     *slog.Logger
	isStable   stabilityFunc
}

// NewOrchestrator wires the rip side of the pipeline. keys may be nil when
// key refresh is disabled.
func NewOrchestrator(
	cfg *config.Config,
	classifier Classifier,
	runner process.Runner,
	escalator *process.Escalator,
	keys KeyRefresher,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		layout:     staging.NewLayout(cfg.Paths.WIPRoot, cfg.Paths.OutRoot),
		classifier: classifier,
		runner:     runner,
		escalator:  escalator,
		keys:       keys,
		logger:     logging.NewComponentLogger(logger, "ripper"),
		isStable:   staging.IsStable,
	}
}

// CleanStale removes rip-in-progress leftovers from a previous process.
// A half-finished rip directory is not "already ripped"; clearing it at
// startup lets the idempotency check treat any rip directory seen later
// as an in-flight rip of this process.
func (o *Orchestrator) CleanStale() error {
	return os.RemoveAll(o.layout.DVDRipDir(""))
}

// RipIfNeeded runs one rip iteration: classify, idempotency-check,
// dispatch, stage, eject. An empty drive returns OutcomeNoDisc without
// error.
func (o *Orchestrator) RipIfNeeded(ctx context.Context) (Result, error) {
	d, err := o.classifier.Classify(ctx)
	if err != nil {
		return Result{}, err
	}
	if d == nil {
		return Result{Outcome: OutcomeNoDisc}, nil
	}

	result := Result{Kind: d.Kind, Identity: d.Identity}

	var ripErr error
	switch d.Kind {
	case disc.KindRedbook:
		result.Outcome, ripErr = o.ripRedbook(ctx, d)
	case disc.KindDVD:
		result.Outcome, ripErr = o.ripDVD(ctx, d)
	case disc.KindDataDisc:
		result.Outcome, ripErr = o.ripDataDisc(ctx, d)
	case disc.KindBluRay:
		ripErr = services.Wrap(services.ErrNotImplemented, "ripper", "blu-ray", d.Identity, nil)
	default:
		ripErr = services.Wrap(services.ErrExternalTool, "ripper", "dispatch", "unknown disc kind", nil)
	}
	if ripErr != nil {
		return result, ripErr
	}

	// Eject after a skip too: a known disc left in the tray would
	// otherwise be re-probed and re-skipped every poll until an operator
	// intervenes.
	if result.Outcome != OutcomeNoDisc && !o.cfg.Drive.SkipEject {
		o.eject(ctx)
	}
	return result, nil
}

// eject opens the tray. Failure must not block future polls, so it is
// logged and swallowed.
func (o *Orchestrator) eject(ctx context.Context) {
	if err := o.escalator.Run(ctx, "eject", "-F", o.cfg.Drive.Device); err != nil {
		o.logger.Warn("eject failed", logging.String("device", o.cfg.Drive.Device), logging.Error(err))
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
