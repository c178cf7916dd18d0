package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"rippa/internal/config"
	"rippa/internal/disc"
	"rippa/internal/logging"
	"rippa/internal/ripping"
	"rippa/internal/services"
)

// ripper runs one rip iteration against the drive.
type ripper interface {
	CleanStale() error
	RipIfNeeded(ctx context.Context) (ripping.Result, error)
}

// transcoder drains the staged directories once.
type transcoder interface {
	PollOnce(ctx context.Context) error
}

// drainer unmounts everything the session mounted.
type drainer interface {
	Drain(ctx context.Context)
}

// Daemon owns the two pipeline loops and their shared lifecycle: a flock
// keeps the process single-instance, a netlink monitor nudges the rip
// loop on disc insertion, and mounts are drained once at shutdown.
type Daemon struct {
	cfg     *config.Config
	ripper  ripper
	worker  transcoder
	mounts  drainer
	logger  *slog.Logger
	session string

	lockPath string
	lock     *flock.Flock

	nudge   chan struct{}
	monitor *netlinkMonitor

	// checkDrive is the CDROM_DRIVE_STATUS precheck; injectable for tests.
	checkDrive func(devicePath string) (disc.DriveStatus, error)
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, rip ripper, worker transcoder, mounts drainer, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || rip == nil || worker == nil || mounts == nil || logger == nil {
		return nil, errors.New("daemon requires config, ripper, transcoder, mounts, and logger")
	}

	lockDir := cfg.Paths.LogDir
	if strings.TrimSpace(lockDir) == "" {
		lockDir = cfg.Paths.WIPRoot
	}
	lockPath := filepath.Join(lockDir, "rippa.lock")

	session := uuid.NewString()
	nudge := make(chan struct{}, 1)
	sessionLogger := logger.With(logging.String("session", session))

	return &Daemon{
		cfg:        cfg,
		ripper:     rip,
		worker:     worker,
		mounts:     mounts,
		logger:     logging.NewComponentLogger(sessionLogger, "daemon"),
		session:    session,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
		nudge:      nudge,
		monitor:    newNetlinkMonitor(cfg.Drive.Device, nudge, sessionLogger),
		checkDrive: disc.CheckDriveStatus,
	}, nil
}

// Run executes both loops until ctx is canceled. The rip loop runs in the
// caller's goroutine; the transcode loop runs alongside and is stopped and
// joined after the rip loop exits, then mounts are drained.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return services.Wrap(services.ErrConfiguration, "daemon", "lock",
			fmt.Sprintf("another rippa instance holds %s", d.lockPath), nil)
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	if err := d.ripper.CleanStale(); err != nil {
		return fmt.Errorf("clean stale rip directories: %w", err)
	}

	d.monitor.Start(ctx)
	defer d.monitor.Stop()

	transcodeCtx, stopTranscode := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runLoop(transcodeCtx, d.cfg.TranscodePollInterval(), nil, d.transcodeIteration)
	}()

	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("device", d.cfg.Drive.Device),
		logging.Duration("rip_poll_interval", d.cfg.RipPollInterval()),
		logging.Duration("transcode_poll_interval", d.cfg.TranscodePollInterval()),
	)

	runLoop(ctx, d.cfg.RipPollInterval(), d.nudge, d.ripIteration)

	d.logger.Info("rip loop stopped; waiting for transcode loop")
	stopTranscode()
	wg.Wait()

	d.mounts.Drain(context.WithoutCancel(ctx))
	d.logger.Info("daemon stopped")
	return nil
}

// ripIteration performs one rip poll. The in-flight iteration is never
// interrupted; cancellation takes effect between iterations.
func (d *Daemon) ripIteration(ctx context.Context) {
	if d.skipByDriveStatus() {
		return
	}

	result, err := d.ripper.RipIfNeeded(ctx)
	if err != nil {
		if services.IsTransient(err) {
			d.logger.Debug("rip deferred", logging.Error(err))
		} else {
			d.logger.Error("rip failed", logging.Error(err))
		}
		return
	}

	switch result.Outcome {
	case ripping.OutcomeNoDisc:
		d.logger.Debug("no disc in drive")
	case ripping.OutcomeSkipped:
		d.logger.Info("disc already processed",
			logging.String("kind", result.Kind.String()),
			logging.String("identity", result.Identity),
		)
	case ripping.OutcomeRipped:
		d.logger.Info("disc ripped",
			logging.String("kind", result.Kind.String()),
			logging.String("identity", result.Identity),
		)
	}
}

// skipByDriveStatus is a cheap ioctl precheck that saves a probe when the
// drive definitively reports no media. Any uncertainty falls through to
// the probes.
func (d *Daemon) skipByDriveStatus() bool {
	status, err := d.checkDrive(d.cfg.Drive.Device)
	if err != nil {
		d.logger.Debug("drive status unavailable", logging.Error(err))
		return false
	}
	switch status {
	case disc.DriveStatusNoDisc, disc.DriveStatusTrayOpen:
		d.logger.Debug("drive empty", logging.String("status", status.String()))
		return true
	default:
		return false
	}
}

func (d *Daemon) transcodeIteration(ctx context.Context) {
	if err := d.worker.PollOnce(ctx); err != nil {
		d.logger.Warn("transcode poll failed", logging.Error(err))
	}
}
