package process

import (
	"context"
	"log/slog"

	"rippa/internal/logging"
	"rippa/internal/services"
)

// Escalator runs a command unprivileged and retries exactly once with sudo
// when the failure classifies as permission-denied. It is reserved for
// operations that may legitimately require elevation (mount, unmount,
// eject); rip and transcode failures are domain-meaningful and must never
// be masked by a privilege retry.
type Escalator struct {
	runner Runner
	logger *slog.Logger
}

// NewEscalator wraps runner with sudo-retry behavior.
func NewEscalator(runner Runner, logger *slog.Logger) *Escalator {
	return &Escalator{
		runner: runner,
		logger: logging.NewComponentLogger(logger, "privilege"),
	}
}

// Run executes argv, escalating once on a permission failure. Any other
// failure propagates untouched.
func (e *Escalator) Run(ctx context.Context, argv ...string) error {
	err := e.runner.Run(ctx, argv...)
	if err == nil {
		return nil
	}
	if !IsPermissionDenied(err) {
		return err
	}

	e.logger.Info("retrying with sudo", logging.String("cmd", argv[0]), logging.Error(err))
	elevated := append([]string{"sudo"}, argv...)
	if err := e.runner.Run(ctx, elevated...); err != nil {
		return services.Wrap(services.ErrPermission, "privilege", argv[0], "failed even with sudo", err)
	}
	return nil
}
