// Package mounts tracks the mount points this process has created so they
// can all be released at shutdown. If the process is killed before Drain
// runs, registered mounts remain; that is an accepted limitation.
package mounts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"rippa/internal/logging"
	"rippa/internal/process"
)

// Registry records active mounts. The rip path appends to it; Drain
// releases everything still registered exactly once at shutdown.
type Registry struct {
	escalator *process.Escalator
	logger    *slog.Logger

	mu      sync.Mutex
	active  []string
	drained bool
}

// NewRegistry constructs a registry that mounts and unmounts through the
// privilege escalator.
func NewRegistry(escalator *process.Escalator, logger *slog.Logger) *Registry {
	return &Registry{
		escalator: escalator,
		logger:    logging.NewComponentLogger(logger, "mounts"),
	}
}

// Mount mounts device at mountPoint, creating the directory first, and
// registers the mount point for shutdown cleanup.
func (r *Registry) Mount(ctx context.Context, device, mountPoint string) error {
	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return fmt.Errorf("create mount point %q: %w", mountPoint, err)
	}
	if err := r.escalator.Run(ctx, "mount", device, mountPoint); err != nil {
		return err
	}

	r.mu.Lock()
	r.active = append(r.active, mountPoint)
	r.mu.Unlock()

	r.logger.Debug("mounted", logging.String("device", device), logging.String("mount_point", mountPoint))
	return nil
}

// Unmount releases mountPoint. The registry entry is removed only after
// the unmount succeeds.
func (r *Registry) Unmount(ctx context.Context, mountPoint string) error {
	if err := r.escalator.Run(ctx, "umount", mountPoint); err != nil {
		return err
	}

	r.mu.Lock()
	for i, mp := range r.active {
		if mp == mountPoint {
			r.active = append(r.active[:i], r.active[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Debug("unmounted", logging.String("mount_point", mountPoint))
	return nil
}

// Drain unmounts everything still registered. Only the first call does
// anything; unmount failures are logged and the entry is kept so the
// operator can see what leaked.
func (r *Registry) Drain(ctx context.Context) {
	r.mu.Lock()
	if r.drained {
		r.mu.Unlock()
		return
	}
	r.drained = true
	remaining := append([]string{}, r.active...)
	r.mu.Unlock()

	for _, mountPoint := range remaining {
		if err := r.Unmount(ctx, mountPoint); err != nil {
			r.logger.Warn("failed to unmount at shutdown",
				logging.String("mount_point", mountPoint),
				logging.Error(err),
			)
		}
	}
}

// Active returns the currently registered mount points.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.active...)
}
