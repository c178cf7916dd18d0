package staging

import (
	"context"
	"fmt"
	"os"
	"time"
)

// IsStable reports whether path's size is unchanged across the sampling
// window. A growing file is assumed to belong to a rip or transcode still
// in progress and must not be touched; size sampling is the system's only
// write-completion signal, there is no lock file or notification.
func IsStable(ctx context.Context, path string, window time.Duration) (bool, error) {
	first, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(window):
	}

	second, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return first.Size() == second.Size(), nil
}
