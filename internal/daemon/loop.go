package daemon

import (
	"context"
	"time"
)

// runLoop runs one iteration, then sleeps until the next tick, a nudge,
// or cancellation. The stop signal is honored only between iterations:
// an in-flight external command cannot be interrupted cleanly, so each
// iteration runs on a context detached from cancellation and shutdown
// waits for it to finish.
func runLoop(ctx context.Context, interval time.Duration, nudge <-chan struct{}, iterate func(context.Context)) {
	body := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		iterate(body)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		case <-nudge:
		}
	}
}
