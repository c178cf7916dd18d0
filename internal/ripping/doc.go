// Package ripping dispatches a classified disc to its extraction strategy
// and stages the raw result for the transcode loop. Every dispatch is
// guarded by an idempotency check against the output tree so the rip loop
// is safe to re-run each poll and safe to resume after a crash.
package ripping
