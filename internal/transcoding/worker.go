// Package transcoding drains the staged tree: it waits for staged rip
// output to stop growing, re-encodes it, and promotes finished files to
// the output tree. It never coordinates with the rip loop directly; the
// staging directory shape is the whole protocol.
package transcoding

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rippa/internal/config"
	"rippa/internal/logging"
	"rippa/internal/process"
	"rippa/internal/services"
	"rippa/internal/staging"
)

type stabilityFunc func(ctx context.Context, path string, window time.Duration) (bool, error)

// Worker polls the staged DVD tree and transcodes whatever is ready.
type Worker struct {
	cfg      *config.Config
	layout   staging.Layout
	runner   process.Runner
	logger   *slog.Logger
	isStable stabilityFunc
}

// NewWorker wires the transcode side of the pipeline.
func NewWorker(cfg *config.Config, runner process.Runner, logger *slog.Logger) *Worker {
	return &Worker{
		cfg:      cfg,
		layout:   staging.NewLayout(cfg.Paths.WIPRoot, cfg.Paths.OutRoot),
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "transcoder"),
		isStable: staging.IsStable,
	}
}

// PollOnce processes every staged disc directory. Failures are isolated
// per file and per disc; anything skipped is retried on the next poll.
func (w *Worker) PollOnce(ctx context.Context) error {
	stagedRoot := w.layout.DVDStagedRoot()
	if err := os.MkdirAll(stagedRoot, 0o755); err != nil {
		return fmt.Errorf("ensure staged root: %w", err)
	}
	entries, err := os.ReadDir(stagedRoot)
	if err != nil {
		return fmt.Errorf("read staged root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.transcodeDisc(ctx, entry.Name())
	}
	return nil
}

// transcodeDisc runs the four-step promotion for one disc identity:
// transcode ready staged files, try-remove the staged dir, promote stable
// transcoded files, try-remove the transcode dir.
func (w *Worker) transcodeDisc(ctx context.Context, identity string) {
	logger := w.logger.With(logging.String("identity", identity))
	stagedDir := w.layout.DVDStagedDir(identity)
	transcodeDir := w.layout.DVDTranscodeDir(identity)
	outDir := w.layout.DVDOutDir(identity)

	files, err := os.ReadDir(stagedDir)
	if err != nil {
		logger.Warn("read staged directory", logging.Error(err))
		return
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		err := w.transcodeFile(ctx, filepath.Join(stagedDir, file.Name()), transcodeDir)
		switch {
		case err == nil:
			logger.Info("finished transcoding file", logging.String("file", file.Name()))
		case services.IsTransient(err):
			logger.Debug("file not ready", logging.String("file", file.Name()), logging.Error(err))
		default:
			logger.Warn("transcode failed, will retry next poll",
				logging.String("file", file.Name()),
				logging.Error(err),
			)
		}
	}

	if removed, err := staging.RemoveDirIfEmpty(stagedDir); err != nil {
		logger.Warn("remove staged directory", logging.Error(err))
	} else if !removed {
		logger.Debug("staged directory not yet empty")
	}

	w.promoteTranscoded(ctx, logger, transcodeDir, outDir)
}

// transcodeFile requires write stability before reading: the directory
// under staged/ may appear before the ripper's last write into it lands.
func (w *Worker) transcodeFile(ctx context.Context, rawPath, transcodeDir string) error {
	stable, err := w.isStable(ctx, rawPath, w.cfg.StableWindow())
	if err != nil {
		return err
	}
	if !stable {
		return services.Wrap(services.ErrTransient, "transcoder", "stability", "file still being written", nil)
	}

	if err := os.MkdirAll(transcodeDir, 0o755); err != nil {
		return fmt.Errorf("create transcode directory: %w", err)
	}

	base := filepath.Base(rawPath)
	outFile := filepath.Join(transcodeDir, strings.TrimSuffix(base, filepath.Ext(base))+".mp4")

	cmd := append([]string{"ffmpeg", "-i", rawPath}, w.cfg.Transcode.FFmpegArgs...)
	cmd = append(cmd, outFile)
	if err := w.runner.Run(ctx, cmd...); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcoder", "ffmpeg", base, err)
	}

	return os.Remove(rawPath)
}

// promoteTranscoded moves settled transcode output into the output tree.
// Transcoding is itself a long write, so stability is re-confirmed.
func (w *Worker) promoteTranscoded(ctx context.Context, logger *slog.Logger, transcodeDir, outDir string) {
	files, err := os.ReadDir(transcodeDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("read transcode directory", logging.Error(err))
		}
		return
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		path := filepath.Join(transcodeDir, file.Name())
		stable, err := w.isStable(ctx, path, w.cfg.StableWindow())
		if err != nil {
			logger.Warn("stability check", logging.String("file", file.Name()), logging.Error(err))
			continue
		}
		if !stable {
			logger.Debug("transcoded file still settling", logging.String("file", file.Name()))
			continue
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			logger.Warn("create output directory", logging.Error(err))
			return
		}
		if err := staging.MoveInto(path, outDir); err != nil {
			logger.Warn("promote transcoded file", logging.String("file", file.Name()), logging.Error(err))
			continue
		}
		logger.Info("promoted to output", logging.String("file", file.Name()))
	}

	if removed, err := staging.RemoveDirIfEmpty(transcodeDir); err != nil {
		logger.Warn("remove transcode directory", logging.Error(err))
	} else if !removed {
		logger.Debug("transcode directory not yet empty")
	}
}
