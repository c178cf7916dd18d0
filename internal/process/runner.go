package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"rippa/internal/logging"
)

// outputTailLimit bounds how much combined output a CommandError retains
// when the command was streamed rather than captured.
const outputTailLimit = 4096

// CommandError reports a command that exited non-zero.
type CommandError struct {
	Argv     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: exit status %d", strings.Join(e.Argv, " "), e.ExitCode)
}

// Runner executes external commands.
type Runner interface {
	// Output runs argv and returns its trimmed combined output.
	Output(ctx context.Context, argv ...string) (string, error)
	// Run runs argv, streaming combined output line-by-line to the log
	// sink as it is produced, and blocks until the process exits.
	Run(ctx context.Context, argv ...string) error
	// RunIn is Run with an explicit working directory.
	RunIn(ctx context.Context, dir string, argv ...string) error
}

type execRunner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner that shells out via os/exec. Streamed
// subprocess output is logged at debug level.
func NewRunner(logger *slog.Logger) Runner {
	return &execRunner{logger: logging.NewComponentLogger(logger, "subprocess")}
}

func (r *execRunner) Output(ctx context.Context, argv ...string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", commandError(argv, err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *execRunner) Run(ctx context.Context, argv ...string) error {
	return r.RunIn(ctx, "", argv...)
}

func (r *execRunner) RunIn(ctx context.Context, dir string, argv ...string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	cmd.Dir = dir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	tail := make(chan string, 1)
	go func() {
		tail <- streamLines(pr, func(line string) {
			r.logger.Debug(line, logging.String("cmd", argv[0]))
		})
	}()

	err := cmd.Wait()
	pw.Close()
	captured := <-tail
	if err != nil {
		return commandError(argv, err, captured)
	}
	return nil
}

// maxStreamedLineBytes caps a single logged line; longer lines are
// emitted in chunks rather than failing mid-stream.
const maxStreamedLineBytes = 64 * 1024

// streamLines reads output until EOF, emitting a line per newline or
// carriage return, and returns the bounded tail. Progress meters (dd
// status=progress, makemkvcon) rewrite one line with bare \r, so \r is a
// separator too; no line length can stop the read, which would leave the
// child blocked on a full pipe.
func streamLines(reader io.Reader, emit func(line string)) string {
	var tail strings.Builder
	buffered := bufio.NewReaderSize(reader, maxStreamedLineBytes)
	var line []byte

	flush := func() {
		if len(line) == 0 {
			return
		}
		text := string(line)
		line = line[:0]
		emit(text)
		appendTail(&tail, text)
	}

	for {
		b, err := buffered.ReadByte()
		if err != nil {
			flush()
			return tail.String()
		}
		if b == '\n' || b == '\r' {
			flush()
			continue
		}
		line = append(line, b)
		if len(line) >= maxStreamedLineBytes {
			flush()
		}
	}
}

func commandError(argv []string, err error, output string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Argv: argv, ExitCode: exitErr.ExitCode(), Output: output}
	}
	return fmt.Errorf("run %s: %w", argv[0], err)
}

func appendTail(buf *strings.Builder, line string) {
	if buf.Len() >= outputTailLimit {
		return
	}
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	if remaining := outputTailLimit - buf.Len(); len(line) > remaining {
		line = line[:remaining]
	}
	buf.WriteString(line)
}
